package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Storage struct {
		// Driver is one of memory, sqlite, redis or postgres.
		Driver     string `yaml:"driver"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Trivia struct {
		BaseURL           string `yaml:"base_url"`
		QuestionTimeout   string `yaml:"question_timeout"`
		CategoryTimeout   string `yaml:"category_timeout"`
		QuestionAttempts  int    `yaml:"question_attempts"`
		QuestionBaseDelay string `yaml:"question_base_delay"`
		CategoryAttempts  int    `yaml:"category_attempts"`
		CategoryBaseDelay string `yaml:"category_base_delay"`
		CategoryTTL       string `yaml:"category_ttl"`
	} `yaml:"trivia"`
	Quiz struct {
		SecondsPerQuestion int    `yaml:"seconds_per_question"`
		Tick               string `yaml:"tick"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Int returns v, or fallback when v is not positive.
func Int(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
