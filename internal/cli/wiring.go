package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/infra/sqlite"
	"trivia-quiz-service/internal/trivia"
)

func newTriviaSource(cfg config.Config) *trivia.Source {
	defaults := trivia.DefaultOptions()
	opts := trivia.Options{
		QuestionAttempts:  config.Int(cfg.Trivia.QuestionAttempts, defaults.QuestionAttempts),
		QuestionBaseDelay: config.Duration(cfg.Trivia.QuestionBaseDelay, defaults.QuestionBaseDelay),
		QuestionTimeout:   config.Duration(cfg.Trivia.QuestionTimeout, defaults.QuestionTimeout),
		CategoryAttempts:  config.Int(cfg.Trivia.CategoryAttempts, defaults.CategoryAttempts),
		CategoryBaseDelay: config.Duration(cfg.Trivia.CategoryBaseDelay, defaults.CategoryBaseDelay),
		CategoryTimeout:   config.Duration(cfg.Trivia.CategoryTimeout, defaults.CategoryTimeout),
	}
	baseURL := cfg.Trivia.BaseURL
	if baseURL == "" {
		baseURL = trivia.DefaultBaseURL
	}
	return trivia.NewSource(trivia.NewClient(baseURL, &http.Client{}), opts)
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newStateStore picks the persistence backend. The returned closer releases it.
func newStateStore(ctx context.Context, cfg config.Config, redisClient *redis.Client) (app.StateStore, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case "", "sqlite":
		path := cfg.Storage.SQLitePath
		if path == "" {
			path = "data/quiz.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, noop, err
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, noop, err
		}
		store, err := sqlite.NewStateStore(db)
		if err != nil {
			return nil, noop, err
		}
		closer := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		log.Printf("using sqlite state store at %s", path)
		return store, closer, nil
	case "memory":
		return memory.NewStateStore(), noop, nil
	case "redis":
		if redisClient == nil {
			return nil, noop, fmt.Errorf("redis storage selected but redis.addr not configured")
		}
		return redisstore.NewStateStore(redisClient, config.Duration(cfg.Redis.TTL, 0)), noop, nil
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, noop, fmt.Errorf("postgres storage selected but postgres.url not configured")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, noop, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewStateStore(pool), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newCategoryRepository(cfg config.Config, redisClient *redis.Client, source *trivia.Source) app.CategoryRepository {
	ttl := config.Duration(cfg.Trivia.CategoryTTL, time.Hour)
	if redisClient != nil {
		return redisstore.NewCategoryRepository(redisClient, source, ttl)
	}
	return memory.NewCategoryRepository(source, ttl)
}
