package domain

import (
	"fmt"
	"strings"
)

// User is an entry of the local user directory. Passwords are kept as entered.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity is the currently authenticated user.
type Identity struct {
	Username string `json:"username"`
}

// Difficulty of a trivia question. DifficultyAny only appears in requests.
type Difficulty string

const (
	DifficultyAny    Difficulty = "any"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the choices offered on the setup screen.
var Difficulties = []Difficulty{DifficultyAny, DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty accepts "", "any", "easy", "medium" or "hard" (case-insensitive).
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case "":
		return DifficultyAny, nil
	case DifficultyAny, DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSettings, raw)
	}
}

// Question is a fully prepared multiple-choice question. AllAnswers is shuffled once
// when the question is built and keeps that order afterwards.
type Question struct {
	Category         string     `json:"category"`
	Type             string     `json:"type"`
	Difficulty       Difficulty `json:"difficulty"`
	Question         string     `json:"question"`
	CorrectAnswer    string     `json:"correct_answer"`
	IncorrectAnswers []string   `json:"incorrect_answers"`
	AllAnswers       []string   `json:"all_answers"`
}

// Category of the trivia API.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AnyCategory is the setup sentinel for "no category filter".
const AnyCategory = "any"

// QuizSettings is what the player picks on the setup screen.
type QuizSettings struct {
	Amount     int        `json:"amount"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// SetupAmounts lists the question counts offered on the setup screen.
var SetupAmounts = []int{5, 10, 15, 20, 25, 30}

// QuestionSet is the outcome of a question fetch. Settings reflect what was actually
// delivered, which differs from the request when the fallback bank was used.
type QuestionSet struct {
	Questions     []Question
	UsingFallback bool
	Settings      QuizSettings
}

// QuizSnapshot is a copy of the quiz session state. It is also the persisted form.
type QuizSnapshot struct {
	AttemptID       string     `json:"attemptId"`
	Questions       []Question `json:"questions"`
	Answers         []*string  `json:"answers"`
	CurrentIndex    int        `json:"currentQuestionIndex"`
	TimeRemaining   int        `json:"timeRemaining"`
	TotalTime       int        `json:"totalTime"`
	IsActive        bool       `json:"isActive"`
	IsUsingFallback bool       `json:"isUsingFallback"`
	Category        string     `json:"category"`
	Difficulty      Difficulty `json:"difficulty"`
	Amount          int        `json:"amount"`
}

// QuizEventType names the events pushed to quiz subscribers.
type QuizEventType string

const (
	EventLoaded   QuizEventType = "loaded"
	EventStarted  QuizEventType = "started"
	EventAnswered QuizEventType = "answered"
	EventTick     QuizEventType = "tick"
	EventExpired  QuizEventType = "expired"
	EventEnded    QuizEventType = "ended"
	EventReset    QuizEventType = "reset"
)

// QuizEvent is a state change of the quiz session.
type QuizEvent struct {
	Type     QuizEventType `json:"type"`
	Snapshot QuizSnapshot  `json:"snapshot"`
}

// ReportItem is the per-question line of a score report.
type ReportItem struct {
	Question      string  `json:"question"`
	CorrectAnswer string  `json:"correctAnswer"`
	Answer        *string `json:"answer"`
	Correct       bool    `json:"correct"`
}

// ScoreReport summarizes a finished (or abandoned) quiz.
type ScoreReport struct {
	Total         int          `json:"total"`
	Answered      int          `json:"answered"`
	Correct       int          `json:"correct"`
	Incorrect     int          `json:"incorrect"`
	Unanswered    int          `json:"unanswered"`
	ScorePercent  int          `json:"scorePercent"`
	Message       string       `json:"message"`
	UsingFallback bool         `json:"usingFallback"`
	Items         []ReportItem `json:"items"`
}
