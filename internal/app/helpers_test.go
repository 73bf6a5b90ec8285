package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// manualTicker hands every ticker the same unbuffered channel; a send completes only
// when a tick loop is there to receive it.
type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) factory() app.TickerFunc {
	return func(time.Duration) app.Ticker { return m }
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop() {}

// tick reports whether a running loop consumed the tick.
func (m *manualTicker) tick(wait time.Duration) bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(wait):
		return false
	}
}

func sampleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		correct := fmt.Sprintf("right-%d", i)
		questions[i] = domain.Question{
			Category:         "General Knowledge",
			Type:             "multiple",
			Difficulty:       domain.DifficultyEasy,
			Question:         fmt.Sprintf("Question %d?", i),
			CorrectAnswer:    correct,
			IncorrectAnswers: []string{"a", "b", "c"},
			AllAnswers:       []string{"a", correct, "b", "c"},
		}
	}
	return questions
}

func sampleSet(n int) domain.QuestionSet {
	return domain.QuestionSet{
		Questions: sampleQuestions(n),
		Settings:  domain.QuizSettings{Amount: n, Category: "9", Difficulty: domain.DifficultyEasy},
	}
}

type stubSource struct {
	mu    sync.Mutex
	calls int
	fetch func(ctx context.Context, settings domain.QuizSettings) domain.QuestionSet
}

func (s *stubSource) Fetch(ctx context.Context, settings domain.QuizSettings) domain.QuestionSet {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fetch != nil {
		return s.fetch(ctx, settings)
	}
	set := sampleSet(settings.Amount)
	set.Settings = settings
	return set
}

func (s *stubSource) FallbackCategories() []domain.Category {
	return []domain.Category{{ID: 9, Name: "General Knowledge"}}
}

type stubCategories struct {
	categories []domain.Category
	err        error
}

func (s stubCategories) GetCategories(context.Context) ([]domain.Category, error) {
	return s.categories, s.err
}

var errStoreDown = errors.New("store down")

// failingStore wraps a StateStore and fails writes while broken is set.
type failingStore struct {
	app.StateStore
	mu     sync.Mutex
	broken bool
}

func (f *failingStore) setBroken(v bool) {
	f.mu.Lock()
	f.broken = v
	f.mu.Unlock()
}

func (f *failingStore) Save(ctx context.Context, key string, value any) error {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errStoreDown
	}
	return f.StateStore.Save(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errStoreDown
	}
	return f.StateStore.Delete(ctx, key)
}
