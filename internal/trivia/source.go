package trivia

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/retry"
)

// Options tune the retry and timeout behavior of a Source.
type Options struct {
	QuestionAttempts  int
	QuestionBaseDelay time.Duration
	QuestionTimeout   time.Duration

	CategoryAttempts  int
	CategoryBaseDelay time.Duration
	CategoryTimeout   time.Duration

	// NewTimer builds the timer used for retry waits; nil uses real time.
	NewTimer func() backoff.Timer
	// Rand drives answer and fallback shuffles; nil seeds from the clock.
	Rand *rand.Rand
}

// DefaultOptions mirrors the public API's tolerance: three question attempts 3s apart
// (linear) or 6s/12s when rate limited, two category attempts from 2s.
func DefaultOptions() Options {
	return Options{
		QuestionAttempts:  3,
		QuestionBaseDelay: 3 * time.Second,
		QuestionTimeout:   30 * time.Second,
		CategoryAttempts:  2,
		CategoryBaseDelay: 2 * time.Second,
		CategoryTimeout:   15 * time.Second,
	}
}

// Source delivers quiz questions. Remote failures never reach the caller: once retries are
// exhausted the bundled bank is served instead.
type Source struct {
	client *Client
	opts   Options

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSource(client *Client, opts Options) *Source {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Source{client: client, opts: opts, rnd: rnd}
}

// Fetch returns amount questions for the requested category and difficulty, or the
// fallback bank (at most FallbackBankSize questions) when the API cannot serve them.
func (s *Source) Fetch(ctx context.Context, settings domain.QuizSettings) domain.QuestionSet {
	questions, err := s.fetchRemote(ctx, settings)
	if err != nil {
		log.Printf("fetch questions failed, using fallback questions: %v", err)
		return s.fallback(settings.Amount)
	}
	log.Printf("fetched %d questions", len(questions))
	return domain.QuestionSet{Questions: questions, Settings: settings}
}

func (s *Source) fetchRemote(ctx context.Context, settings domain.QuizSettings) ([]domain.Question, error) {
	if s.client == nil {
		return nil, errors.New("trivia client not configured")
	}
	policy := s.policy("questions", s.opts.QuestionAttempts, s.opts.QuestionBaseDelay)
	resp, err := retry.DoValue(ctx, policy, func(ctx context.Context) (questionsResponse, error) {
		return s.client.Questions(ctx, settings, s.opts.QuestionTimeout)
	})
	if err != nil {
		return nil, busyIfRateLimited(err)
	}
	if resp.ResponseCode != 0 {
		return nil, &ResponseCodeError{Code: resp.ResponseCode}
	}
	if len(resp.Results) == 0 {
		return nil, &ResponseCodeError{Code: 1}
	}
	return s.prepare(resp.Results), nil
}

// LoadCategories fetches the category list with retries and reports failures.
func (s *Source) LoadCategories(ctx context.Context) ([]domain.Category, error) {
	if s.client == nil {
		return nil, errors.New("trivia client not configured")
	}
	policy := s.policy("categories", s.opts.CategoryAttempts, s.opts.CategoryBaseDelay)
	categories, err := retry.DoValue(ctx, policy, func(ctx context.Context) ([]domain.Category, error) {
		return s.client.Categories(ctx, s.opts.CategoryTimeout)
	})
	if err != nil {
		return nil, busyIfRateLimited(err)
	}
	return categories, nil
}

// FetchCategories never fails; the offline list stands in for the API.
func (s *Source) FetchCategories(ctx context.Context) []domain.Category {
	categories, err := s.LoadCategories(ctx)
	if err != nil {
		log.Printf("fetch categories failed, using fallback categories: %v", err)
		return FallbackCategories()
	}
	return categories
}

// FallbackCategories exposes the offline category list.
func (s *Source) FallbackCategories() []domain.Category {
	return FallbackCategories()
}

func (s *Source) policy(name string, attempts int, base time.Duration) retry.Policy {
	if attempts < 1 {
		attempts = 1
	}
	p := retry.Policy{
		MaxAttempts: attempts,
		Backoff:     rateLimitAware(base),
		Retryable: func(err error) bool {
			return !errors.Is(err, context.Canceled)
		},
		Notify: func(attempt int, err error, wait time.Duration) {
			log.Printf("trivia %s attempt %d/%d failed: %v; retrying in %s", name, attempt, attempts, err, wait)
		},
	}
	if s.opts.NewTimer != nil {
		p.Timer = s.opts.NewTimer()
	}
	return p
}

// rateLimitAware backs off exponentially after a 429 and linearly after anything else.
func rateLimitAware(base time.Duration) retry.BackoffFunc {
	exponential := retry.Exponential(base)
	linear := retry.Linear(base)
	return func(attempt int, err error) time.Duration {
		if errors.Is(err, domain.ErrRateLimited) {
			return exponential(attempt, err)
		}
		return linear(attempt, err)
	}
}

func busyIfRateLimited(err error) error {
	if errors.Is(err, domain.ErrRateLimited) {
		return fmt.Errorf("%w: %v", domain.ErrServiceBusy, err)
	}
	return err
}

func (s *Source) prepare(raw []rawQuestion) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for _, r := range raw {
		correct := html.UnescapeString(r.CorrectAnswer)
		incorrect := make([]string, 0, len(r.IncorrectAnswers))
		for _, answer := range r.IncorrectAnswers {
			incorrect = append(incorrect, html.UnescapeString(answer))
		}
		all := make([]string, 0, len(incorrect)+1)
		all = append(all, incorrect...)
		all = append(all, correct)
		s.shuffleStrings(all)

		questions = append(questions, domain.Question{
			Category:         html.UnescapeString(r.Category),
			Type:             r.Type,
			Difficulty:       domain.Difficulty(r.Difficulty),
			Question:         html.UnescapeString(r.Question),
			CorrectAnswer:    correct,
			IncorrectAnswers: incorrect,
			AllAnswers:       all,
		})
	}
	return questions
}

func (s *Source) fallback(amount int) domain.QuestionSet {
	bank := fallbackQuestions()

	s.mu.Lock()
	s.rnd.Shuffle(len(bank), func(i, j int) { bank[i], bank[j] = bank[j], bank[i] })
	for i := range bank {
		answers := bank[i].AllAnswers
		s.rnd.Shuffle(len(answers), func(a, b int) { answers[a], answers[b] = answers[b], answers[a] })
	}
	s.mu.Unlock()

	limit := amount
	if limit < 1 {
		limit = 1
	}
	if limit > len(bank) {
		limit = len(bank)
	}
	selected := bank[:limit]
	log.Printf("using %d fallback questions", len(selected))

	return domain.QuestionSet{
		Questions:     selected,
		UsingFallback: true,
		Settings: domain.QuizSettings{
			Amount:     len(selected),
			Category:   fallbackCategory,
			Difficulty: fallbackDifficulty,
		},
	}
}

func (s *Source) shuffleStrings(values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
}
