package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuizStateKey is the storage key of the quiz session snapshot.
const QuizStateKey = "quiz-storage"

// MaxQuestions bounds a single setup request.
const MaxQuestions = 50

// StateStore persists small JSON-encodable blobs by key (memory, SQLite, Redis, Postgres).
type StateStore interface {
	// Load decodes the blob stored under key into dst and reports whether it existed.
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// QuestionSource produces question sets; it absorbs remote failures itself.
type QuestionSource interface {
	Fetch(ctx context.Context, settings domain.QuizSettings) domain.QuestionSet
	FallbackCategories() []domain.Category
}

// CategoryRepository serves trivia categories (from cache/backing API).
type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// ServiceConfig tunes the quiz clock.
type ServiceConfig struct {
	SecondsPerQuestion int
	Tick               time.Duration
	// Ticker overrides the wall-clock ticker (tests).
	Ticker TickerFunc
}

// QuizStatus is the player-facing view of the session.
type QuizStatus struct {
	Snapshot            domain.QuizSnapshot `json:"snapshot"`
	CurrentQuestion     *domain.Question    `json:"currentQuestion,omitempty"`
	ProgressPercent     float64             `json:"progressPercent"`
	TimeProgressPercent float64             `json:"timeProgressPercent"`
	Complete            bool                `json:"complete"`
}

// QuizService contains the quiz use cases: setup, play, timing, reporting.
type QuizService struct {
	source     QuestionSource
	categories CategoryRepository
	store      StateStore
	session    *QuizSession
	timer      *QuizTimer
	events     *eventHub

	mu        sync.Mutex
	persistMu sync.Mutex
	setupSeq  atomic.Uint64
}

func NewQuizService(source QuestionSource, categories CategoryRepository, store StateStore, cfg ServiceConfig) *QuizService {
	s := &QuizService{
		source:     source,
		categories: categories,
		store:      store,
		session:    NewQuizSession(cfg.SecondsPerQuestion),
		events:     newEventHub(),
	}
	opts := []TimerOption{
		WithInterval(cfg.Tick),
		OnTick(s.handleTick),
		OnExpire(s.handleExpire),
	}
	if cfg.Ticker != nil {
		opts = append(opts, WithTicker(cfg.Ticker))
	}
	s.timer = NewQuizTimer(s.session, opts...)
	return s
}

// Restore reloads the persisted snapshot and resumes the clock of an active attempt.
func (s *QuizService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap domain.QuizSnapshot
	ok, err := s.store.Load(ctx, QuizStateKey, &snap)
	if err != nil {
		return fmt.Errorf("load quiz state: %w", err)
	}
	if !ok {
		return nil
	}
	s.session.Restore(snap)
	if snap.IsActive {
		log.Printf("resuming quiz attempt %s with %ds left", snap.AttemptID, snap.TimeRemaining)
		s.timer.Sync()
	}
	return nil
}

// Setup fetches questions for settings and loads them as a new, inactive attempt.
// Only the most recent concurrent Setup installs its questions.
func (s *QuizService) Setup(ctx context.Context, settings domain.QuizSettings) (domain.QuizSnapshot, error) {
	settings, err := normalizeSettings(settings)
	if err != nil {
		return domain.QuizSnapshot{}, err
	}
	seq := s.setupSeq.Add(1)

	set := s.source.Fetch(ctx, settings)
	if err := ctx.Err(); err != nil {
		// abandoned request: keep the current attempt
		return domain.QuizSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setupSeq.Load() != seq {
		return domain.QuizSnapshot{}, domain.ErrSetupSuperseded
	}
	prev := s.session.Snapshot()
	s.timer.Stop()
	s.session.Load(set)
	return s.commitLocked(ctx, domain.EventLoaded, prev)
}

// Start activates the loaded attempt and starts the clock. An attempt that ran out of
// time or questions cannot be restarted.
func (s *QuizService) Start(ctx context.Context) (domain.QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session.Snapshot()
	if len(prev.Questions) == 0 {
		return prev, domain.ErrNoQuestions
	}
	if prev.TimeRemaining == 0 || isComplete(prev) {
		return prev, domain.ErrQuizComplete
	}
	s.session.Start()
	s.timer.Sync()
	return s.commitLocked(ctx, domain.EventStarted, prev)
}

// Answer records an answer for the current question. Answering the last question ends
// the attempt.
func (s *QuizService) Answer(ctx context.Context, answer string) (domain.QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session.Snapshot()
	if !prev.IsActive {
		return prev, domain.ErrQuizNotActive
	}
	if prev.TimeRemaining == 0 || !s.session.Answer(answer) {
		return prev, domain.ErrQuizComplete
	}
	if !s.session.IsComplete() {
		return s.commitLocked(ctx, domain.EventAnswered, prev)
	}

	s.timer.Stop()
	s.session.End()
	return s.commitLocked(ctx, domain.EventEnded, prev)
}

// End stops the attempt early.
func (s *QuizService) End(ctx context.Context) (domain.QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session.Snapshot()
	s.timer.Stop()
	s.session.End()
	return s.commitLocked(ctx, domain.EventEnded, prev)
}

// Reset discards the attempt entirely, including its stored copy.
func (s *QuizService) Reset(ctx context.Context) (domain.QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session.Snapshot()
	s.timer.Stop()
	s.session.Reset()
	return s.commitLocked(ctx, domain.EventReset, prev)
}

// Clear is an alias of Reset used when leaving the results screen.
func (s *QuizService) Clear(ctx context.Context) (domain.QuizSnapshot, error) {
	return s.Reset(ctx)
}

// Snapshot returns the session state.
func (s *QuizService) Snapshot() domain.QuizSnapshot {
	return s.session.Snapshot()
}

// Status returns the session state with derived progress values.
func (s *QuizService) Status() QuizStatus {
	return StatusOf(s.session.Snapshot())
}

// StatusOf derives the player-facing view of a snapshot.
func StatusOf(snap domain.QuizSnapshot) QuizStatus {
	status := QuizStatus{
		Snapshot:            snap,
		ProgressPercent:     progressPercent(snap),
		TimeProgressPercent: timeProgressPercent(snap),
		Complete:            isComplete(snap),
	}
	if snap.CurrentIndex >= 0 && snap.CurrentIndex < len(snap.Questions) {
		q := snap.Questions[snap.CurrentIndex]
		status.CurrentQuestion = &q
	}
	return status
}

// Report scores the current snapshot.
func (s *QuizService) Report() domain.ScoreReport {
	return BuildReport(s.session.Snapshot())
}

// TimerState exposes the clock phase.
func (s *QuizService) TimerState() TimerState {
	return s.timer.State()
}

// Categories lists trivia categories, falling back to the offline list.
func (s *QuizService) Categories(ctx context.Context) []domain.Category {
	if s.categories != nil {
		categories, err := s.categories.GetCategories(ctx)
		if err == nil {
			return categories
		}
		log.Printf("load categories failed, using fallback categories: %v", err)
	}
	return s.source.FallbackCategories()
}

// Subscribe returns a channel of quiz events, starting with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe() (<-chan domain.QuizEvent, func()) {
	return s.events.subscribe(domain.QuizEvent{Type: domain.EventLoaded, Snapshot: s.session.Snapshot()})
}

// Close stops the clock.
func (s *QuizService) Close() {
	s.timer.Stop()
}

// commitLocked writes the mutated session and announces it. When the write fails the
// session and its clock go back to prev and nothing is published.
func (s *QuizService) commitLocked(ctx context.Context, event domain.QuizEventType, prev domain.QuizSnapshot) (domain.QuizSnapshot, error) {
	snap, err := s.persist(ctx, event == domain.EventReset)
	if err != nil {
		s.session.Restore(prev)
		s.timer.Sync()
		return prev, fmt.Errorf("save quiz state: %w", err)
	}
	s.events.publish(domain.QuizEvent{Type: event, Snapshot: snap})
	return snap, nil
}

// persist writes the latest session state, or removes it when drop is set. Snapshot and
// write happen under one lock so an older snapshot never overwrites a newer one.
func (s *QuizService) persist(ctx context.Context, drop bool) (domain.QuizSnapshot, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	snap := s.session.Snapshot()
	if drop {
		return snap, s.store.Delete(ctx, QuizStateKey)
	}
	return snap, s.store.Save(ctx, QuizStateKey, snap)
}

// handleTick and handleExpire run on the timer goroutine and must not take s.mu.
func (s *QuizService) handleTick(snap domain.QuizSnapshot) {
	s.events.publish(domain.QuizEvent{Type: domain.EventTick, Snapshot: snap})
	if snap.TimeRemaining == 0 {
		return // expiry persists the final state
	}
	if _, err := s.persist(context.Background(), false); err != nil {
		log.Printf("save quiz state on tick: %v", err)
	}
}

func (s *QuizService) handleExpire(snap domain.QuizSnapshot) {
	s.events.publish(domain.QuizEvent{Type: domain.EventExpired, Snapshot: snap})
	if _, err := s.persist(context.Background(), false); err != nil {
		log.Printf("save quiz state on expiry: %v", err)
	}
}

func normalizeSettings(settings domain.QuizSettings) (domain.QuizSettings, error) {
	if settings.Amount < 1 || settings.Amount > MaxQuestions {
		return settings, fmt.Errorf("%w: amount must be between 1 and %d", domain.ErrInvalidSettings, MaxQuestions)
	}
	difficulty, err := domain.ParseDifficulty(string(settings.Difficulty))
	if err != nil {
		return settings, err
	}
	settings.Difficulty = difficulty
	if settings.Category == "" {
		settings.Category = domain.AnyCategory
	}
	return settings, nil
}
