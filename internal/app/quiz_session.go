package app

import (
	"sync"

	"github.com/google/uuid"
	"trivia-quiz-service/internal/domain"
)

// DefaultSecondsPerQuestion is the time budget granted per loaded question.
const DefaultSecondsPerQuestion = 10

const initialAmount = 10

// InitialSnapshot is the state of a session that has never been loaded, or was reset.
func InitialSnapshot() domain.QuizSnapshot {
	return domain.QuizSnapshot{
		Questions: []domain.Question{},
		Answers:   []*string{},
		Amount:    initialAmount,
	}
}

// QuizSession holds one quiz attempt: questions, answers, progress and the countdown.
// All methods are safe for concurrent use and never fail; out-of-range requests are no-ops.
type QuizSession struct {
	secondsPerQuestion int
	newID              func() string

	mu    sync.RWMutex
	state domain.QuizSnapshot
}

func NewQuizSession(secondsPerQuestion int) *QuizSession {
	if secondsPerQuestion <= 0 {
		secondsPerQuestion = DefaultSecondsPerQuestion
	}
	return &QuizSession{
		secondsPerQuestion: secondsPerQuestion,
		newID:              uuid.NewString,
		state:              InitialSnapshot(),
	}
}

// Load installs a fresh, inactive attempt for the given question set.
func (s *QuizSession) Load(set domain.QuestionSet) {
	n := len(set.Questions)
	questions := make([]domain.Question, n)
	copy(questions, set.Questions)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.QuizSnapshot{
		AttemptID:       s.newID(),
		Questions:       questions,
		Answers:         make([]*string, n),
		CurrentIndex:    0,
		TimeRemaining:   n * s.secondsPerQuestion,
		TotalTime:       n * s.secondsPerQuestion,
		IsActive:        false,
		IsUsingFallback: set.UsingFallback,
		Category:        set.Settings.Category,
		Difficulty:      set.Settings.Difficulty,
		Amount:          set.Settings.Amount,
	}
}

// Restore reinstalls a persisted snapshot, repairing the answers length if needed.
func (s *QuizSession) Restore(snap domain.QuizSnapshot) {
	snap = cloneSnapshot(snap)
	if len(snap.Answers) != len(snap.Questions) {
		answers := make([]*string, len(snap.Questions))
		copy(answers, snap.Answers)
		snap.Answers = answers
	}
	if snap.CurrentIndex < 0 {
		snap.CurrentIndex = 0
	}
	if snap.CurrentIndex > len(snap.Questions) {
		snap.CurrentIndex = len(snap.Questions)
	}
	if snap.TimeRemaining < 0 {
		snap.TimeRemaining = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap
}

// Start activates the attempt. It is a no-op when already active.
func (s *QuizSession) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsActive = true
}

// Answer records answer for the current question and moves to the next one.
// It returns false, changing nothing, once every question has been answered.
func (s *QuizSession) Answer(answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.state.CurrentIndex
	if idx >= len(s.state.Questions) {
		return false
	}
	recorded := answer
	s.state.Answers[idx] = &recorded
	s.state.CurrentIndex++
	return true
}

// End deactivates the attempt.
func (s *QuizSession) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsActive = false
}

// EndAttempt deactivates the session only if attemptID is still the loaded attempt.
func (s *QuizSession) EndAttempt(attemptID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AttemptID != attemptID {
		return false
	}
	s.state.IsActive = false
	return true
}

// Reset returns to the initial state.
func (s *QuizSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = InitialSnapshot()
}

// Tick takes one second off the clock while the attempt is active. Floors at zero.
func (s *QuizSession) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked()
}

// TickAttempt ticks only if attemptID is still loaded and active. The returned snapshot
// reflects the state after the tick; ok is false when the tick was discarded.
func (s *QuizSession) TickAttempt(attemptID string) (domain.QuizSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AttemptID != attemptID || !s.state.IsActive {
		return cloneSnapshot(s.state), false
	}
	s.tickLocked()
	return cloneSnapshot(s.state), true
}

func (s *QuizSession) tickLocked() {
	if s.state.IsActive && s.state.TimeRemaining > 0 {
		s.state.TimeRemaining--
	}
}

// CurrentQuestion returns the question awaiting an answer, if any.
func (s *QuizSession) CurrentQuestion() (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.state.CurrentIndex
	if idx < 0 || idx >= len(s.state.Questions) {
		return domain.Question{}, false
	}
	return s.state.Questions[idx], true
}

// ProgressPercent is the share of questions answered, 0 with no questions.
func (s *QuizSession) ProgressPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return progressPercent(s.state)
}

// TimeProgressPercent is the share of time left, 0 when no time was granted.
func (s *QuizSession) TimeProgressPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return timeProgressPercent(s.state)
}

// IsComplete reports whether every question of a non-empty set has been answered.
func (s *QuizSession) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return isComplete(s.state)
}

// Snapshot returns a copy of the current state.
func (s *QuizSession) Snapshot() domain.QuizSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.state)
}

func progressPercent(snap domain.QuizSnapshot) float64 {
	if len(snap.Questions) == 0 {
		return 0
	}
	return float64(snap.CurrentIndex) / float64(len(snap.Questions)) * 100
}

func timeProgressPercent(snap domain.QuizSnapshot) float64 {
	if snap.TotalTime <= 0 {
		return 0
	}
	return float64(snap.TimeRemaining) / float64(snap.TotalTime) * 100
}

func isComplete(snap domain.QuizSnapshot) bool {
	return snap.CurrentIndex >= len(snap.Questions) && len(snap.Questions) > 0
}

func cloneSnapshot(snap domain.QuizSnapshot) domain.QuizSnapshot {
	out := snap
	out.Questions = make([]domain.Question, len(snap.Questions))
	copy(out.Questions, snap.Questions)
	out.Answers = make([]*string, len(snap.Answers))
	copy(out.Answers, snap.Answers)
	return out
}
