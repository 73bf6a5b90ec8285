package app

import (
	"context"
	"log"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc builds a Ticker for the given interval.
type TickerFunc func(interval time.Duration) Ticker

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// NewTicker wraps time.NewTicker.
func NewTicker(interval time.Duration) Ticker {
	return realTicker{time.NewTicker(interval)}
}

// TimerState is the phase of a QuizTimer.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerExpiring
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerExpiring:
		return "expiring"
	default:
		return "idle"
	}
}

// QuizTimer counts a QuizSession down, one tick per interval, and ends the session when
// the clock reaches zero. Expiry is signaled once per attempt activation.
//
// Callbacks run on the timer goroutine and must not call Sync or Stop.
type QuizTimer struct {
	session   *QuizSession
	interval  time.Duration
	newTicker TickerFunc
	onTick    func(domain.QuizSnapshot)
	onExpire  func(domain.QuizSnapshot)

	// opMu serializes Sync and Stop; mu guards the fields below and is never held
	// while waiting for the loop.
	opMu     sync.Mutex
	mu       sync.Mutex
	state    TimerState
	attempt  string
	signaled bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// TimerOption customizes a QuizTimer.
type TimerOption func(*QuizTimer)

// WithTicker replaces the wall-clock ticker, e.g. with a manual one in tests.
func WithTicker(fn TickerFunc) TimerOption {
	return func(t *QuizTimer) { t.newTicker = fn }
}

// WithInterval sets the tick interval (default one second).
func WithInterval(d time.Duration) TimerOption {
	return func(t *QuizTimer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// OnTick registers a callback receiving the snapshot after every applied tick.
func OnTick(fn func(domain.QuizSnapshot)) TimerOption {
	return func(t *QuizTimer) { t.onTick = fn }
}

// OnExpire registers the expiry callback.
func OnExpire(fn func(domain.QuizSnapshot)) TimerOption {
	return func(t *QuizTimer) { t.onExpire = fn }
}

func NewQuizTimer(session *QuizSession, opts ...TimerOption) *QuizTimer {
	t := &QuizTimer{
		session:   session,
		interval:  time.Second,
		newTicker: NewTicker,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State reports the current phase.
func (t *QuizTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Sync aligns the timer with the session: it runs while the session is active with time
// left, expires an active session already at zero, and stops otherwise.
func (t *QuizTimer) Sync() {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	snap := t.session.Snapshot()
	switch {
	case snap.IsActive && snap.TimeRemaining > 0:
		t.mu.Lock()
		running := t.state == TimerRunning && t.attempt == snap.AttemptID
		t.mu.Unlock()
		if running {
			return
		}
		t.stop()
		t.start(snap.AttemptID)
	case snap.IsActive:
		t.stop()
		t.mu.Lock()
		if t.attempt != snap.AttemptID {
			t.attempt = snap.AttemptID
			t.signaled = false
		}
		t.mu.Unlock()
		t.expire(snap.AttemptID)
	default:
		t.stop()
	}
}

// Stop halts the tick loop and waits for it to exit. No tick is applied after Stop returns.
func (t *QuizTimer) Stop() {
	t.opMu.Lock()
	defer t.opMu.Unlock()
	t.stop()
}

func (t *QuizTimer) stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.state = TimerIdle
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (t *QuizTimer) start(attempt string) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := t.newTicker(t.interval)

	t.mu.Lock()
	t.attempt = attempt
	t.signaled = false
	t.state = TimerRunning
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.run(ctx, attempt, ticker, done)
}

func (t *QuizTimer) run(ctx context.Context, attempt string, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !t.handleTick(attempt) {
				return
			}
		}
	}
}

// handleTick applies one tick and reports whether the loop should keep going.
func (t *QuizTimer) handleTick(attempt string) bool {
	snap, ok := t.session.TickAttempt(attempt)
	if !ok {
		// superseded attempt or session ended by someone else
		t.mu.Lock()
		if t.attempt == attempt && t.state == TimerRunning {
			t.state = TimerIdle
		}
		t.mu.Unlock()
		return false
	}
	if t.onTick != nil {
		t.onTick(snap)
	}
	if snap.TimeRemaining > 0 {
		return true
	}
	t.expire(attempt)
	return false
}

func (t *QuizTimer) expire(attempt string) {
	t.mu.Lock()
	if t.signaled || t.attempt != attempt {
		t.mu.Unlock()
		return
	}
	t.signaled = true
	t.state = TimerExpiring
	t.mu.Unlock()

	if !t.session.EndAttempt(attempt) {
		return
	}
	log.Printf("quiz attempt %s expired", attempt)
	if t.onExpire != nil {
		t.onExpire(t.session.Snapshot())
	}
}
