package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// manualTimer fires immediately and records every requested wait.
type manualTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newManualTimer() *manualTimer {
	return &manualTimer{c: make(chan time.Time, 1)}
}

func (t *manualTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Time{}
}

func (t *manualTimer) Stop() {}

func (t *manualTimer) C() <-chan time.Time { return t.c }

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	timer := newManualTimer()
	boom := errors.New("boom")
	calls := 0

	err := Do(context.Background(), Policy{
		MaxAttempts: 3,
		Backoff:     Linear(time.Second),
		Timer:       timer,
	}, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(timer.waits) != len(want) {
		t.Fatalf("expected waits %v, got %v", want, timer.waits)
	}
	for i := range want {
		if timer.waits[i] != want[i] {
			t.Fatalf("wait %d: expected %v, got %v", i, want[i], timer.waits[i])
		}
	}
}

func TestDoReturnsValueOnSuccess(t *testing.T) {
	timer := newManualTimer()
	calls := 0

	got, err := DoValue(context.Background(), Policy{
		MaxAttempts: 3,
		Backoff:     Exponential(time.Second),
		Timer:       timer,
	}, func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Fatalf("expected ok after 2 calls, got %q after %d", got, calls)
	}
	if len(timer.waits) != 1 || timer.waits[0] != 2*time.Second {
		t.Fatalf("expected single 2s wait, got %v", timer.waits)
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	timer := newManualTimer()
	fatal := errors.New("fatal")
	calls := 0

	err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		Backoff:     Linear(time.Second),
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
		Timer:       timer,
	}, func(context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal, got %v", err)
	}
	if calls != 1 || len(timer.waits) != 0 {
		t.Fatalf("expected a single call without waits, got calls=%d waits=%v", calls, timer.waits)
	}
}

func TestDoBackoffSeesAttemptError(t *testing.T) {
	timer := newManualTimer()
	slow := errors.New("slow down")
	var seen []error

	_ = Do(context.Background(), Policy{
		MaxAttempts: 2,
		Backoff: func(attempt int, err error) time.Duration {
			seen = append(seen, err)
			return time.Duration(attempt) * time.Millisecond
		},
		Timer: timer,
	}, func(context.Context) error {
		return slow
	})
	if len(seen) != 1 || !errors.Is(seen[0], slow) {
		t.Fatalf("expected backoff to receive the attempt error, got %v", seen)
	}
}

func TestDoHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Policy{MaxAttempts: 3, Backoff: Linear(time.Hour)}, func(context.Context) error {
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestSchedules(t *testing.T) {
	tests := []struct {
		name    string
		fn      BackoffFunc
		attempt int
		want    time.Duration
	}{
		{"linear first", Linear(3 * time.Second), 1, 3 * time.Second},
		{"linear second", Linear(3 * time.Second), 2, 6 * time.Second},
		{"exponential first", Exponential(2 * time.Second), 1, 4 * time.Second},
		{"exponential second", Exponential(2 * time.Second), 2, 8 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.attempt, nil); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
