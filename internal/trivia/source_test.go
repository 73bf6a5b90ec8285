package trivia

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"trivia-quiz-service/internal/domain"
)

const testBaseDelay = 100 * time.Millisecond

// recordingTimer fires at once and remembers the waits it was asked for.
type recordingTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	t.c <- time.Time{}
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func (t *recordingTimer) recorded() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}

func newTestSource(t *testing.T, handler http.HandlerFunc) (*Source, *recordingTimer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	timer := &recordingTimer{c: make(chan time.Time, 1)}
	opts := DefaultOptions()
	opts.QuestionBaseDelay = testBaseDelay
	opts.CategoryBaseDelay = testBaseDelay
	opts.NewTimer = func() backoff.Timer { return timer }
	opts.Rand = rand.New(rand.NewSource(1))
	return NewSource(NewClient(server.URL, server.Client()), opts), timer
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestFetchDecodesAndShufflesAnswers(t *testing.T) {
	var query url.Values
	source, timer := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(t, w, map[string]any{
			"response_code": 0,
			"results": []map[string]any{{
				"category":          "Entertainment: Film",
				"type":              "multiple",
				"difficulty":        "medium",
				"question":          "Who said &quot;I&#039;ll be back&quot;?",
				"correct_answer":    "The Terminator",
				"incorrect_answers": []string{"Rocky &amp; Adrian", "Ripley", "Neo"},
			}},
		})
	})

	set := source.Fetch(context.Background(), domain.QuizSettings{Amount: 1, Category: "11", Difficulty: domain.DifficultyMedium})
	if set.UsingFallback {
		t.Fatalf("expected remote questions")
	}
	if got := query.Get("amount"); got != "1" {
		t.Fatalf("expected amount=1, got %q", got)
	}
	if query.Get("category") != "11" || query.Get("difficulty") != "medium" {
		t.Fatalf("expected category and difficulty in query, got %v", query)
	}
	if len(set.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(set.Questions))
	}
	q := set.Questions[0]
	if q.Question != `Who said "I'll be back"?` {
		t.Fatalf("question not decoded: %q", q.Question)
	}
	if q.IncorrectAnswers[0] != "Rocky & Adrian" {
		t.Fatalf("incorrect answer not decoded: %q", q.IncorrectAnswers[0])
	}
	got := append([]string(nil), q.AllAnswers...)
	sort.Strings(got)
	want := []string{"Neo", "Ripley", "Rocky & Adrian", "The Terminator"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected answers %v, got %v", want, got)
		}
	}
	if waits := timer.recorded(); len(waits) != 0 {
		t.Fatalf("expected no retries, got waits %v", waits)
	}
}

func TestFetchOmitsAnyFilters(t *testing.T) {
	var query url.Values
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(t, w, map[string]any{"response_code": 1, "results": []any{}})
	})

	source.Fetch(context.Background(), domain.QuizSettings{Amount: 5, Category: domain.AnyCategory, Difficulty: domain.DifficultyAny})
	if _, ok := query["category"]; ok {
		t.Fatalf("category should be omitted, got %v", query)
	}
	if _, ok := query["difficulty"]; ok {
		t.Fatalf("difficulty should be omitted, got %v", query)
	}
}

func TestFetchRateLimitedFallsBackAfterThreeAttempts(t *testing.T) {
	calls := 0
	source, timer := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	set := source.Fetch(context.Background(), domain.QuizSettings{Amount: 5})
	if !set.UsingFallback {
		t.Fatalf("expected fallback questions")
	}
	if len(set.Questions) != 5 {
		t.Fatalf("expected 5 fallback questions, got %d", len(set.Questions))
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	waits := timer.recorded()
	want := []time.Duration{testBaseDelay * 2, testBaseDelay * 4}
	if len(waits) != len(want) || waits[0] != want[0] || waits[1] != want[1] {
		t.Fatalf("expected waits %v, got %v", want, waits)
	}
}

func TestFetchRetriesTransientErrorsLinearly(t *testing.T) {
	calls := 0
	source, timer := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, map[string]any{
			"response_code": 0,
			"results": []map[string]any{{
				"category": "Science", "type": "multiple", "difficulty": "easy",
				"question": "H2O is?", "correct_answer": "Water",
				"incorrect_answers": []string{"Salt", "Air", "Fire"},
			}},
		})
	})

	set := source.Fetch(context.Background(), domain.QuizSettings{Amount: 1})
	if set.UsingFallback {
		t.Fatalf("expected remote questions after retries")
	}
	waits := timer.recorded()
	want := []time.Duration{testBaseDelay, testBaseDelay * 2}
	if len(waits) != len(want) || waits[0] != want[0] || waits[1] != want[1] {
		t.Fatalf("expected waits %v, got %v", want, waits)
	}
}

func TestFetchLogicalErrorFallsBackWithoutRetry(t *testing.T) {
	calls := 0
	source, timer := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(t, w, map[string]any{"response_code": 2, "results": []any{}})
	})

	set := source.Fetch(context.Background(), domain.QuizSettings{Amount: 15})
	if !set.UsingFallback {
		t.Fatalf("expected fallback")
	}
	if calls != 1 || len(timer.recorded()) != 0 {
		t.Fatalf("expected a single attempt, got calls=%d waits=%v", calls, timer.recorded())
	}
	if set.Settings.Category != "General Knowledge" || set.Settings.Difficulty != domain.DifficultyEasy || set.Settings.Amount != 10 {
		t.Fatalf("unexpected fallback settings %+v", set.Settings)
	}
}

func TestFallbackSizes(t *testing.T) {
	source := NewSource(nil, Options{Rand: rand.New(rand.NewSource(7))})
	for _, amount := range domain.SetupAmounts {
		set := source.Fetch(context.Background(), domain.QuizSettings{Amount: amount})
		want := amount
		if want > FallbackBankSize {
			want = FallbackBankSize
		}
		if !set.UsingFallback || len(set.Questions) != want {
			t.Fatalf("amount %d: expected %d fallback questions, got %d", amount, want, len(set.Questions))
		}
		seen := map[string]bool{}
		for _, q := range set.Questions {
			if len(q.AllAnswers) != 4 {
				t.Fatalf("expected 4 answers, got %v", q.AllAnswers)
			}
			if seen[q.Question] {
				t.Fatalf("duplicate fallback question %q", q.Question)
			}
			seen[q.Question] = true
			found := false
			for _, a := range q.AllAnswers {
				if a == q.CorrectAnswer {
					found = true
				}
			}
			if !found {
				t.Fatalf("correct answer missing from %v", q.AllAnswers)
			}
		}
	}
}

func TestResponseCodeMessages(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{1, "no results found"},
		{2, "invalid parameter"},
		{3, "token not found"},
		{4, "token empty"},
		{5, "api error: response code 5"},
	}
	for _, tt := range tests {
		if got := (&ResponseCodeError{Code: tt.code}).Error(); got != tt.want {
			t.Errorf("code %d: got %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestFetchCategories(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api_category.php" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, map[string]any{
			"trivia_categories": []map[string]any{{"id": 18, "name": "Science: Computers"}},
		})
	})

	categories := source.FetchCategories(context.Background())
	if len(categories) != 1 || categories[0].ID != 18 {
		t.Fatalf("unexpected categories %+v", categories)
	}
}

func TestFetchCategoriesFallsBack(t *testing.T) {
	calls := 0
	source, timer := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	categories := source.FetchCategories(context.Background())
	if len(categories) != 4 || categories[0].Name != "General Knowledge" {
		t.Fatalf("expected fallback categories, got %+v", categories)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if waits := timer.recorded(); len(waits) != 1 || waits[0] != testBaseDelay {
		t.Fatalf("expected one linear wait, got %v", waits)
	}
}
