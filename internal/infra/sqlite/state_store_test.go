package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

type snapshot struct {
	CurrentIndex int       `json:"currentQuestionIndex"`
	Answers      []*string `json:"answers"`
}

func TestStateStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quiz.db")

	store := openStore(t, path)
	answer := "Paris"
	if err := store.Save(ctx, "quiz-storage", snapshot{CurrentIndex: 1, Answers: []*string{&answer, nil}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "quiz-storage", snapshot{CurrentIndex: 2, Answers: []*string{&answer, &answer}}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	closeStore(t, store)

	reopened := openStore(t, path)
	defer closeStore(t, reopened)

	var got snapshot
	ok, err := reopened.Load(ctx, "quiz-storage", &got)
	if err != nil || !ok {
		t.Fatalf("expected stored snapshot, ok=%v err=%v", ok, err)
	}
	if got.CurrentIndex != 2 || len(got.Answers) != 2 || got.Answers[1] == nil {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestStateStoreMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "quiz.db"))
	defer closeStore(t, store)

	var got snapshot
	if ok, err := store.Load(ctx, "auth-storage", &got); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, "auth-storage", snapshot{CurrentIndex: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "auth-storage"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := store.Load(ctx, "auth-storage", &got); ok {
		t.Fatalf("expected blob removed")
	}
}

func openStore(t *testing.T, path string) *StateStore {
	t.Helper()
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := NewStateStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func closeStore(t *testing.T, store *StateStore) {
	t.Helper()
	sqlDB, err := store.db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	_ = sqlDB.Close()
}
