package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBeginFinish(t *testing.T) {
	store := newTestStore(t)

	run, err := store.Begin("backup")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if run.ID == "" {
		t.Error("Begin() returned empty ID")
	}
	if run.Status != "running" {
		t.Errorf("Status = %q, want %q", run.Status, "running")
	}
	if run.Duration() != 0 {
		t.Errorf("Duration() = %v before finish, want 0", run.Duration())
	}

	if err := store.Finish(run, "success", 3, "abc123"); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if run.Status != "success" || run.FilesCopied != 3 || run.CommitHash != "abc123" {
		t.Errorf("run after Finish = %+v", run)
	}
	if !run.FinishedAt.Valid {
		t.Error("FinishedAt not set")
	}
}

func TestList(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	i := 0
	store.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}

	first, err := store.Begin("backup")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := store.Finish(first, "success", 1, ""); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	second, err := store.Begin("restore")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := store.Finish(second, "error", 0, ""); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	runs, err := store.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ID != second.ID {
		t.Errorf("first listed run = %s, want %s", runs[0].ID, second.ID)
	}
	if runs[1].Operation != "backup" {
		t.Errorf("second listed operation = %q, want %q", runs[1].Operation, "backup")
	}

	limited, err := store.List(1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(1) returned %d runs, want 1", len(limited))
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if _, err := store.Begin("backup"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
}
