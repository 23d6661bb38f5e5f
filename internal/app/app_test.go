package app

import (
	"os"
	"path/filepath"
	"testing"

	"dotsync/internal/config"
	"dotsync/internal/history"
)

func writeTestConfig(t *testing.T, mirrorDir string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(config.EnvConfigPath, path)

	cfg := &config.Config{
		Files: config.FilesConfig{
			Folder: mirrorDir,
			Paths:  []string{"~/.vimrc"},
		},
		Git: config.GitConfig{
			RemoteURL: "git@example.com:user/dotfiles.git",
		},
	}
	if err := config.Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
}

func TestNewFinishesJournalRowOnLoggerFailure(t *testing.T) {
	base := t.TempDir()
	t.Setenv(EnvHome, base)
	writeTestConfig(t, filepath.Join(base, "mirror"))

	// A plain file where the log directory belongs makes logger setup
	// fail after the journal row was already started.
	if err := os.WriteFile(filepath.Join(base, "log"), []byte("in the way"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New("backup"); err == nil {
		t.Fatal("New() expected error")
	}

	store, err := history.Open(filepath.Join(base, "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	runs, err := store.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("List() returned %d runs, want 1", len(runs))
	}
	if runs[0].Status != "error" {
		t.Errorf("run status = %q, want %q", runs[0].Status, "error")
	}
	if !runs[0].FinishedAt.Valid {
		t.Error("run left unfinished")
	}
}

func TestGetDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv(EnvHome, base)

	d := GetDefaults()
	if d.BaseDir != base {
		t.Errorf("BaseDir = %q, want %q", d.BaseDir, base)
	}
	if d.LogDir != filepath.Join(base, "log") {
		t.Errorf("LogDir = %q", d.LogDir)
	}
	if d.JournalPath != filepath.Join(base, "history.db") {
		t.Errorf("JournalPath = %q", d.JournalPath)
	}
}
