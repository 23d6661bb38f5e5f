package sync_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	syncpkg "dotsync/internal/sync"
	"dotsync/internal/testutil"
)

func newTestService(fsys *testutil.MockFilesystem, repo *testutil.MockMirror, paths ...string) *syncpkg.Service {
	entries := make([]syncpkg.TrackedEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, syncpkg.TrackedEntry{RawPath: p})
	}

	return syncpkg.NewService(syncpkg.Config{
		MirrorDir:     "/home/test/.dotsync-mirror",
		RemoteURL:     "git@example.com:user/dotfiles.git",
		Branch:        "main",
		CommitMessage: "Update dotfiles",
		Entries:       entries,
	}, fsys, repo, syncpkg.NewNopLogger(), testutil.FixedClock())
}

func TestBackup(t *testing.T) {
	t.Run("copies stale files and pushes", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime.Add(time.Hour))
		fsys.AddFile("/home/test/.dotsync-mirror/.vimrc", []byte("old\n"), baseTime)
		fsys.AddFile("~/.bashrc", []byte("export A=1\n"), baseTime)
		repo := testutil.NewMockMirror()
		svc := newTestService(fsys, repo, "~/.vimrc", "~/.bashrc")

		result, err := svc.Backup(false)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}

		wantCopied := []string{"/home/test/.vimrc", "/home/test/.bashrc"}
		if !reflect.DeepEqual(result.Copied, wantCopied) {
			t.Errorf("Copied = %v, want %v", result.Copied, wantCopied)
		}
		if result.CommitHash == "" || !result.Pushed {
			t.Errorf("expected commit and push, got hash=%q pushed=%v", result.CommitHash, result.Pushed)
		}

		mirror := fsys.File("/home/test/.dotsync-mirror/.bashrc")
		if mirror == nil || string(mirror.Content) != "export A=1\n" {
			t.Errorf("mirror copy of .bashrc missing or wrong")
		}

		wantCalls := []string{
			"EnsureInitialized",
			"IdentityConfigured",
			"StageAll",
			"CommitIfChanged",
			"EnsureBranch",
			"ConfigureRemote",
			"Push",
		}
		if !reflect.DeepEqual(repo.CallNames(), wantCalls) {
			t.Errorf("repo calls = %v, want %v", repo.CallNames(), wantCalls)
		}
	})

	t.Run("short-circuits when nothing changed", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		fsys.AddFile("/home/test/.dotsync-mirror/.vimrc", []byte("set number\n"), baseTime)
		repo := testutil.NewMockMirror()
		svc := newTestService(fsys, repo, "~/.vimrc")

		result, err := svc.Backup(false)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if !result.NoChanges {
			t.Error("expected NoChanges")
		}
		if len(repo.Calls) != 0 {
			t.Errorf("expected no repo calls, got %v", repo.Calls)
		}
	})

	t.Run("dry run mutates nothing", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		repo := testutil.NewMockMirror()
		svc := newTestService(fsys, repo, "~/.vimrc")

		result, err := svc.Backup(true)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if !result.DryRun {
			t.Error("expected DryRun")
		}
		if want := []string{"/home/test/.vimrc"}; !reflect.DeepEqual(result.Copied, want) {
			t.Errorf("Copied = %v, want %v", result.Copied, want)
		}
		if fsys.File("/home/test/.dotsync-mirror/.vimrc") != nil {
			t.Error("dry run wrote to the mirror")
		}
		if len(repo.Calls) != 0 {
			t.Errorf("dry run touched the repository: %v", repo.Calls)
		}
		if fsys.HasDir("/home/test/.dotsync-mirror") {
			t.Error("dry run created the mirror directory")
		}
	})

	t.Run("skips missing live files", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		repo := testutil.NewMockMirror()
		svc := newTestService(fsys, repo, "~/.gone", "~/.vimrc")

		result, err := svc.Backup(false)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if want := []string{"~/.gone"}; !reflect.DeepEqual(result.Skipped, want) {
			t.Errorf("Skipped = %v, want %v", result.Skipped, want)
		}
		if want := []string{"/home/test/.vimrc"}; !reflect.DeepEqual(result.Copied, want) {
			t.Errorf("Copied = %v, want %v", result.Copied, want)
		}
	})

	t.Run("no push when mirror matched head", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		repo := testutil.NewMockMirror()
		repo.Committed = false
		svc := newTestService(fsys, repo, "~/.vimrc")

		result, err := svc.Backup(false)
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if result.CommitHash != "" || result.Pushed {
			t.Errorf("expected no commit, got hash=%q pushed=%v", result.CommitHash, result.Pushed)
		}
		for _, call := range repo.CallNames() {
			if call == "Push" {
				t.Error("pushed despite empty commit")
			}
		}
	})

	t.Run("aborts on copy failure", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		fsys.AddFile("~/.bashrc", []byte("export A=1\n"), baseTime)
		fsys.CopyErr["/home/test/.vimrc"] = errors.New("disk full")
		repo := testutil.NewMockMirror()
		svc := newTestService(fsys, repo, "~/.vimrc", "~/.bashrc")

		if _, err := svc.Backup(false); err == nil {
			t.Fatal("Backup() expected error")
		}
		if fsys.File("/home/test/.dotsync-mirror/.bashrc") != nil {
			t.Error("copied past the failing file")
		}
	})

	t.Run("missing identity stops before staging", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		repo := testutil.NewMockMirror()
		repo.Errs["IdentityConfigured"] = errors.New("user identity not configured")
		svc := newTestService(fsys, repo, "~/.vimrc")

		if _, err := svc.Backup(false); err == nil {
			t.Fatal("Backup() expected error")
		}
		for _, call := range repo.CallNames() {
			if call == "StageAll" || call == "CommitIfChanged" {
				t.Errorf("unexpected call %s after identity failure", call)
			}
		}
	})

	t.Run("reports progress per copy", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("~/.vimrc", []byte("set number\n"), baseTime)
		fsys.AddFile("~/.bashrc", []byte("export A=1\n"), baseTime)
		repo := testutil.NewMockMirror()
		svc := newTestService(fsys, repo, "~/.vimrc", "~/.bashrc")

		var seen []string
		svc.SetProgress(func(done, total int, name string) {
			seen = append(seen, name)
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
		})

		if _, err := svc.Backup(false); err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if want := []string{".vimrc", ".bashrc"}; !reflect.DeepEqual(seen, want) {
			t.Errorf("progress names = %v, want %v", seen, want)
		}
	})
}
