package sync_test

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	syncpkg "dotsync/internal/sync"
	"dotsync/internal/testutil"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		srcData   []byte
		srcTime   time.Time
		dstData   []byte
		dstTime   time.Time
		noDst     bool
		direction syncpkg.Direction
		want      syncpkg.Verdict
	}{
		{
			name:      "backup missing destination",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime,
			noDst:     true,
			direction: syncpkg.DirectionBackup,
			want:      syncpkg.Missing,
		},
		{
			name:      "backup size mismatch",
			srcData:   []byte("set number\nset ruler\n"),
			srcTime:   baseTime,
			dstData:   []byte("set number\n"),
			dstTime:   baseTime,
			direction: syncpkg.DirectionBackup,
			want:      syncpkg.Stale,
		},
		{
			name:      "backup source newer",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime.Add(time.Hour),
			dstData:   []byte("set ruler!!\n"),
			dstTime:   baseTime,
			direction: syncpkg.DirectionBackup,
			want:      syncpkg.Stale,
		},
		{
			name:      "backup destination newer",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime,
			dstData:   []byte("set ruler!!\n"),
			dstTime:   baseTime.Add(time.Hour),
			direction: syncpkg.DirectionBackup,
			want:      syncpkg.UpToDate,
		},
		{
			name:      "backup equal timestamps",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime,
			dstData:   []byte("set number\n"),
			dstTime:   baseTime,
			direction: syncpkg.DirectionBackup,
			want:      syncpkg.UpToDate,
		},
		{
			name:      "restore missing destination",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime,
			noDst:     true,
			direction: syncpkg.DirectionRestore,
			want:      syncpkg.Missing,
		},
		{
			name:      "restore source older still stale",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime,
			dstData:   []byte("set ruler!!\n"),
			dstTime:   baseTime.Add(time.Hour),
			direction: syncpkg.DirectionRestore,
			want:      syncpkg.Stale,
		},
		{
			name:      "restore source newer",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime.Add(time.Hour),
			dstData:   []byte("set ruler!!\n"),
			dstTime:   baseTime,
			direction: syncpkg.DirectionRestore,
			want:      syncpkg.Stale,
		},
		{
			name:      "restore equal timestamps",
			srcData:   []byte("set number\n"),
			srcTime:   baseTime,
			dstData:   []byte("set number\n"),
			dstTime:   baseTime,
			direction: syncpkg.DirectionRestore,
			want:      syncpkg.UpToDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testutil.NewMockFilesystem()
			fsys.AddFile("/src/file", tt.srcData, tt.srcTime)
			if !tt.noDst {
				fsys.AddFile("/dst/file", tt.dstData, tt.dstTime)
			}

			got, err := syncpkg.Detect(fsys, "/src/file", "/dst/file", tt.direction)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectMissingSource(t *testing.T) {
	fsys := testutil.NewMockFilesystem()

	_, err := syncpkg.Detect(fsys, "/src/file", "/dst/file", syncpkg.DirectionBackup)
	if err == nil {
		t.Fatal("Detect() expected error for missing source")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Detect() error = %v, want fs.ErrNotExist", err)
	}
}

func TestVerifyCopy(t *testing.T) {
	t.Run("matching copy passes", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("/src/file", []byte("content"), baseTime)
		fsys.AddFile("/dst/file", []byte("content"), baseTime)

		if err := syncpkg.VerifyCopy(fsys, "/src/file", "/dst/file"); err != nil {
			t.Fatalf("VerifyCopy() error = %v", err)
		}
	})

	t.Run("missing destination fails", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("/src/file", []byte("content"), baseTime)

		err := syncpkg.VerifyCopy(fsys, "/src/file", "/dst/file")
		var verr *syncpkg.VerificationError
		if !errors.As(err, &verr) {
			t.Fatalf("VerifyCopy() error = %v, want VerificationError", err)
		}
	})

	t.Run("size mismatch fails", func(t *testing.T) {
		fsys := testutil.NewMockFilesystem()
		fsys.AddFile("/src/file", []byte("content"), baseTime)
		fsys.AddFile("/dst/file", []byte("short"), baseTime)

		err := syncpkg.VerifyCopy(fsys, "/src/file", "/dst/file")
		var verr *syncpkg.VerificationError
		if !errors.As(err, &verr) {
			t.Fatalf("VerifyCopy() error = %v, want VerificationError", err)
		}
	})
}

func TestTrackedEntryMirrorPath(t *testing.T) {
	e := syncpkg.TrackedEntry{RawPath: "~/.config/nvim/init.vim"}

	if got := e.FileName(); got != "init.vim" {
		t.Errorf("FileName() = %q, want %q", got, "init.vim")
	}
	if got := e.MirrorPath("/mirror"); got != "/mirror/init.vim" {
		t.Errorf("MirrorPath() = %q, want %q", got, "/mirror/init.vim")
	}
}
