package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dotsync/internal/sync"
)

// ExpandError reports an unresolvable home-directory shorthand. It
// carries the original string for diagnosis.
type ExpandError struct {
	Path string
	Err  error
}

func (e *ExpandError) Error() string {
	return fmt.Sprintf("cannot expand %q: %v", e.Path, e.Err)
}

func (e *ExpandError) Unwrap() error { return e.Err }

// OSManager is the real filesystem implementation of sync.FileSystem.
type OSManager struct{}

// NewOSManager creates a manager that operates on the real filesystem.
func NewOSManager() *OSManager {
	return &OSManager{}
}

// ExpandHome resolves a leading "~" against the invoking user's home
// directory. Idempotent: paths without the shorthand are returned as is.
func (m *OSManager) ExpandHome(raw string) (string, error) {
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", &ExpandError{Path: raw, Err: err}
	}
	if raw == "~" {
		return home, nil
	}
	return filepath.Join(home, raw[2:]), nil
}

// Stat returns fresh file info for a path.
func (m *OSManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates a directory and any missing parents.
func (m *OSManager) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// CopyFile copies src to dst as a whole file, creating dst's parent
// directories as needed. An existing dst is truncated. The source's
// modification time is carried over to the destination, so a
// just-copied pair compares as up to date in either direction.
func (m *OSManager) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing destination: %w", err)
	}

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("reading source info: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("carrying over modification time: %w", err)
	}

	return nil
}

// Compile-time check that OSManager satisfies the orchestrator's interface.
var _ sync.FileSystem = (*OSManager)(nil)
