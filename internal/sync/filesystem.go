package sync

import (
	"errors"
	"fmt"
	"io/fs"
)

// FileSystem abstracts the filesystem operations the orchestrator needs,
// so workflows can be tested without touching the real filesystem.
type FileSystem interface {
	// ExpandHome resolves a leading "~" against the invoking user's home
	// directory. Already-absolute paths are returned unchanged.
	ExpandHome(raw string) (string, error)

	// Stat returns fresh file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// CopyFile copies src to dst as a whole file, creating dst's parent
	// directories as needed. No partial or incremental transfer.
	CopyFile(src, dst string) error
}

// VerificationError signals a corrupted or interrupted copy: the
// destination is absent after the copy, or its size differs from the
// source's.
type VerificationError struct {
	Source string
	Dest   string
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for %s: %s", e.Dest, e.Reason)
}

// VerifyCopy checks that dst exists and matches src's size. It must be
// called after every copy, in either direction.
func VerifyCopy(fsys FileSystem, src, dst string) error {
	dstInfo, err := fsys.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &VerificationError{Source: src, Dest: dst, Reason: "destination file not created"}
		}
		return fmt.Errorf("stat destination: %w", err)
	}

	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if srcInfo.Size() != dstInfo.Size() {
		return &VerificationError{
			Source: src,
			Dest:   dst,
			Reason: fmt.Sprintf("size mismatch (source %d, destination %d)", srcInfo.Size(), dstInfo.Size()),
		}
	}

	return nil
}
