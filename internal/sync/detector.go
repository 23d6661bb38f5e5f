package sync

import (
	"errors"
	"fmt"
	"io/fs"
)

// Direction selects which comparison rules Detect applies.
type Direction int

const (
	// DirectionBackup compares live (source) against mirror (dest).
	DirectionBackup Direction = iota
	// DirectionRestore compares mirror (source) against live (dest).
	DirectionRestore
)

// Verdict classifies a source/destination file pair.
type Verdict int

const (
	// UpToDate means no copy is needed.
	UpToDate Verdict = iota
	// Missing means the destination does not exist; a copy is always needed.
	Missing
	// Stale means both files exist but differ by size or timestamp.
	Stale
)

func (v Verdict) String() string {
	switch v {
	case UpToDate:
		return "up-to-date"
	case Missing:
		return "missing"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// NeedsSync reports whether the verdict requires a copy.
func (v Verdict) NeedsSync() bool { return v != UpToDate }

// Detect classifies a file pair without mutating anything.
//
// A missing destination is always Missing. If both files exist, a size
// mismatch is Stale. Otherwise timestamps decide: for backup only a
// strictly newer source is Stale; for restore any timestamp drift is
// Stale, since restore pulls toward local and must detect drift in
// either direction.
//
// A missing source surfaces as an error for the caller to handle; the
// orchestrator treats it as skip-with-warning.
func Detect(fsys FileSystem, src, dst string, direction Direction) (Verdict, error) {
	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return UpToDate, fmt.Errorf("stat source %s: %w", src, err)
	}

	dstInfo, err := fsys.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Missing, nil
		}
		return UpToDate, fmt.Errorf("stat destination %s: %w", dst, err)
	}

	if srcInfo.Size() != dstInfo.Size() {
		return Stale, nil
	}

	switch direction {
	case DirectionBackup:
		if srcInfo.ModTime().After(dstInfo.ModTime()) {
			return Stale, nil
		}
	case DirectionRestore:
		if !srcInfo.ModTime().Equal(dstInfo.ModTime()) {
			return Stale, nil
		}
	}

	return UpToDate, nil
}
