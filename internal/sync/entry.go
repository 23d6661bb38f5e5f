package sync

import "path/filepath"

// TrackedEntry is one file under management. RawPath is the path exactly
// as it appears in the configuration, before home-directory expansion.
type TrackedEntry struct {
	RawPath string
}

// FileName returns the base name of the entry. Mirror-side paths are
// flattened: only the base name survives the copy into the mirror.
func (e TrackedEntry) FileName() string {
	return filepath.Base(e.RawPath)
}

// MirrorPath returns the entry's location inside the mirror directory.
func (e TrackedEntry) MirrorPath(mirrorDir string) string {
	return filepath.Join(mirrorDir, e.FileName())
}
