package sync

import (
	"errors"
	"fmt"
	"io/fs"
)

// RestoreResult reports what a restore run did.
type RestoreResult struct {
	// NoChanges is set when every live file already matched its mirror
	// counterpart.
	NoChanges bool
	// Copied lists the live paths that were written, in configured order.
	Copied []string
	// Skipped lists configured paths with no mirror counterpart. The
	// live tree is authoritative for never-backed-up files, so these
	// are warnings, not errors.
	Skipped []string
}

// Restore retrieves the latest published state and applies it to the
// live locations. The repository is cloned if absent, otherwise fetched
// and fast-forwarded; restore never creates commits.
func (s *Service) Restore() (*RestoreResult, error) {
	if err := s.repo.CloneOrFetch(s.cfg.RemoteURL, s.cfg.Branch); err != nil {
		return nil, err
	}

	result := &RestoreResult{}

	var needed []pair
	for _, entry := range s.cfg.Entries {
		p, err := s.mirrorPair(entry)
		if err != nil {
			return nil, err
		}

		verdict, err := Detect(s.fsys, p.src, p.dst, DirectionRestore)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("no mirror copy for file, skipping", "path", entry.RawPath)
				result.Skipped = append(result.Skipped, entry.RawPath)
				continue
			}
			return nil, err
		}

		if verdict.NeedsSync() {
			s.logger.Debug("file needs restore", "path", p.dst, "verdict", verdict.String())
			needed = append(needed, p)
		}
	}

	if len(needed) == 0 {
		s.logger.Info("all files up to date, no restore needed")
		result.NoChanges = true
		return result, nil
	}

	for i, p := range needed {
		if err := s.fsys.CopyFile(p.src, p.dst); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", p.dst, err)
		}
		if err := VerifyCopy(s.fsys, p.src, p.dst); err != nil {
			return nil, err
		}
		result.Copied = append(result.Copied, p.dst)
		s.reportProgress(i+1, len(needed), p.entry.FileName())
		s.logger.Debug("file restored", "source", p.src, "dest", p.dst)
	}

	s.logger.Info("restore complete", "copied", len(result.Copied))
	return result, nil
}
