package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// BackupResult reports what a backup run did.
type BackupResult struct {
	// NoChanges is set when every tracked file was already in sync and
	// the run stopped before touching the repository.
	NoChanges bool
	// DryRun is set when the run stopped after detection.
	DryRun bool
	// Copied lists the live paths that were copied into the mirror, in
	// configured order. For a dry run these are the paths that would be
	// copied.
	Copied []string
	// Skipped lists configured paths whose live file was missing.
	Skipped []string
	// CommitHash is the commit created by this run, empty when the
	// working tree matched HEAD after staging.
	CommitHash string
	// Pushed is set when the branch was published to the remote.
	Pushed bool
}

// Backup captures the current state of tracked files into the mirror and
// publishes it. With dryRun set it stops after detection, before any
// filesystem mutation.
func (s *Service) Backup(dryRun bool) (*BackupResult, error) {
	start := s.clock.Now()
	result := &BackupResult{DryRun: dryRun}

	// Detection pass. Pure reads only, so the dry-run gate below holds.
	var needed []pair
	for _, entry := range s.cfg.Entries {
		p, err := s.livePair(entry)
		if err != nil {
			return nil, err
		}

		verdict, err := Detect(s.fsys, p.src, p.dst, DirectionBackup)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("tracked file missing, skipping", "path", p.src)
				result.Skipped = append(result.Skipped, entry.RawPath)
				continue
			}
			return nil, err
		}

		if verdict.NeedsSync() {
			s.logger.Debug("file needs backup", "path", p.src, "verdict", verdict.String())
			needed = append(needed, p)
		}
	}

	if len(needed) == 0 {
		s.logger.Info("all files up to date, no backup needed")
		result.NoChanges = true
		return result, nil
	}

	for _, p := range needed {
		result.Copied = append(result.Copied, p.src)
	}
	if dryRun {
		return result, nil
	}

	if err := s.fsys.MkdirAll(s.cfg.MirrorDir); err != nil {
		return nil, fmt.Errorf("creating mirror directory: %w", err)
	}
	if err := s.repo.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("initializing mirror repository: %w", err)
	}

	// Copy pass. Any failure aborts the whole run; there is no
	// continue-on-error mode.
	for i, p := range needed {
		if err := s.fsys.CopyFile(p.src, p.dst); err != nil {
			return nil, fmt.Errorf("copying %s: %w", p.src, err)
		}
		if err := VerifyCopy(s.fsys, p.src, p.dst); err != nil {
			return nil, err
		}
		s.reportProgress(i+1, len(needed), p.entry.FileName())
		s.logger.Debug("file backed up", "source", p.src, "dest", p.dst)
	}

	hash, pushed, err := s.commitAndPush()
	if err != nil {
		return nil, err
	}
	result.CommitHash = hash
	result.Pushed = pushed

	s.logger.Info("backup complete",
		"copied", len(result.Copied),
		"elapsed", s.clock.Now().Sub(start).Truncate(time.Millisecond).String())
	return result, nil
}

// commitAndPush persists the mirror working tree and publishes it.
// When staging produces no difference from HEAD, no commit is created
// and the remote is left untouched.
func (s *Service) commitAndPush() (string, bool, error) {
	if err := s.repo.IdentityConfigured(); err != nil {
		return "", false, err
	}
	if err := s.repo.StageAll(); err != nil {
		return "", false, fmt.Errorf("staging mirror files: %w", err)
	}

	hash, committed, err := s.repo.CommitIfChanged(s.cfg.CommitMessage)
	if err != nil {
		return "", false, fmt.Errorf("committing: %w", err)
	}
	if !committed {
		s.logger.Info("mirror unchanged, nothing to commit")
		return "", false, nil
	}

	if err := s.repo.EnsureBranch(s.cfg.Branch); err != nil {
		return hash, false, fmt.Errorf("ensuring branch %s: %w", s.cfg.Branch, err)
	}
	if err := s.repo.ConfigureRemote(s.cfg.RemoteURL); err != nil {
		return hash, false, fmt.Errorf("configuring remote: %w", err)
	}
	if err := s.repo.Push(s.cfg.Branch); err != nil {
		return hash, false, err
	}

	s.logger.Info("changes committed and pushed", "commit", hash, "branch", s.cfg.Branch)
	return hash, true, nil
}
