package sync

import (
	"errors"
	"fmt"
	"io/fs"
)

// EntryState classifies one tracked file for status output.
type EntryState int

const (
	// StateSynced means the live file and its mirror copy match.
	StateSynced EntryState = iota
	// StateLocalNewer means the live file changed after the last backup.
	StateLocalNewer
	// StateNotBackedUp means the mirror has no copy of the file yet.
	StateNotBackedUp
	// StateSourceMissing means the configured live file does not exist.
	StateSourceMissing
)

func (s EntryState) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StateLocalNewer:
		return "local newer than backup"
	case StateNotBackedUp:
		return "not backed up"
	case StateSourceMissing:
		return "source missing"
	default:
		return "unknown"
	}
}

// EntryStatus is the status of a single tracked file.
type EntryStatus struct {
	RawPath  string
	LivePath string
	State    EntryState
}

// StatusReport is a read-only snapshot of mirror and tracked-file state.
// Absence conditions (missing mirror, missing repository) are rendered
// as fields, never as errors.
type StatusReport struct {
	MirrorDir    string
	MirrorExists bool
	RemoteURL    string
	Repo         *RepoSummary
	Entries      []EntryStatus
}

// Status inspects the mirror and every tracked file. It performs no
// mutation and no network access.
func (s *Service) Status() (*StatusReport, error) {
	report := &StatusReport{
		MirrorDir: s.cfg.MirrorDir,
		RemoteURL: s.cfg.RemoteURL,
	}

	if _, err := s.fsys.Stat(s.cfg.MirrorDir); err == nil {
		report.MirrorExists = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat mirror directory: %w", err)
	}

	summary, err := s.repo.Summary()
	if err != nil {
		return nil, fmt.Errorf("inspecting mirror repository: %w", err)
	}
	report.Repo = summary

	for _, entry := range s.cfg.Entries {
		p, err := s.livePair(entry)
		if err != nil {
			return nil, err
		}

		es := EntryStatus{RawPath: entry.RawPath, LivePath: p.src}

		liveInfo, err := s.fsys.Stat(p.src)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			es.State = StateSourceMissing
		case err != nil:
			return nil, fmt.Errorf("stat %s: %w", p.src, err)
		default:
			mirrorInfo, err := s.fsys.Stat(p.dst)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				es.State = StateNotBackedUp
			case err != nil:
				return nil, fmt.Errorf("stat %s: %w", p.dst, err)
			case liveInfo.ModTime().After(mirrorInfo.ModTime()):
				es.State = StateLocalNewer
			default:
				es.State = StateSynced
			}
		}

		report.Entries = append(report.Entries, es)
	}

	return report, nil
}
