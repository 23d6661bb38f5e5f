// Package app wires configuration, filesystem, git controller and run
// journal into the sync service consumed by the CLI.
package app

import (
	"fmt"
	"os"

	"dotsync/internal/config"
	"dotsync/internal/fs"
	"dotsync/internal/gitrepo"
	"dotsync/internal/history"
	"dotsync/internal/sync"
)

// App is the application layer between the CLI and the sync service.
// It constructs all dependencies from config and manages journal and
// log-file lifecycle on Close.
type App struct {
	cfg     *config.Config
	cfgPath string
	service *sync.Service
	journal *history.Store
	run     *history.Run
	op      string
	logFile *os.File

	// outcome accumulated for the journal row
	status      string
	filesCopied int64
	commitHash  string
}

// New creates a fully wired App for the named CLI operation (e.g.
// "backup", "status"). The caller must call Close when done.
func New(operation string) (*App, error) {
	cfg, cfgPath, err := config.Load()
	if err != nil {
		return nil, err
	}

	fsmgr := fs.NewOSManager()
	mirrorDir, err := fsmgr.ExpandHome(cfg.Files.Folder)
	if err != nil {
		return nil, err
	}

	defaults := GetDefaults()

	journal, err := history.Open(defaults.JournalPath)
	if err != nil {
		return nil, err
	}

	runID := "-"
	var run *history.Run
	if mutates(operation) {
		run, err = journal.Begin(operation)
		if err != nil {
			journal.Close()
			return nil, err
		}
		runID = run.ID
	}

	logger, logFile, err := newLogger(defaults.LogDir, runID)
	if err != nil {
		// Never leave the row in "running" state; the construction
		// error takes precedence over a Finish failure.
		if run != nil {
			journal.Finish(run, "error", 0, "")
		}
		journal.Close()
		return nil, err
	}

	entries := make([]sync.TrackedEntry, 0, len(cfg.Files.Paths))
	for _, p := range cfg.Files.Paths {
		entries = append(entries, sync.TrackedEntry{RawPath: p})
	}

	mirror := gitrepo.New(mirrorDir, gitrepo.NewSSHAgentProvider())
	svc := sync.NewService(sync.Config{
		MirrorDir:     mirrorDir,
		RemoteURL:     cfg.Git.RemoteURL,
		Branch:        cfg.Git.Branch,
		CommitMessage: cfg.Git.CommitMessage,
		Entries:       entries,
	}, fsmgr, mirror, &slogAdapter{l: logger}, sync.RealClock{})

	return &App{
		cfg:     cfg,
		cfgPath: cfgPath,
		service: svc,
		journal: journal,
		run:     run,
		op:      operation,
		logFile: logFile,
		status:  "success",
	}, nil
}

// mutates reports whether the operation should be journaled. Read-only
// commands never write journal rows.
func mutates(operation string) bool {
	return operation == "backup" || operation == "restore"
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// ConfigPath returns the path the configuration was loaded from.
func (a *App) ConfigPath() string { return a.cfgPath }

// SetProgress installs a progress callback for copy loops.
func (a *App) SetProgress(fn sync.ProgressFunc) { a.service.SetProgress(fn) }

// Backup runs the backup workflow and records its outcome.
func (a *App) Backup(dryRun bool) (*sync.BackupResult, error) {
	result, err := a.service.Backup(dryRun)
	if err != nil {
		a.status = "error"
		return nil, err
	}
	if !dryRun {
		a.filesCopied = int64(len(result.Copied))
		a.commitHash = result.CommitHash
	}
	return result, nil
}

// Restore runs the restore workflow and records its outcome.
func (a *App) Restore() (*sync.RestoreResult, error) {
	result, err := a.service.Restore()
	if err != nil {
		a.status = "error"
		return nil, err
	}
	a.filesCopied = int64(len(result.Copied))
	return result, nil
}

// Status runs the read-only status workflow.
func (a *App) Status() (*sync.StatusReport, error) {
	return a.service.Status()
}

// History lists the most recent journaled runs.
func (a *App) History(limit int) ([]*history.Run, error) {
	return a.journal.List(limit)
}

// Close finalizes the journal row (for mutating operations) and closes
// all resources. It runs on every exit path, including errors.
func (a *App) Close() error {
	var firstErr error

	if a.run != nil {
		if err := a.journal.Finish(a.run, a.status, a.filesCopied, a.commitHash); err != nil {
			firstErr = fmt.Errorf("finishing journal run: %w", err)
		}
	}
	if err := a.journal.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
