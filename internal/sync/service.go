package sync

// RepoSummary describes the mirror repository for status reporting.
// A zero summary with Exists=false means no repository metadata was
// found at the mirror path.
type RepoSummary struct {
	Exists    bool
	Branch    string
	Modified  int
	Untracked int
}

// MirrorRepo is the repository controller the orchestrator drives.
// The production implementation lives in internal/gitrepo.
type MirrorRepo interface {
	// EnsureInitialized creates an empty repository at the mirror path
	// if none exists. Idempotent.
	EnsureInitialized() error

	// IdentityConfigured fails when no committer name or email is
	// configured. It is checked before any commit is attempted and an
	// identity is never invented.
	IdentityConfigured() error

	// StageAll stages every addition, modification and deletion under
	// the mirror working tree.
	StageAll() error

	// CommitIfChanged creates a commit only when the working tree
	// differs from HEAD. The bool result distinguishes the no-op case
	// from an error.
	CommitIfChanged(message string) (hash string, committed bool, err error)

	// EnsureBranch makes the named branch point at HEAD, creating it
	// if needed, and leaves HEAD on that branch.
	EnsureBranch(name string) error

	// ConfigureRemote creates or replaces the "origin" remote so it
	// points at url.
	ConfigureRemote(url string) error

	// Push publishes the local branch to the identically named remote
	// ref. ErrAlreadyUpToDate is not a failure.
	Push(branch string) error

	// CloneOrFetch clones url into the mirror path when no repository
	// exists there, otherwise fetches and fast-forwards the branch.
	// It never creates commits.
	CloneOrFetch(url, branch string) error

	// Summary reports repository state for status output. It performs
	// no mutation and no network access.
	Summary() (*RepoSummary, error)
}

// ProgressFunc is invoked after each completed copy so the CLI can
// render a progress indicator. done counts finished copies out of total.
type ProgressFunc func(done, total int, name string)

// Config carries the registry state the orchestrator needs. It is
// immutable after construction.
type Config struct {
	// MirrorDir is the mirror directory, already home-expanded.
	MirrorDir string
	// RemoteURL is the git remote the mirror publishes to.
	RemoteURL string
	// Branch is the single branch used for publish and retrieve.
	Branch string
	// CommitMessage is used for every backup commit.
	CommitMessage string
	// Entries is the ordered list of tracked files.
	Entries []TrackedEntry
}

// Service drives the backup, restore and status workflows. Tracked
// files are processed one at a time in configured order; there is no
// internal parallelism and no retry.
type Service struct {
	cfg      Config
	fsys     FileSystem
	repo     MirrorRepo
	logger   Logger
	clock    Clock
	progress ProgressFunc
}

// NewService creates a Service with the provided collaborators.
func NewService(cfg Config, fsys FileSystem, repo MirrorRepo, logger Logger, clock Clock) *Service {
	return &Service{
		cfg:    cfg,
		fsys:   fsys,
		repo:   repo,
		logger: logger,
		clock:  clock,
	}
}

// SetProgress installs a progress callback for copy loops.
func (s *Service) SetProgress(fn ProgressFunc) { s.progress = fn }

func (s *Service) reportProgress(done, total int, name string) {
	if s.progress != nil {
		s.progress(done, total, name)
	}
}

// pair is a resolved source/destination for one tracked entry.
type pair struct {
	entry TrackedEntry
	src   string
	dst   string
}

// livePair resolves the entry for the backup direction (live → mirror).
func (s *Service) livePair(e TrackedEntry) (pair, error) {
	live, err := s.fsys.ExpandHome(e.RawPath)
	if err != nil {
		return pair{}, err
	}
	return pair{entry: e, src: live, dst: e.MirrorPath(s.cfg.MirrorDir)}, nil
}

// mirrorPair resolves the entry for the restore direction (mirror → live).
func (s *Service) mirrorPair(e TrackedEntry) (pair, error) {
	live, err := s.fsys.ExpandHome(e.RawPath)
	if err != nil {
		return pair{}, err
	}
	return pair{entry: e, src: e.MirrorPath(s.cfg.MirrorDir), dst: live}, nil
}
