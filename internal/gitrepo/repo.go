package gitrepo

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"dotsync/internal/sync"
)

// DefaultRemoteName is the single remote the mirror publishes to.
const DefaultRemoteName = "origin"

// Mirror controls the repository rooted at the mirror directory. The
// repository is opened lazily and the handle is cached for the life of
// the process invocation.
type Mirror struct {
	path string
	auth CredentialProvider
	repo *git.Repository
}

// New creates a controller for the repository at path. auth is used
// for every fetch, push and clone.
func New(path string, auth CredentialProvider) *Mirror {
	return &Mirror{path: path, auth: auth}
}

// Path returns the mirror working-tree path.
func (m *Mirror) Path() string { return m.path }

// Exists reports whether version-control metadata is present at the
// mirror path.
func (m *Mirror) Exists() bool {
	info, err := os.Stat(filepath.Join(m.path, git.GitDirName))
	return err == nil && info.IsDir()
}

// storage builds the billy-backed storage and worktree filesystem for
// the mirror path.
func (m *Mirror) storage() (*filesystem.Storage, billy.Filesystem) {
	wt := osfs.New(m.path)
	dot := osfs.New(filepath.Join(m.path, git.GitDirName))
	return filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), wt
}

// EnsureInitialized creates a new repository at the mirror path when
// none exists. Safe to call every run.
func (m *Mirror) EnsureInitialized() error {
	if m.Exists() {
		return nil
	}

	if err := os.MkdirAll(m.path, 0755); err != nil {
		return WrapError(err, "creating mirror directory")
	}

	storer, wt := m.storage()
	repo, err := git.Init(storer, wt)
	if err != nil {
		return WrapError(err, "initializing repository")
	}
	m.repo = repo
	return nil
}

// open returns the cached repository handle, opening it on first use.
func (m *Mirror) open() (*git.Repository, error) {
	if m.repo != nil {
		return m.repo, nil
	}

	storer, wt := m.storage()
	repo, err := git.Open(storer, wt)
	if err != nil {
		return nil, WrapError(err, "opening repository")
	}
	m.repo = repo
	return repo, nil
}

// Summary reports repository state for status output: no mutation, no
// network access. A missing repository is not an error.
func (m *Mirror) Summary() (*sync.RepoSummary, error) {
	summary := &sync.RepoSummary{}
	if !m.Exists() {
		return summary, nil
	}
	summary.Exists = true

	repo, err := m.open()
	if err != nil {
		return nil, err
	}

	if head, err := repo.Head(); err == nil {
		summary.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "getting worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return nil, WrapError(err, "computing worktree status")
	}

	for _, fileStatus := range status {
		switch fileStatus.Worktree {
		case git.Modified:
			summary.Modified++
		case git.Untracked:
			summary.Untracked++
		}
	}

	return summary, nil
}

// Compile-time check that Mirror satisfies the orchestrator's interface.
var _ sync.MirrorRepo = (*Mirror)(nil)
