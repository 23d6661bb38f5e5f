package gitrepo

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// mapTransportErr translates go-git transport failures into the
// package's sentinel taxonomy so callers can tell an authentication
// failure from a network one.
func mapTransportErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return ErrAlreadyUpToDate
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return WrapError(ErrAuthFailed, op)
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return WrapError(ErrNotFastForward, op)
	case errors.Is(err, git.NoMatchingRefSpecError{}),
		errors.Is(err, transport.ErrEmptyRemoteRepository):
		return WrapError(ErrRemoteBranchMissing, op)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrNetwork, err)
	}
}

// remoteAuth resolves credentials for the configured origin URL.
func (m *Mirror) remoteAuth(repo *git.Repository) (transport.AuthMethod, string, error) {
	remote, err := repo.Remote(DefaultRemoteName)
	if err != nil {
		return nil, "", WrapError(err, "looking up remote")
	}
	url := remote.Config().URLs[0]

	if m.auth == nil {
		return nil, url, nil
	}
	method, err := m.auth.Method(url)
	if err != nil {
		return nil, url, err
	}
	return method, url, nil
}

// Push publishes the local branch to the identically named remote ref.
// A remote that is already up to date is success. There is no retry;
// failures surface immediately.
func (m *Mirror) Push(branch string) error {
	repo, err := m.open()
	if err != nil {
		return err
	}

	auth, _, err := m.remoteAuth(repo)
	if err != nil {
		return err
	}

	refspec := gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = repo.Push(&git.PushOptions{
		RemoteName: DefaultRemoteName,
		RefSpecs:   []gitcfg.RefSpec{refspec},
		Auth:       auth,
	})
	if mapped := mapTransportErr(err, "pushing "+branch); mapped != nil {
		if errors.Is(mapped, ErrAlreadyUpToDate) {
			return nil
		}
		return mapped
	}
	return nil
}

// FetchAndFastForward fetches the remote branch into its tracking
// reference and advances the local branch only when it is a strict
// ancestor of the remote tip. Diverged histories fail with
// ErrNotFastForward; no merge commit is ever written. An unborn local
// branch adopts the remote tip.
func (m *Mirror) FetchAndFastForward(branch string) error {
	repo, err := m.open()
	if err != nil {
		return err
	}

	auth, _, err := m.remoteAuth(repo)
	if err != nil {
		return err
	}

	refspec := gitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, DefaultRemoteName, branch))
	err = repo.Fetch(&git.FetchOptions{
		RemoteName: DefaultRemoteName,
		RefSpecs:   []gitcfg.RefSpec{refspec},
		Auth:       auth,
	})
	if mapped := mapTransportErr(err, "fetching "+branch); mapped != nil && !errors.Is(mapped, ErrAlreadyUpToDate) {
		return mapped
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(DefaultRemoteName, branch), true)
	if err != nil {
		return WrapError(ErrRemoteBranchMissing, branch)
	}

	branchName := plumbing.NewBranchReferenceName(branch)
	localRef, err := repo.Reference(branchName, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// No local commits yet: adopt the remote tip.
		return m.moveBranch(repo, branchName, remoteRef.Hash())
	}
	if err != nil {
		return WrapError(err, "resolving local branch")
	}

	if localRef.Hash() == remoteRef.Hash() {
		return ErrAlreadyUpToDate
	}

	localCommit, err := repo.CommitObject(localRef.Hash())
	if err != nil {
		return WrapError(err, "loading local tip")
	}
	remoteCommit, err := repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return WrapError(err, "loading remote tip")
	}

	ok, err := localCommit.IsAncestor(remoteCommit)
	if err != nil {
		return WrapError(err, "merge analysis")
	}
	if ok {
		// Local is a strict ancestor of remote: fast-forward.
		return m.moveBranch(repo, branchName, remoteRef.Hash())
	}

	behind, err := remoteCommit.IsAncestor(localCommit)
	if err != nil {
		return WrapError(err, "merge analysis")
	}
	if behind {
		// Local is ahead of remote; nothing to pull.
		return ErrAlreadyUpToDate
	}

	return WrapError(ErrNotFastForward, branch)
}

// moveBranch points the branch at hash and updates HEAD and the
// working tree to match.
func (m *Mirror) moveBranch(repo *git.Repository, branch plumbing.ReferenceName, hash plumbing.Hash) error {
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
		return WrapError(err, "moving branch")
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return WrapError(err, "pointing HEAD at branch")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "getting worktree")
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branch, Force: true}); err != nil {
		return WrapError(err, "updating working tree")
	}
	return nil
}

// CloneOrFetch performs a full authenticated clone of url into the
// mirror path when no repository exists there, otherwise fetches and
// fast-forwards the branch. Up-to-date local state is success. It
// never creates commits.
func (m *Mirror) CloneOrFetch(url, branch string) error {
	if m.Exists() {
		err := m.FetchAndFastForward(branch)
		if errors.Is(err, ErrAlreadyUpToDate) {
			return nil
		}
		return err
	}

	var auth transport.AuthMethod
	if m.auth != nil {
		method, err := m.auth.Method(url)
		if err != nil {
			return err
		}
		auth = method
	}

	if err := os.MkdirAll(m.path, 0755); err != nil {
		return WrapError(err, "creating mirror directory")
	}

	storer, wt := m.storage()
	repo, err := git.Clone(storer, wt, &git.CloneOptions{
		URL:           url,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
	})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return WrapError(ErrRemoteBranchMissing, "remote repository is empty")
		}
		return mapTransportErr(err, "cloning "+url)
	}
	m.repo = repo
	return nil
}
