package gitrepo

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
)

// EnsureBranch makes the named branch point at the current HEAD commit,
// creating it if it does not exist, and leaves HEAD on that branch so
// later commits advance it.
func (m *Mirror) EnsureBranch(name string) error {
	repo, err := m.open()
	if err != nil {
		return err
	}

	head, err := repo.Head()
	if err != nil {
		return WrapError(err, "resolving HEAD")
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	_, err = repo.Reference(branchRef, false)
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		ref := plumbing.NewHashReference(branchRef, head.Hash())
		if err := repo.Storer.SetReference(ref); err != nil {
			return WrapError(err, "creating branch")
		}
	case err != nil:
		return WrapError(err, "looking up branch")
	}

	symbolic := plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)
	if err := repo.Storer.SetReference(symbolic); err != nil {
		return WrapError(err, "pointing HEAD at branch")
	}
	return nil
}

// CurrentBranch returns the short name of the branch HEAD points at.
func (m *Mirror) CurrentBranch() (string, error) {
	repo, err := m.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", WrapError(err, "resolving HEAD")
	}
	if !head.Name().IsBranch() {
		return "", WrapError(plumbing.ErrReferenceNotFound, "HEAD is detached")
	}
	return head.Name().Short(), nil
}
