package gitrepo

import (
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// identity returns the committer name and email from the merged git
// configuration (local, global, system). Missing values are reported
// as ErrIdentityMissing; an identity is never auto-filled.
func (m *Mirror) identity() (name, email string, err error) {
	repo, err := m.open()
	if err != nil {
		return "", "", err
	}

	cfg, err := repo.ConfigScoped(gitcfg.SystemScope)
	if err != nil {
		return "", "", WrapError(err, "reading git configuration")
	}

	if cfg.User.Name == "" || cfg.User.Email == "" {
		return "", "", ErrIdentityMissing
	}
	return cfg.User.Name, cfg.User.Email, nil
}

// IdentityConfigured fails with ErrIdentityMissing when the repository
// has no committer name or email. Called before any commit is attempted.
func (m *Mirror) IdentityConfigured() error {
	_, _, err := m.identity()
	return err
}

// StageAll stages every addition, modification and deletion under the
// mirror working tree, so files removed from the live set disappear
// from the mirror on the next backup.
func (m *Mirror) StageAll() error {
	repo, err := m.open()
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "getting worktree")
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return WrapError(err, "staging files")
	}
	return nil
}

// CommitIfChanged creates a commit when the working tree differs from
// HEAD. A clean tree is a no-op, reported through the bool result
// rather than an error. The commit's parent is the current HEAD, or
// none when HEAD is unborn.
func (m *Mirror) CommitIfChanged(message string) (string, bool, error) {
	repo, err := m.open()
	if err != nil {
		return "", false, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", false, WrapError(err, "getting worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return "", false, WrapError(err, "computing worktree status")
	}
	if status.IsClean() {
		return "", false, nil
	}

	name, email, err := m.identity()
	if err != nil {
		return "", false, err
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  name,
			Email: email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", false, WrapError(err, "creating commit")
	}

	return hash.String(), true, nil
}
