package gitrepo

import (
	"errors"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
)

// ConfigureRemote makes the "origin" remote point at url. An existing
// remote with a different URL is removed and recreated; a matching one
// is left alone.
func (m *Mirror) ConfigureRemote(url string) error {
	repo, err := m.open()
	if err != nil {
		return err
	}

	remote, err := repo.Remote(DefaultRemoteName)
	switch {
	case errors.Is(err, git.ErrRemoteNotFound):
		// fall through to create
	case err != nil:
		return WrapError(err, "looking up remote")
	default:
		urls := remote.Config().URLs
		if len(urls) > 0 && urls[0] == url {
			return nil
		}
		if err := repo.DeleteRemote(DefaultRemoteName); err != nil {
			return WrapError(err, "removing stale remote")
		}
	}

	_, err = repo.CreateRemote(&gitcfg.RemoteConfig{
		Name:  DefaultRemoteName,
		URLs:  []string{url},
		Fetch: []gitcfg.RefSpec{gitcfg.RefSpec("+refs/heads/*:refs/remotes/" + DefaultRemoteName + "/*")},
	})
	if err != nil {
		return WrapError(err, "creating remote")
	}
	return nil
}
