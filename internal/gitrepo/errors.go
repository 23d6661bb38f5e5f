// Package gitrepo owns the on-disk mirror repository: initialization,
// staging, committing, branch and remote management, authenticated
// fetch with fast-forward-only merging, and authenticated push.
package gitrepo

import (
	"errors"
	"fmt"
)

// Sentinel errors checkable with errors.Is(). They wrap underlying
// go-git errors while providing a stable API for callers.

// ErrIdentityMissing is returned when the repository has no committer
// name or email configured. An identity is never invented.
var ErrIdentityMissing = errors.New("git identity not configured (set user.name and user.email)")

// ErrAlreadyUpToDate is returned when a fetch or push results in no
// changes because local and remote are already synchronized.
var ErrAlreadyUpToDate = errors.New("already up to date")

// ErrNotFastForward is returned when local and remote histories have
// diverged. The mirror never writes merge commits, so divergence
// requires manual intervention.
var ErrNotFastForward = errors.New("histories diverged, not a fast-forward")

// ErrAuthFailed is returned when the transport rejected or required
// credentials during fetch, push or clone.
var ErrAuthFailed = errors.New("authentication failed")

// ErrNetwork is returned for transport failures that are not
// authentication failures, so operators can tell the two apart.
var ErrNetwork = errors.New("network failure")

// ErrRemoteBranchMissing is returned when the remote has no branch of
// the configured name to fetch.
var ErrRemoteBranchMissing = errors.New("branch not found on remote")

// WrapError wraps an error with additional context while preserving
// errors.Is() checks against the sentinels above.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
