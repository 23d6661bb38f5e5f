package gitrepo

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// CredentialProvider resolves an authentication method for a remote
// URL. It is injected into the Mirror once at construction, never
// re-derived at each call site. Returning a nil method means the URL
// needs no authentication (local paths, anonymous HTTPS).
type CredentialProvider interface {
	Method(remoteURL string) (transport.AuthMethod, error)
}

// SSHProvider authenticates SSH remotes with the local SSH agent or a
// private key file. Non-SSH URLs resolve to no authentication.
type SSHProvider struct {
	// Username for SSH authentication, "git" for the usual hosting URLs.
	Username string

	// PrivateKeyPath is the key file to use when UseAgent is false.
	PrivateKeyPath string

	// Passphrase for an encrypted private key.
	Passphrase string

	// UseAgent selects the invoking user's SSH agent identity.
	UseAgent bool

	// HostKeyCallback for host key verification. Nil keeps go-git's
	// default (known_hosts lookup).
	HostKeyCallback gossh.HostKeyCallback
}

// NewSSHAgentProvider creates a provider backed by the local SSH agent.
func NewSSHAgentProvider() *SSHProvider {
	return &SSHProvider{UseAgent: true, Username: "git"}
}

// NewSSHKeyProvider creates a provider backed by a private key file.
func NewSSHKeyProvider(keyPath, passphrase string) *SSHProvider {
	return &SSHProvider{PrivateKeyPath: keyPath, Passphrase: passphrase, Username: "git"}
}

// WithHostKeyCallback sets the host key verification callback.
func (p *SSHProvider) WithHostKeyCallback(cb gossh.HostKeyCallback) *SSHProvider {
	p.HostKeyCallback = cb
	return p
}

// Method returns the authentication method for the given remote URL,
// or nil for URLs that are not SSH remotes.
func (p *SSHProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	username, ok := sshURLUser(remoteURL, p.Username)
	if !ok {
		return nil, nil
	}

	if p.UseAgent {
		auth, err := gitssh.NewSSHAgentAuth(username)
		if err != nil {
			return nil, WrapError(ErrAuthFailed, fmt.Sprintf("ssh agent unavailable: %v", err))
		}
		if p.HostKeyCallback != nil {
			auth.HostKeyCallback = p.HostKeyCallback
		}
		return auth, nil
	}

	if p.PrivateKeyPath != "" {
		if _, err := os.Stat(p.PrivateKeyPath); err != nil {
			return nil, WrapError(ErrAuthFailed, fmt.Sprintf("ssh key %s: %v", p.PrivateKeyPath, err))
		}
		auth, err := gitssh.NewPublicKeysFromFile(username, p.PrivateKeyPath, p.Passphrase)
		if err != nil {
			return nil, WrapError(ErrAuthFailed, fmt.Sprintf("loading ssh key: %v", err))
		}
		if p.HostKeyCallback != nil {
			auth.HostKeyCallback = p.HostKeyCallback
		}
		return auth, nil
	}

	return nil, WrapError(ErrAuthFailed, "no ssh credentials configured")
}

// sshURLUser reports whether remoteURL is an SSH remote and which user
// to authenticate as. Handles both scp-style git@host:path and
// ssh:// forms.
func sshURLUser(remoteURL, fallback string) (string, bool) {
	if strings.Contains(remoteURL, "@") && !strings.Contains(remoteURL, "://") {
		// scp-style user@host:path
		user := remoteURL[:strings.Index(remoteURL, "@")]
		if user == "" {
			user = fallback
		}
		return user, true
	}

	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "ssh", "git+ssh":
		if u.User != nil && u.User.Username() != "" {
			return u.User.Username(), true
		}
		return fallback, true
	}
	return "", false
}
