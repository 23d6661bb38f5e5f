// Package config loads the dotsync configuration file and validates it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const (
	// DefaultBranch is used when the config omits git.branch.
	DefaultBranch = "main"
	// DefaultCommitMessage is used when the config omits git.commit_message.
	DefaultCommitMessage = "Update dotfiles"

	// EnvConfigPath overrides the search locations entirely.
	EnvConfigPath = "DOTSYNC_CONFIG_PATH"
)

// ErrNotFound is returned when no configuration file exists at any of
// the recognized search locations.
var ErrNotFound = errors.New("no configuration file found")

// ParseError reports a configuration file that exists but cannot be
// used: malformed TOML or missing required keys.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a semantic constraint violation found after
// parsing, such as two tracked paths mapping to the same mirror file.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + e.Reason
}

// Config is the tracked-file registry. It is read-only after load.
type Config struct {
	Files FilesConfig `toml:"files"`
	Git   GitConfig   `toml:"git"`
}

// FilesConfig names the mirror directory and the tracked live paths.
type FilesConfig struct {
	Folder string   `toml:"folder"`
	Paths  []string `toml:"paths"`
}

// GitConfig describes the remote repository the mirror publishes to.
type GitConfig struct {
	RemoteURL     string `toml:"remote_url"`
	Branch        string `toml:"branch"`
	CommitMessage string `toml:"commit_message"`
}

func (c *Config) applyDefaults() {
	if c.Git.Branch == "" {
		c.Git.Branch = DefaultBranch
	}
	if c.Git.CommitMessage == "" {
		c.Git.CommitMessage = DefaultCommitMessage
	}
}

// Validate checks semantic constraints the TOML decoder cannot express.
// An empty paths list is a valid no-op configuration. Two entries whose
// base names collide would silently overwrite one another in the
// flattened mirror, so collisions are rejected here rather than at
// backup time.
func (c *Config) Validate() error {
	seen := make(map[string]string, len(c.Files.Paths))
	for _, p := range c.Files.Paths {
		name := filepath.Base(p)
		if name == "." || name == string(filepath.Separator) || name == "" {
			return &ValidationError{Reason: fmt.Sprintf("path %q has no file name", p)}
		}
		if prev, ok := seen[name]; ok {
			return &ValidationError{
				Reason: fmt.Sprintf("paths %q and %q map to the same mirror file %q", prev, p, name),
			}
		}
		seen[name] = p
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader and checks required keys.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Files.Folder == "" {
		return nil, errors.New("missing required key files.folder")
	}
	if cfg.Git.RemoteURL == "" {
		return nil, errors.New("missing required key git.remote_url")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// SearchPaths returns the recognized config locations in lookup order.
// DOTSYNC_CONFIG_PATH, when set, is the only location consulted.
func SearchPaths() []string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return []string{p}
	}

	paths := []string{
		filepath.Join(xdg.ConfigHome, "dotsync", "config.toml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".dotsync.toml"))
	}
	return paths
}

// Load reads the first config file found on the search paths and
// validates it. It returns the config and the path it was loaded from.
func Load() (*Config, string, error) {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := ReadFromFile(path)
		if err != nil {
			return nil, path, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return nil, "", ErrNotFound
}

// Init writes a starter config file at the specified path. It refuses
// to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
