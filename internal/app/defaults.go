package app

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// EnvHome overrides the base directory for dotsync's own data (log,
// run journal). The tracked files and mirror location come from the
// config file, not from here.
const EnvHome = "DOTSYNC_HOME"

// Defaults holds resolved application paths.
type Defaults struct {
	BaseDir     string
	LogDir      string
	JournalPath string
}

// GetDefaults resolves application paths, checking DOTSYNC_HOME first
// and falling back to the XDG data directory.
func GetDefaults() Defaults {
	baseDir := os.Getenv(EnvHome)
	if baseDir == "" {
		baseDir = filepath.Join(xdg.DataHome, "dotsync")
	}

	return Defaults{
		BaseDir:     baseDir,
		LogDir:      filepath.Join(baseDir, "log"),
		JournalPath: filepath.Join(baseDir, "history.db"),
	}
}
