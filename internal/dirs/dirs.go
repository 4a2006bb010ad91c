// Package dirs resolves stackwrap's XDG Base Directory paths.
package dirs

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the global configuration directory.
const ConfigDirEnv = "STACKWRAP_CONFIG_DIR"

// LocalDirName is the per-project configuration directory name.
const LocalDirName = ".stackwrap"

// ConfigDir returns the global configuration directory.
// Resolution order: STACKWRAP_CONFIG_DIR > XDG_CONFIG_HOME/stackwrap > ~/.config/stackwrap.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stackwrap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "stackwrap")
	}
	return filepath.Join(home, ".config", "stackwrap")
}

// LocalDir returns the project configuration directory under root, or ""
// if there is none.
func LocalDir(root string) string {
	candidate := filepath.Join(root, LocalDirName)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return ""
}
