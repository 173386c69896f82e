// Package xdg resolves XDG Base Directory paths for dawgtools.
// It falls back to the traditional locations under the home directory when the
// XDG environment variables are unset and creates directories with private
// permissions, since the config dir may hold a DSN and the state dir holds the
// encrypted file keyring on systems without a native secret store.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base.
const AppName = "dawgtools"

// ConfigDir returns the XDG config directory for dawgtools.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/dawgtools when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for dawgtools.
// It falls back to ~/.local/state/dawgtools when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func ensure(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
