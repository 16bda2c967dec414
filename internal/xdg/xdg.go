// Package xdg provides helpers to resolve XDG Base Directory paths for myblog.
// Configuration lives under the config directory; the sqlite-backed local
// storage lives under the state directory. Both fall back to the traditional
// locations when the XDG environment variables are not set.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "myblog"

// ConfigDir returns the XDG config directory for myblog.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/myblog when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for myblog.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/myblog when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
