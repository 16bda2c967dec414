// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package storage provides the persistent key-value store the client keeps its
// token in. It plays the role a browser's localStorage plays for a web client:
// values are opaque strings, addressed by a fixed key, and scoped to the origin
// (scheme and host) of the API the client talks to.
//
// Three backends are available: the OS keychain, a SQLite file under the XDG
// state directory, and an in-process map for tests.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pterm/pterm"

	"myblog/client/internal/xdg"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is an origin-scoped string key-value store.
// Delete of an absent key is a no-op and returns nil.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend names accepted by Open.
const (
	BackendAuto     = "auto"
	BackendKeychain = "keychain"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Origin  string
	// Path overrides the sqlite database location.
	Path   string
	Logger *pterm.Logger
}

// Open returns the store selected by opts.Backend. "auto" picks the OS keychain
// on macOS and Windows and the sqlite file everywhere else.
func Open(opts Options) (Store, error) {
	if opts.Origin == "" {
		return nil, errors.New("storage: origin is required")
	}
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" || backend == BackendAuto {
		backend = defaultBackend()
	}

	switch backend {
	case BackendKeychain:
		return NewKeychain(opts.Origin, opts.Logger)
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			dir, err := xdg.StateDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "storage.db")
		}
		return OpenSQLite(path, opts.Origin)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q (want auto, keychain, sqlite or memory)", opts.Backend)
	}
}

func defaultBackend() string {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return BackendKeychain
	}
	return BackendSQLite
}

// OriginOf returns the scheme://host origin of an API URL, the unit values are scoped to.
func OriginOf(apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil {
		return "", fmt.Errorf("storage: invalid api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("storage: api url %q has no scheme or host", apiURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

// Close releases resources held by s when it holds any.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
