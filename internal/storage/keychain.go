// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

package storage

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "myblog"

// keychainBackend defines the interface for native keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Keychain is a Store backed by the OS keychain/credential manager.
// Items are named "<origin>|<key>" so several API origins can coexist.
type Keychain struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	origin  string
}

// NewKeychain opens the OS keychain. On macOS the native security tool is
// tried first; everywhere else the keyring library picks a platform backend.
func NewKeychain(origin string, log *pterm.Logger) (*Keychain, error) {
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend(log)
		if err == nil {
			return &Keychain{backend: backend, origin: origin}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Keychain{ring: ring, origin: origin}, nil
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// Pass requires 'pass' utility installed: brew install pass
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

func (k *Keychain) itemKey(key string) string {
	return k.origin + "|" + key
}

// Get retrieves a value. This method is thread-safe.
func (k *Keychain) Get(key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.backend != nil {
		v, err := k.backend.Get(k.itemKey(key))
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", ErrNotFound
		}
		return v, nil
	}

	it, err := k.ring.Get(k.itemKey(key))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Set stores a value. This method is thread-safe.
func (k *Keychain) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.backend != nil {
		return k.backend.Set(k.itemKey(key), value)
	}
	return k.ring.Set(keyring.Item{
		Key:         k.itemKey(key),
		Data:        []byte(value),
		Label:       "myblog " + key,
		Description: "myblog client credential for " + k.origin,
	})
}

// Delete removes a value; absent keys are ignored. This method is thread-safe.
func (k *Keychain) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.backend != nil {
		return k.backend.Delete(k.itemKey(key))
	}
	err := k.ring.Remove(k.itemKey(key))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
