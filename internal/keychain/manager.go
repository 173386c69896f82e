// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for dawgtools.
// It stores the two secrets the tool knows about, the database DSN and the model
// API key, in the OS credential store (macOS Keychain, Windows Credential Manager,
// Secret Service or KWallet on Linux) and falls back to an encrypted file keyring
// under the XDG state directory when no native store is available.
package keychain

import (
	"errors"
	"sync"

	"github.com/99designs/keyring"

	"dawgtools/cli/internal/xdg"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "dawgtools"

// Keys used for storing secrets in the OS keychain.
const (
	KeyDBDSN        = "db_dsn"
	KeyOpenAIAPIKey = "openai_api_key"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("secret not found in keychain")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager wraps an already opened keyring.
func NewManager(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance, opening the OS
// keyring on first use. A failed open is retried on the next call.
// prompt is asked for the file keyring password and may be nil when a native
// store is expected.
func GetManager(prompt keyring.PromptFunc) (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	ring, err := openRing(prompt)
	if err != nil {
		globalError = err
		return nil, err
	}
	globalManager, globalError = NewManager(ring), nil
	return globalManager, nil
}

// openRing opens the OS keyring, preferring native backends.
func openRing(prompt keyring.PromptFunc) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
		LibSecretCollectionName:  ServiceName,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
	}

	if prompt != nil {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.FileBackend)
		cfg.FileDir = dir
		cfg.FilePasswordFunc = prompt
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, errors.New("no secure credential store available on this system")
		}
		return nil, err
	}
	return ring, nil
}

// Set stores value under key.
// This method is thread-safe.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

// Get retrieves the value stored under key. Missing or empty values return ErrNotFound.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Delete removes key. Removing a missing key is not an error.
// This method is thread-safe.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// SaveDBDSN stores the database DSN in the keychain.
func (m *Manager) SaveDBDSN(dsn string) error { return m.Set(KeyDBDSN, dsn) }

// LoadDBDSN retrieves the database DSN from the keychain.
func (m *Manager) LoadDBDSN() (string, error) { return m.Get(KeyDBDSN) }

// SaveAPIKey stores the model API key in the keychain.
func (m *Manager) SaveAPIKey(key string) error { return m.Set(KeyOpenAIAPIKey, key) }

// LoadAPIKey retrieves the model API key from the keychain.
func (m *Manager) LoadAPIKey() (string, error) { return m.Get(KeyOpenAIAPIKey) }

// ClearAll removes every dawgtools secret from the keychain.
func (m *Manager) ClearAll() error {
	var errs []error
	for _, k := range []string{KeyDBDSN, KeyOpenAIAPIKey} {
		if err := m.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
