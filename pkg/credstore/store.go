// Package credstore persists the operator-supplied seed cookie header
// encrypted at rest, keyed from the OS keyring (or its file fallback).
// Seed headers hold live session cookies and must never touch disk in
// the clear.
package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSeed is returned by Load when no seed header has been stored.
var ErrNoSeed = errors.New("no seed header stored")

// SeedStore is an encrypted single-value store for the raw seed cookie
// header. Not safe for concurrent use; callers serialize access.
type SeedStore struct {
	filePath string
	key      []byte
}

// NewSeedStore creates a store writing to filePath, sealing with key
// (32 bytes, from keyring.GetOrCreate).
func NewSeedStore(filePath string, key []byte) (*SeedStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("seed store key must be 32 bytes, got %d", len(key))
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, err
	}
	return &SeedStore{filePath: filePath, key: key}, nil
}

// Save encrypts and persists the raw header, replacing any previous value.
func (s *SeedStore) Save(rawHeader string) error {
	sealed, err := encryptValue([]byte(rawHeader), s.key)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, sealed, 0600)
}

// Load decrypts and returns the stored header, or ErrNoSeed when absent.
func (s *SeedStore) Load() (string, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSeed
		}
		return "", err
	}
	plain, err := decryptValue(data, s.key)
	if err != nil {
		return "", fmt.Errorf("cannot decrypt seed store: %w", err)
	}
	return string(plain), nil
}

// Clear removes the stored header. Clearing an empty store is not an error.
func (s *SeedStore) Clear() error {
	err := os.Remove(s.filePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
