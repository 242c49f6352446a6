// Package keyring provides encryption-key storage backed by the operating
// system's native keyring, with a file-based fallback for headless hosts.
package keyring

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zalando/go-keyring"
)

// KeyStore is the contract shared by the system keyring and the file
// fallback. Keys are 32 raw bytes suitable for AES-256.
type KeyStore interface {
	SetKey() ([]byte, error)
	GetKey() ([]byte, error)
	DeleteKey() error
}

// Keyring stores the encryption key in the OS keyring service.
type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// New creates a Keyring scoped to the given application name.
func New(appName string) *Keyring {
	return &Keyring{
		AppName:  appName,
		KeyField: "seed",
	}
}

// SetKey generates a fresh 32-byte key, stores it hex-encoded in the OS
// keyring, and returns the raw bytes.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// GetKey retrieves the stored key and decodes it back to raw bytes.
func (k *Keyring) GetKey() ([]byte, error) {
	stored, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(stored)
}

// DeleteKey removes the key from the OS keyring.
func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}

var _ KeyStore = (*Keyring)(nil)

// GetOrCreate returns the key from the first store that has one, creating a
// key in the first store that accepts writes. Stores are consulted in order,
// so callers list the system keyring before the file fallback.
func GetOrCreate(stores ...KeyStore) ([]byte, error) {
	var lastErr error
	for _, s := range stores {
		if key, err := s.GetKey(); err == nil && len(key) == 32 {
			return key, nil
		}
	}
	for _, s := range stores {
		key, err := s.SetKey()
		if err == nil {
			return key, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
