package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

const (
	keyFileName = "seed.key"
	keyFileMode = 0600
)

// FileKeyStore stores the encryption key hex-encoded in a 0600 file. It is
// the fallback when no OS keyring service is reachable (containers, CI).
type FileKeyStore struct {
	configDir string
}

// NewFileKeyStore creates a FileKeyStore rooted at the given config
// directory. The directory is created on first write.
func NewFileKeyStore(configDir string) *FileKeyStore {
	return &FileKeyStore{configDir: configDir}
}

func (f *FileKeyStore) keyPath() string {
	return filepath.Join(f.configDir, keyFileName)
}

// SetKey generates a fresh 32-byte key and writes it atomically via a temp
// file plus rename, so a crash cannot leave a truncated key behind.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	if err := os.MkdirAll(f.configDir, 0700); err != nil {
		return nil, fmt.Errorf("cannot create config directory: %w", err)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(f.configDir, keyFileName+".tmp-*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(hex.EncodeToString(key)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, err
	}
	if err := os.Chmod(tmpName, keyFileMode); err != nil {
		os.Remove(tmpName)
		return nil, err
	}
	if err := os.Rename(tmpName, f.keyPath()); err != nil {
		os.Remove(tmpName)
		return nil, err
	}
	return key, nil
}

// GetKey reads and decodes the stored key.
func (f *FileKeyStore) GetKey() ([]byte, error) {
	data, err := os.ReadFile(f.keyPath())
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("corrupt key file %s: %w", f.keyPath(), err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key file %s holds %d bytes, want 32", f.keyPath(), len(key))
	}
	return key, nil
}

// DeleteKey removes the key file. Missing files are not an error.
func (f *FileKeyStore) DeleteKey() error {
	err := os.Remove(f.keyPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ KeyStore = (*FileKeyStore)(nil)
