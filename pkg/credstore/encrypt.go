package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// versionPrefix tags the on-disk ciphertext format so future schemes can be
// distinguished from the current AES-256-GCM one.
const versionPrefix = "jv1"

// encryptValue seals value with AES-256-GCM. Layout: prefix || nonce || ct.
func encryptValue(value, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, nonce, value, nil)
	out := make([]byte, 0, len(versionPrefix)+len(nonce)+len(sealed))
	out = append(out, versionPrefix...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// decryptValue reverses encryptValue.
func decryptValue(data, key []byte) ([]byte, error) {
	if len(data) < len(versionPrefix) || string(data[:len(versionPrefix)]) != versionPrefix {
		return nil, fmt.Errorf("unrecognized ciphertext format")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	rest := data[len(versionPrefix):]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
