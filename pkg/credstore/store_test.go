package credstore

import (
	"bytes"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return key
}

func TestSeedStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.bin")
	st, err := NewSeedStore(path, testKey(t))
	if err != nil {
		t.Fatalf("NewSeedStore: %v", err)
	}

	const header = "SID=abc; SAPISID=xyz"
	if err := st.Save(header); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != header {
		t.Errorf("Load = %q, want %q", got, header)
	}
}

func TestSeedStore_LoadEmptyReturnsErrNoSeed(t *testing.T) {
	st, err := NewSeedStore(filepath.Join(t.TempDir(), "seed.bin"), testKey(t))
	if err != nil {
		t.Fatalf("NewSeedStore: %v", err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSeed) {
		t.Errorf("Load on empty store = %v, want ErrNoSeed", err)
	}
}

func TestSeedStore_ClearIsIdempotent(t *testing.T) {
	st, err := NewSeedStore(filepath.Join(t.TempDir(), "seed.bin"), testKey(t))
	if err != nil {
		t.Fatalf("NewSeedStore: %v", err)
	}
	if err := st.Save("SID=1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSeed) {
		t.Errorf("Load after Clear = %v, want ErrNoSeed", err)
	}
}

func TestSeedStore_CiphertextNotPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.bin")
	st, err := NewSeedStore(path, testKey(t))
	if err != nil {
		t.Fatalf("NewSeedStore: %v", err)
	}
	const header = "SAPISID=verysecretvalue"
	if err := st.Save(header); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.Contains(raw, []byte("verysecretvalue")) {
		t.Error("seed value stored in the clear")
	}
}

func TestSeedStore_WrongKeyFailsDecrypt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.bin")
	st, err := NewSeedStore(path, testKey(t))
	if err != nil {
		t.Fatalf("NewSeedStore: %v", err)
	}
	if err := st.Save("SID=1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	other, err := NewSeedStore(path, testKey(t))
	if err != nil {
		t.Fatalf("NewSeedStore: %v", err)
	}
	if _, err := other.Load(); err == nil {
		t.Error("Load with wrong key succeeded")
	}
}
