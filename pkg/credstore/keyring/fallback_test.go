package keyring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileKeyStore_SetAndGet(t *testing.T) {
	st := NewFileKeyStore(t.TempDir())
	key, err := st.SetKey()
	if err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("SetKey returned %d bytes, want 32", len(key))
	}
	got, err := st.GetKey()
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if string(got) != string(key) {
		t.Error("GetKey returned different bytes than SetKey")
	}
}

func TestFileKeyStore_KeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	st := NewFileKeyStore(dir)
	if _, err := st.SetKey(); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, keyFileName))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != keyFileMode {
		t.Errorf("key file mode = %o, want %o", perm, keyFileMode)
	}
}

func TestFileKeyStore_DeleteMissingIsNil(t *testing.T) {
	st := NewFileKeyStore(t.TempDir())
	if err := st.DeleteKey(); err != nil {
		t.Errorf("DeleteKey on missing file = %v, want nil", err)
	}
}

func TestFileKeyStore_GetRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	st := NewFileKeyStore(dir)
	if err := os.WriteFile(filepath.Join(dir, keyFileName), []byte("not-hex!"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := st.GetKey(); err == nil {
		t.Error("GetKey accepted corrupt key file")
	}
}

func TestGetOrCreate_PrefersExistingKey(t *testing.T) {
	st := NewFileKeyStore(t.TempDir())
	first, err := st.SetKey()
	if err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	got, err := GetOrCreate(st)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if string(got) != string(first) {
		t.Error("GetOrCreate generated a new key despite an existing one")
	}
}

func TestGetOrCreate_CreatesWhenEmpty(t *testing.T) {
	st := NewFileKeyStore(t.TempDir())
	key, err := GetOrCreate(st)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("key length = %d, want 32", len(key))
	}
}
