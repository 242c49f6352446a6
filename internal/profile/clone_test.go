package profile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestClone_CopiesStoreAndSiblings(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/data"
	writeFile(t, fs, filepath.Join(root, LocalStateFile), "keys")
	writeFile(t, fs, filepath.Join(root, "Default", CookieStoreFile), "main db")
	writeFile(t, fs, filepath.Join(root, "Default", CookieStoreFile+"-wal"), "wal data")
	writeFile(t, fs, filepath.Join(root, "Default", CookieStoreFile+"-shm"), "shm data")
	writeFile(t, fs, filepath.Join(root, "Default", NetworkDir, CookieStoreFile), "net db")
	writeFile(t, fs, filepath.Join(root, "Default", PreferencesFile), "prefs")

	ws, err := Clone(fs, root, "Default")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer ws.Cleanup()

	if !ws.Report.PrimaryCopied || !ws.Report.NetworkCopied || !ws.Report.KeyFileCopied {
		t.Errorf("Report = %+v, want all copied", ws.Report)
	}
	checkFile := func(rel, want string) {
		t.Helper()
		data, err := afero.ReadFile(fs, filepath.Join(ws.Path, rel))
		if err != nil {
			t.Errorf("missing %s in workspace: %v", rel, err)
			return
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", rel, data, want)
		}
	}
	checkFile(LocalStateFile, "keys")
	checkFile(filepath.Join("Default", CookieStoreFile), "main db")
	checkFile(filepath.Join("Default", CookieStoreFile+"-wal"), "wal data")
	checkFile(filepath.Join("Default", CookieStoreFile+"-shm"), "shm data")
	checkFile(filepath.Join("Default", NetworkDir, CookieStoreFile), "net db")
	checkFile(filepath.Join("Default", PreferencesFile), "prefs")
}

func TestClone_MissingStoreIsNotFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws, err := Clone(fs, "/data", "Default")
	if err != nil {
		t.Fatalf("Clone of empty profile: %v", err)
	}
	defer ws.Cleanup()

	if ws.Report.PrimaryCopied || ws.Report.NetworkCopied {
		t.Errorf("Report = %+v, want nothing copied", ws.Report)
	}
	if len(ws.Report.Notes) == 0 {
		t.Error("missing store left no note in the report")
	}
	for _, note := range ws.Report.Notes {
		if strings.Contains(note, "Preferences") {
			t.Errorf("auxiliary file failure was recorded: %q", note)
		}
	}
}

func TestClone_WorkspacesAreUnique(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, err := Clone(fs, "/data", "Default")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer a.Cleanup()
	b, err := Clone(fs, "/data", "Default")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer b.Cleanup()

	if a.Path == b.Path {
		t.Errorf("two clones share workspace %s", a.Path)
	}
}

func TestCleanup_IsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join("/data", "Default", CookieStoreFile), "db")
	ws, err := Clone(fs, "/data", "Default")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("first Cleanup: %v", err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}
	if exists, _ := afero.DirExists(fs, ws.Path); exists {
		t.Errorf("workspace %s still exists after Cleanup", ws.Path)
	}
}

func TestCookieStorePath_PrefersNetworkLocation(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/data"
	writeFile(t, fs, filepath.Join(root, "Default", CookieStoreFile), "legacy")
	writeFile(t, fs, filepath.Join(root, "Default", NetworkDir, CookieStoreFile), "modern")

	ws, err := Clone(fs, root, "Default")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer ws.Cleanup()

	got := ws.CookieStorePath()
	want := filepath.Join(ws.Path, "Default", NetworkDir, CookieStoreFile)
	if got != want {
		t.Errorf("CookieStorePath = %s, want %s", got, want)
	}
}

func TestCookieStorePath_EmptyWhenNothingCopied(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws, err := Clone(fs, "/data", "Default")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer ws.Cleanup()
	if got := ws.CookieStorePath(); got != "" {
		t.Errorf("CookieStorePath = %q, want empty", got)
	}
}
