package profile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jarvest/jarvest/common"
)

// Report records the outcome of cloning one profile. Primary-store and key
// file failures are recorded here rather than failing the attempt; auxiliary
// file failures are silently tolerated.
type Report struct {
	PrimaryCopied bool     `json:"primary_copied"`
	NetworkCopied bool     `json:"network_copied"`
	KeyFileCopied bool     `json:"key_file_copied"`
	Notes         []string `json:"notes,omitempty"`
}

// Workspace is an ephemeral user-data directory holding copies of one
// profile's cookie-store artifacts. It is exclusively owned by a single
// harvest attempt, which must call Cleanup on every exit path.
type Workspace struct {
	// Path is the workspace root, usable as a browser user-data directory.
	Path string
	// ProfileDir is the profile directory name inside Path.
	ProfileDir string
	// Report describes what was actually copied.
	Report Report

	fs afero.Fs
}

// Clone copies the named profile's cookie-store artifacts from root into a
// fresh collision-free workspace. Only workspace creation itself is fatal;
// every copy failure is either recorded in the Report or ignored.
func Clone(fs afero.Fs, root, name string) (*Workspace, error) {
	wsRoot := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s", common.AppName, uuid.NewString()))
	profDir := filepath.Join(wsRoot, name)
	if err := fs.MkdirAll(filepath.Join(profDir, NetworkDir), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create workspace: %w", err)
	}

	ws := &Workspace{Path: wsRoot, ProfileDir: name, fs: fs}
	src := filepath.Join(root, name)

	// Root-level shared key file. Needed for the browser to read the
	// cloned store's encrypted values; its absence is recorded, not fatal.
	ws.Report.KeyFileCopied = ws.copyRecorded(
		filepath.Join(root, LocalStateFile), filepath.Join(wsRoot, LocalStateFile), "key file")

	// Primary cookie store and WAL/SHM siblings from the direct location.
	ws.Report.PrimaryCopied = ws.copyRecorded(
		filepath.Join(src, CookieStoreFile), filepath.Join(profDir, CookieStoreFile), "cookie store")
	ws.copySilent(filepath.Join(src, CookieStoreFile+walSuffix), filepath.Join(profDir, CookieStoreFile+walSuffix))
	ws.copySilent(filepath.Join(src, CookieStoreFile+shmSuffix), filepath.Join(profDir, CookieStoreFile+shmSuffix))

	// Nested alternate location used by current browser builds.
	ws.Report.NetworkCopied = ws.copyRecorded(
		filepath.Join(src, NetworkDir, CookieStoreFile), filepath.Join(profDir, NetworkDir, CookieStoreFile), "network cookie store")
	ws.copySilent(filepath.Join(src, NetworkDir, CookieStoreFile+walSuffix), filepath.Join(profDir, NetworkDir, CookieStoreFile+walSuffix))
	ws.copySilent(filepath.Join(src, NetworkDir, CookieStoreFile+shmSuffix), filepath.Join(profDir, NetworkDir, CookieStoreFile+shmSuffix))

	// Auxiliary configuration, always best-effort.
	ws.copySilent(filepath.Join(src, PreferencesFile), filepath.Join(profDir, PreferencesFile))

	return ws, nil
}

// CookieStorePath returns the path of the preferred cloned cookie store,
// or "" when no store was copied.
func (w *Workspace) CookieStorePath() string {
	if w.Report.NetworkCopied {
		return filepath.Join(w.Path, w.ProfileDir, NetworkDir, CookieStoreFile)
	}
	if w.Report.PrimaryCopied {
		return filepath.Join(w.Path, w.ProfileDir, CookieStoreFile)
	}
	return ""
}

// Cleanup removes the workspace directory. It is idempotent and safe to
// call multiple times or after a partial Clone.
func (w *Workspace) Cleanup() error {
	if w == nil || w.Path == "" {
		return nil
	}
	return w.fs.RemoveAll(w.Path)
}

// copyRecorded copies src to dst and reports success. A missing source or
// a failed copy appends a note to the Report.
func (w *Workspace) copyRecorded(src, dst, label string) bool {
	if !fileExists(w.fs, src) {
		w.Report.Notes = append(w.Report.Notes, fmt.Sprintf("%s not found at %s", label, src))
		return false
	}
	if err := copyFile(w.fs, src, dst); err != nil {
		w.Report.Notes = append(w.Report.Notes, fmt.Sprintf("failed to copy %s: %v", label, err))
		return false
	}
	return true
}

// copySilent copies src to dst if it exists, ignoring all failures.
func (w *Workspace) copySilent(src, dst string) {
	if fileExists(w.fs, src) {
		_ = copyFile(w.fs, src, dst)
	}
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
