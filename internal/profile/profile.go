// Package profile discovers browser profiles under a user-data root and
// clones their cookie-store artifacts into isolated workspaces, so an
// automation session never contends with a live browser's lock on the
// same profile.
package profile

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Artifact file names inside a Chromium-style user-data directory.
const (
	// CookieStoreFile is the legacy per-profile cookie database.
	CookieStoreFile = "Cookies"
	// NetworkDir is the nested directory holding the modern cookie store.
	NetworkDir = "Network"
	// LocalStateFile is the root-level shared key file.
	LocalStateFile = "Local State"
	// PreferencesFile is the per-profile auxiliary configuration file.
	PreferencesFile = "Preferences"

	walSuffix = "-wal"
	shmSuffix = "-shm"
)

// Flags records which cookie-store artifacts were present at discovery
// time. It is copied into the harvest trace for every attempt.
type Flags struct {
	CookieStore        bool `json:"cookie_store"`
	CookieWAL          bool `json:"cookie_wal"`
	CookieSHM          bool `json:"cookie_shm"`
	NetworkCookieStore bool `json:"network_cookie_store"`
	LocalState         bool `json:"local_state"`
	Preferences        bool `json:"preferences"`
}

// HasCookieArtifacts reports whether any cookie database was detected.
// Used only to prefer-order candidates; a profile without artifacts is
// still attempted.
func (f Flags) HasCookieArtifacts() bool {
	return f.CookieStore || f.NetworkCookieStore
}

// Profile is an immutable snapshot of one named profile taken at discovery
// time for a single harvest attempt.
type Profile struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Flags Flags  `json:"flags"`
}

// Inspect takes a presence snapshot of the named profile under root.
// It never fails: a missing directory simply yields all-false flags.
func Inspect(fs afero.Fs, root, name string) Profile {
	dir := filepath.Join(root, name)
	return Profile{
		Name: name,
		Path: dir,
		Flags: Flags{
			CookieStore:        fileExists(fs, filepath.Join(dir, CookieStoreFile)),
			CookieWAL:          fileExists(fs, filepath.Join(dir, CookieStoreFile+walSuffix)),
			CookieSHM:          fileExists(fs, filepath.Join(dir, CookieStoreFile+shmSuffix)),
			NetworkCookieStore: fileExists(fs, filepath.Join(dir, NetworkDir, CookieStoreFile)),
			LocalState:         fileExists(fs, filepath.Join(root, LocalStateFile)),
			Preferences:        fileExists(fs, filepath.Join(dir, PreferencesFile)),
		},
	}
}

func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
