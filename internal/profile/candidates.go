package profile

import (
	"fmt"

	"github.com/spf13/afero"
)

// DefaultProfileName is the profile Chromium creates on first run.
const DefaultProfileName = "Default"

// Candidates returns the ordered list of profile names to attempt.
//
// A non-empty forced name yields exactly that one candidate. Otherwise the
// preferred name is followed by "Default" and the generated alternates
// "Profile 1" .. "Profile N", de-duplicated preserving first occurrence.
// Candidates whose cookie artifacts were detected on disk are moved ahead
// of those without, keeping relative order within each group; candidates
// without artifacts are still attempted last rather than skipped.
func Candidates(fs afero.Fs, root, forced, preferred string, alternates int) []string {
	if forced != "" {
		return []string{forced}
	}

	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	add(preferred)
	add(DefaultProfileName)
	for i := 1; i <= alternates; i++ {
		add(fmt.Sprintf("Profile %d", i))
	}

	withStore := make([]string, 0, len(names))
	withoutStore := make([]string, 0, len(names))
	for _, name := range names {
		if Inspect(fs, root, name).Flags.HasCookieArtifacts() {
			withStore = append(withStore, name)
		} else {
			withoutStore = append(withoutStore, name)
		}
	}
	return append(withStore, withoutStore...)
}
