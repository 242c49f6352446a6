// Package harvest implements the session-credential harvesting engine:
// candidate selection, cookie polling, auth-header synthesis and the
// single-slot result cache with request coalescing.
package harvest

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/internal/browser"
	"github.com/jarvest/jarvest/internal/profile"
)

// identityCookieNames are the session-identity cookies; any one present
// means the jar belongs to an authenticated session.
var identityCookieNames = []string{"SID", "__Secure-1PSID", "__Secure-3PSID"}

// HasIdentity reports whether the jar contains at least one identity cookie.
func HasIdentity(cookies []common.Cookie) bool {
	return len(FoundIdentityNames(cookies)) > 0
}

// FoundIdentityNames returns the identity cookie names present in the jar,
// in the fixed recognition order.
func FoundIdentityNames(cookies []common.Cookie) []string {
	present := make(map[string]bool, len(cookies))
	for _, c := range cookies {
		if c.Value != "" {
			present[c.Name] = true
		}
	}
	var found []string
	for _, name := range identityCookieNames {
		if present[name] {
			found = append(found, name)
		}
	}
	return found
}

// Attempt is the trace record of one candidate harvest attempt.
type Attempt struct {
	Profile     profile.Profile     `json:"profile"`
	CloneReport profile.Report      `json:"clone_report"`
	Navigations []browser.NavResult `json:"navigations,omitempty"`
	// StoreCookieNames lists cookie names found in the cloned store
	// before the browser ever launched. Names only, never values.
	StoreCookieNames []string `json:"store_cookie_names,omitempty"`
	CookieNames      []string `json:"cookie_names,omitempty"`
	Found            bool     `json:"found"`
	Error            string   `json:"error,omitempty"`
}

// Result is the externally visible output of one harvest. A degraded
// all-candidates-failed harvest is still a Result, with empty header
// strings and a full trace; it is never an error.
type Result struct {
	CookieHeader         string    `json:"cookie_header"`
	AuthHeader           string    `json:"auth_header"`
	Origin               string    `json:"origin"`
	FoundIdentityCookies []string  `json:"found_identity_cookies"`
	PickedProfile        string    `json:"picked_profile,omitempty"`
	Attempts             []Attempt `json:"attempts"`
	Timestamp            time.Time `json:"timestamp"`
}

// Authenticated reports whether the harvest produced usable credentials.
func (r Result) Authenticated() bool {
	return len(r.FoundIdentityCookies) > 0 || r.AuthHeader != ""
}

// OriginOf reduces a URL to its origin (scheme://host[:port]).
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// CookieHeader joins the cookies applicable to the target URL into a
// semicolon-separated header value, preserving jar order.
func CookieHeader(cookies []common.Cookie, targetURL string) string {
	host := hostOf(targetURL)
	var parts []string
	for _, c := range cookies {
		if c.Value == "" || !domainMatches(c.Domain, host) {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// domainMatches reports whether a cookie domain applies to host. Cookies
// are matched exactly or by parent-domain suffix, bounded at the public
// suffix so "com" never matches everything.
func domainMatches(cookieDomain, host string) bool {
	if host == "" {
		return true
	}
	d := strings.TrimPrefix(strings.ToLower(cookieDomain), ".")
	h := strings.ToLower(host)
	if d == "" || d == h {
		return d == h || d == ""
	}
	if !strings.HasSuffix(h, "."+d) {
		return false
	}
	if suffix, err := publicsuffix.EffectiveTLDPlusOne(h); err == nil {
		return len(d) >= len(suffix)
	}
	return true
}
