package harvest

import (
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/jarvest/jarvest/common"
)

const authScheme = "SAPISIDHASH"

// secretCookieNames are consulted in order; the first non-empty value is
// the hash secret.
var secretCookieNames = []string{"SAPISID", "__Secure-1PAPISID", "__Secure-3PAPISID"}

// SecretCookie returns the auth-hash secret from the jar, if any.
func SecretCookie(cookies []common.Cookie) (string, bool) {
	byName := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if c.Value != "" {
			if _, dup := byName[c.Name]; !dup {
				byName[c.Name] = c.Value
			}
		}
	}
	for _, name := range secretCookieNames {
		if v, ok := byName[name]; ok {
			return v, true
		}
	}
	return "", false
}

// SynthesizeAuthHeader derives the request auth header from the jar:
// "SAPISIDHASH <ts>_<sha1hex>" where the digest covers
// "<ts> <secret> <origin>". Returns "" when no secret cookie is present.
// Deterministic for a fixed clock.
func SynthesizeAuthHeader(cookies []common.Cookie, origin string, now time.Time) string {
	secret, ok := SecretCookie(cookies)
	if !ok || origin == "" {
		return ""
	}
	ts := now.Unix()
	sum := sha1.Sum([]byte(fmt.Sprintf("%d %s %s", ts, secret, origin)))
	return fmt.Sprintf("%s %d_%x", authScheme, ts, sum)
}
