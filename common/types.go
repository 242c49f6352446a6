package common

import "time"

// Cookie is a single browser cookie as observed in a session's jar.
// Cookie values are sensitive: only Name and Domain may appear in logs.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
	SameSite string    `json:"same_site,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
}

// Expired reports whether the cookie carries an expiry in the past.
// Session cookies (zero Expires) never count as expired.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// NamesOf returns the cookie names in jar order.
func NamesOf(cookies []Cookie) []string {
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	return names
}
