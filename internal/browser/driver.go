// Package browser defines the automation-session capability the harvester
// consumes, plus its chromedp-backed implementation and an in-memory fake
// for tests.
package browser

import (
	"context"
	"time"

	"github.com/jarvest/jarvest/common"
)

// WaitPolicy selects how long a navigation waits before control returns.
type WaitPolicy string

const (
	// WaitNone returns as soon as navigation is committed.
	WaitNone WaitPolicy = "none"
	// WaitDOMReady waits for the document to be ready.
	WaitDOMReady WaitPolicy = "domready"
	// WaitNetworkIdle additionally waits a settle period for late requests.
	WaitNetworkIdle WaitPolicy = "networkidle"
)

// ParseWaitPolicy coerces a configured string into a WaitPolicy. Unknown
// values fall back to WaitDOMReady rather than erroring.
func ParseWaitPolicy(s string) WaitPolicy {
	switch WaitPolicy(s) {
	case WaitNone, WaitDOMReady, WaitNetworkIdle:
		return WaitPolicy(s)
	default:
		return WaitDOMReady
	}
}

// Options configures one automation session.
type Options struct {
	// UserDataDir is the workspace the browser is bound to.
	UserDataDir string
	// ProfileDir is the profile directory name inside UserDataDir.
	ProfileDir string
	// Headless launches the browser without a visible window.
	Headless bool
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
}

// NavResult is the soft outcome of a navigation. Navigation never fails
// fatally: timeouts and load errors come back as OK=false with a reason,
// and the caller may still sample the cookie jar.
type NavResult struct {
	URL    string `json:"url"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Session is one live automation session bound to a workspace.
type Session interface {
	// Navigate loads url under the wait policy, bounded by timeout.
	Navigate(ctx context.Context, url string, policy WaitPolicy, timeout time.Duration) NavResult

	// Cookies returns the jar contents scoped to the given URLs, or the
	// whole jar when none are given.
	Cookies(ctx context.Context, urls ...string) ([]common.Cookie, error)

	// SetCookies injects cookies into the jar before navigation.
	SetCookies(ctx context.Context, cookies []common.Cookie) error

	// Close releases all native resources. Safe to call once per session.
	Close() error
}

// Driver opens automation sessions. The chromedp implementation is the
// production driver; tests use the Fake.
type Driver interface {
	Open(ctx context.Context, opts Options) (Session, error)
}
