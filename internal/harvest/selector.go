package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/internal/browser"
	"github.com/jarvest/jarvest/internal/extscript"
	"github.com/jarvest/jarvest/internal/profile"
	"github.com/jarvest/jarvest/pkg/logger"
)

// ErrNoSession is returned when every candidate failed before a browser
// session could even be opened. Anything past that point is a degraded
// Result, not an error.
var ErrNoSession = errors.New("no candidate profile yielded a browser session")

// SelectorConfig carries the tuning knobs for a harvest run.
type SelectorConfig struct {
	ProfileRoot      string
	PreferredProfile string
	AlternateCount   int

	TargetURL   string
	ReverifyURL string // defaults to the target origin root

	Headless        bool
	UserAgent       string
	WaitPolicy      browser.WaitPolicy
	NavTimeout      time.Duration
	ReverifyTimeout time.Duration

	PollInterval       time.Duration
	PollBudget         time.Duration
	ReverifyPollBudget time.Duration
}

// Request narrows one harvest invocation.
type Request struct {
	TargetURL string // overrides SelectorConfig.TargetURL when set
	Profile   string // forces a single candidate when set
	Seed      []common.Cookie
}

// Selector walks candidate profiles in preference order, cloning each into
// an ephemeral workspace and driving a browser session against it until
// one yields session credentials.
type Selector struct {
	FS      afero.Fs
	Driver  browser.Driver
	Log     logger.Logger
	Adapter *extscript.Adapter
	Cfg     SelectorConfig
	Now     func() time.Time
}

func (s *Selector) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run performs one harvest. The returned error is non-nil only when no
// candidate produced a workspace and an open browser session; all other
// failure modes produce a degraded Result with a full attempt trace.
func (s *Selector) Run(ctx context.Context, req Request) (Result, error) {
	target := req.TargetURL
	if target == "" {
		target = s.Cfg.TargetURL
	}
	origin := OriginOf(target)
	res := Result{Origin: origin, Timestamp: s.now()}

	candidates := profile.Candidates(s.FS, s.Cfg.ProfileRoot, req.Profile, s.Cfg.PreferredProfile, s.Cfg.AlternateCount)

	opened := false
	for _, name := range candidates {
		cand := profile.Inspect(s.FS, s.Cfg.ProfileRoot, name)
		attempt, jar := s.attempt(ctx, cand, target, origin, req.Seed)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Error == "" {
			opened = true
		}
		if !attempt.Found && !attemptHasSecret(jar) {
			continue
		}

		res.PickedProfile = cand.Name
		res.FoundIdentityCookies = FoundIdentityNames(jar)
		res.CookieHeader = CookieHeader(jar, target)
		res.AuthHeader = s.synthesize(jar, origin)
		s.Log.Info("harvest succeeded: profile=%s identity=%v", cand.Name, res.FoundIdentityCookies)
		return res, nil
	}

	if !opened {
		return res, ErrNoSession
	}
	s.Log.Warning("harvest degraded: no candidate held session credentials (tried %d)", len(res.Attempts))
	return res, nil
}

func attemptHasSecret(jar []common.Cookie) bool {
	_, ok := SecretCookie(jar)
	return ok
}

// attempt clones one candidate and drives a session against the clone.
// The workspace and session are always torn down before return.
func (s *Selector) attempt(ctx context.Context, cand profile.Profile, target, origin string, seed []common.Cookie) (Attempt, []common.Cookie) {
	attempt := Attempt{Profile: cand}

	ws, err := profile.Clone(s.FS, s.Cfg.ProfileRoot, cand.Name)
	if err != nil {
		attempt.Error = fmt.Sprintf("workspace: %v", err)
		s.Log.Error("profile %q: %s", cand.Name, attempt.Error)
		return attempt, nil
	}
	defer ws.Cleanup()
	attempt.CloneReport = ws.Report

	// Best-effort preflight: read the cloned store directly so the trace
	// shows what the profile held before the browser touched it.
	if dbPath := ws.CookieStorePath(); dbPath != "" {
		if stored, err := profile.Peek(ctx, dbPath, hostOf(target)); err == nil {
			attempt.StoreCookieNames = common.NamesOf(stored)
		}
	}

	sess, err := s.Driver.Open(ctx, browser.Options{
		UserDataDir: ws.Path,
		ProfileDir:  cand.Name,
		Headless:    s.Cfg.Headless,
		UserAgent:   s.Cfg.UserAgent,
	})
	if err != nil {
		attempt.Error = fmt.Sprintf("open session: %v", err)
		s.Log.Error("profile %q: %s", cand.Name, attempt.Error)
		return attempt, nil
	}
	defer sess.Close()

	if len(seed) > 0 {
		stamped := stampSeed(seed, hostOf(target))
		if err := sess.SetCookies(ctx, stamped); err != nil {
			attempt.CloneReport.Notes = append(attempt.CloneReport.Notes, "seed injection: "+err.Error())
			s.Log.Warning("profile %q: seed injection failed: %v", cand.Name, err)
		}
	}

	for _, u := range s.touchURLs() {
		nav := sess.Navigate(ctx, u, browser.WaitDOMReady, s.Cfg.NavTimeout)
		attempt.Navigations = append(attempt.Navigations, nav)
	}

	nav := sess.Navigate(ctx, target, s.Cfg.WaitPolicy, s.Cfg.NavTimeout)
	attempt.Navigations = append(attempt.Navigations, nav)

	scope := []string{target}
	out := Poll(ctx, sess, scope, PollConfig{Interval: s.Cfg.PollInterval, Budget: s.Cfg.PollBudget})

	if !out.Found {
		// Second phase: a fresh navigation sometimes materializes the
		// session cookies the first load withheld.
		reverify := s.Cfg.ReverifyURL
		if reverify == "" {
			reverify = origin + "/"
		}
		nav := sess.Navigate(ctx, reverify, s.Cfg.WaitPolicy, s.Cfg.ReverifyTimeout)
		attempt.Navigations = append(attempt.Navigations, nav)
		out = Poll(ctx, sess, scope, PollConfig{Interval: s.Cfg.PollInterval, Budget: s.Cfg.ReverifyPollBudget})
	}

	attempt.Found = out.Found
	attempt.CookieNames = common.NamesOf(out.Cookies)
	return attempt, out.Cookies
}

func stampSeed(seed []common.Cookie, host string) []common.Cookie {
	out := make([]common.Cookie, len(seed))
	for i, c := range seed {
		if c.Domain == "" {
			c.Domain = host
		}
		if c.Path == "" {
			c.Path = "/"
		}
		out[i] = c
	}
	return out
}

// touchURLs asks the site adapter for warm-up URLs to visit before the
// primary navigation. No adapter, no warm-up.
func (s *Selector) touchURLs() []string {
	return s.Adapter.TouchURLs()
}

// synthesize builds the auth header, letting the site adapter override
// the built-in scheme.
func (s *Selector) synthesize(jar []common.Cookie, origin string) string {
	now := s.now()
	if h, ok := s.Adapter.DeriveAuth(now.Unix(), cookieMap(jar), origin); ok {
		return h
	}
	return SynthesizeAuthHeader(jar, origin, now)
}

func cookieMap(jar []common.Cookie) map[string]string {
	m := make(map[string]string, len(jar))
	for _, c := range jar {
		if _, dup := m[c.Name]; !dup {
			m[c.Name] = c.Value
		}
	}
	return m
}
