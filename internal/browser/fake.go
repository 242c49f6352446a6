package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jarvest/jarvest/common"
)

// FakeScript describes how a Fake session behaves for one profile.
type FakeScript struct {
	// OpenErr makes Open fail for this profile.
	OpenErr error
	// NavFailures maps URLs to soft navigation failure reasons.
	NavFailures map[string]string
	// CookiesAfter is the number of jar samples that return only Injected
	// cookies before Cookies also starts returning the scripted set.
	// Zero means cookies are visible on the first sample.
	CookiesAfter int
	// Cookies is the scripted jar content once visible.
	Cookies []common.Cookie
}

// Fake is an in-memory Driver whose behavior is scripted per profile
// directory. It records opens, navigations and injected cookies so tests
// can assert ordering and injection.
type Fake struct {
	mu sync.Mutex

	// Scripts maps profile directory names to behavior. Profiles without
	// a script open fine and report an empty jar.
	Scripts map[string]FakeScript

	// DefaultOpenErr makes every unscripted profile fail to open.
	DefaultOpenErr error

	Opened      []string
	Navigations []string
	Injected    []common.Cookie
}

// NewFake returns an empty Fake; tests populate Scripts directly.
func NewFake() *Fake {
	return &Fake{Scripts: make(map[string]FakeScript)}
}

// Open records the profile and returns a scripted session.
func (f *Fake) Open(ctx context.Context, opts Options) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Opened = append(f.Opened, opts.ProfileDir)
	script, ok := f.Scripts[opts.ProfileDir]
	if ok && script.OpenErr != nil {
		return nil, script.OpenErr
	}
	if !ok && f.DefaultOpenErr != nil {
		return nil, f.DefaultOpenErr
	}
	return &fakeSession{fake: f, script: script, samplesLeft: script.CookiesAfter}, nil
}

type fakeSession struct {
	fake        *Fake
	script      FakeScript
	samplesLeft int
	injected    []common.Cookie
	closed      bool
}

func (s *fakeSession) Navigate(ctx context.Context, url string, policy WaitPolicy, timeout time.Duration) NavResult {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()

	s.fake.Navigations = append(s.fake.Navigations, url)
	if reason, ok := s.script.NavFailures[url]; ok {
		return NavResult{URL: url, OK: false, Reason: reason}
	}
	return NavResult{URL: url, OK: true}
}

func (s *fakeSession) Cookies(ctx context.Context, urls ...string) ([]common.Cookie, error) {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()

	if s.closed {
		return nil, errors.New("session closed")
	}
	jar := append([]common.Cookie(nil), s.injected...)
	if s.samplesLeft > 0 {
		s.samplesLeft--
		return jar, nil
	}
	return append(jar, s.script.Cookies...), nil
}

func (s *fakeSession) SetCookies(ctx context.Context, cookies []common.Cookie) error {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()

	s.injected = append(s.injected, cookies...)
	s.fake.Injected = append(s.fake.Injected, cookies...)
	return nil
}

func (s *fakeSession) Close() error {
	s.fake.mu.Lock()
	defer s.fake.mu.Unlock()
	s.closed = true
	return nil
}

var _ Driver = (*Fake)(nil)
