package harvest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/pkg/credstore"
)

// ParseSeedHeader splits a Cookie-header string ("name=value; name2=value2")
// into bare cookies. The pairs carry no domain or path; those get stamped
// at injection time. Empty names are rejected, empty values are kept.
func ParseSeedHeader(raw string) ([]common.Cookie, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty seed header")
	}
	var cookies []common.Cookie
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed seed pair %q", pair)
		}
		cookies = append(cookies, common.Cookie{
			Name:  name,
			Value: strings.TrimSpace(value),
		})
	}
	if len(cookies) == 0 {
		return nil, errors.New("seed header holds no cookie pairs")
	}
	return cookies, nil
}

// SeedState holds the optional operator-supplied seed cookies, backed by
// an encrypted store so a daemon restart keeps them.
type SeedState struct {
	mu      sync.Mutex
	raw     string
	cookies []common.Cookie
	store   *credstore.SeedStore
}

// NewSeedState builds the state and loads any previously saved seed.
// A nil store keeps the seed in memory only.
func NewSeedState(store *credstore.SeedStore) (*SeedState, error) {
	s := &SeedState{store: store}
	if store == nil {
		return s, nil
	}
	raw, err := store.Load()
	if errors.Is(err, credstore.ErrNoSeed) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	cookies, err := ParseSeedHeader(raw)
	if err != nil {
		// A stored seed that no longer parses is dropped, not fatal.
		return s, nil
	}
	s.raw = raw
	s.cookies = cookies
	return s, nil
}

// Set validates, persists and activates a new seed header.
func (s *SeedState) Set(raw string) error {
	cookies, err := ParseSeedHeader(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Save(raw); err != nil {
			return fmt.Errorf("persist seed: %w", err)
		}
	}
	s.raw = raw
	s.cookies = cookies
	return nil
}

// Clear forgets the seed in memory and on disk.
func (s *SeedState) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = ""
	s.cookies = nil
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// Cookies returns the seed stamped for the given host, ready for
// injection. Returns nil when no seed is set.
func (s *SeedState) Cookies(host string) []common.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cookies) == 0 {
		return nil
	}
	out := make([]common.Cookie, len(s.cookies))
	for i, c := range s.cookies {
		c.Domain = host
		c.Path = "/"
		c.Secure = true
		out[i] = c
	}
	return out
}
