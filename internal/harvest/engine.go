package harvest

import (
	"context"

	"github.com/jarvest/jarvest/pkg/logger"
)

// MaterialParams narrows one GetSessionMaterial call.
type MaterialParams struct {
	TargetURL    string `json:"target_url,omitempty"`
	ForceRefresh bool   `json:"force_refresh,omitempty"`
	Profile      string `json:"profile,omitempty"`
}

// Material is a harvest result plus its cache provenance.
type Material struct {
	Result
	ServedFromCache bool `json:"served_from_cache"`
}

// Engine is the daemon-facing facade over the selector, cache and seed
// state.
type Engine struct {
	log      logger.Logger
	selector *Selector
	cache    *Cache
	seed     *SeedState
}

// NewEngine wires the facade. A nil cache or seed gets a zero-value one.
func NewEngine(l logger.Logger, sel *Selector, cache *Cache, seed *SeedState) *Engine {
	if cache == nil {
		cache = &Cache{}
	}
	if seed == nil {
		seed = &SeedState{}
	}
	return &Engine{log: l, selector: sel, cache: cache, seed: seed}
}

// GetSessionMaterial returns session credentials for the target, serving
// the cache when it is fresh. A custom target or an explicit profile
// bypasses the cache entirely, on both the read and the write side: the
// slot is unpartitioned and must only ever hold the default-target
// result, or a later plain call would be handed an auth header signed
// for a different origin.
func (e *Engine) GetSessionMaterial(ctx context.Context, p MaterialParams) (Material, error) {
	target := p.TargetURL
	if target == "" {
		target = e.selector.Cfg.TargetURL
	}
	run := func() (Result, error) {
		return e.selector.Run(ctx, Request{
			TargetURL: target,
			Profile:   p.Profile,
			Seed:      e.seed.Cookies(hostOf(target)),
		})
	}

	if p.Profile != "" || target != e.selector.Cfg.TargetURL {
		res, err := run()
		if err != nil {
			return Material{}, err
		}
		return Material{Result: res}, nil
	}

	res, cached, err := e.cache.Get(p.ForceRefresh, run)
	if err != nil {
		return Material{}, err
	}
	return Material{Result: res, ServedFromCache: cached}, nil
}

// SetSeedHeader installs a new seed cookie header and drops the cached
// result, since the next harvest should run with the seed applied.
func (e *Engine) SetSeedHeader(raw string) error {
	if err := e.seed.Set(raw); err != nil {
		return err
	}
	e.cache.Invalidate()
	e.log.Info("seed header updated; cache invalidated")
	return nil
}

// ClearSeedHeader forgets the seed and drops the cached result.
func (e *Engine) ClearSeedHeader() error {
	if err := e.seed.Clear(); err != nil {
		return err
	}
	e.cache.Invalidate()
	e.log.Info("seed header cleared; cache invalidated")
	return nil
}

// Invalidate drops the cached result without touching the seed.
func (e *Engine) Invalidate() {
	e.cache.Invalidate()
}
