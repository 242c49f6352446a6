package harvest

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a completed harvest result stays servable.
const DefaultCacheTTL = 5 * time.Minute

// Cache is the single-slot TTL cache over harvest results. Concurrent
// refreshes coalesce into one underlying run; every waiter gets the same
// result. Degraded results are cached like successes, so a broken profile
// store does not hammer the browser; hard failures are never cached.
type Cache struct {
	TTL time.Duration
	Now func() time.Time

	mu     sync.Mutex
	slot   Result
	filled bool
	expiry time.Time

	group singleflight.Group
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultCacheTTL
	}
	return c.TTL
}

// Get returns the cached result when it is fresh and force is unset,
// otherwise runs refresh (coalesced across callers) and replaces the
// slot atomically. The bool reports whether the slot served the call.
func (c *Cache) Get(force bool, refresh func() (Result, error)) (Result, bool, error) {
	if !force {
		c.mu.Lock()
		if c.filled && c.now().Before(c.expiry) {
			res := c.slot
			c.mu.Unlock()
			return res, true, nil
		}
		c.mu.Unlock()
	}

	v, err, _ := c.group.Do("harvest", func() (interface{}, error) {
		res, err := refresh()
		if err != nil {
			return Result{}, err
		}
		c.mu.Lock()
		c.slot = res
		c.filled = true
		c.expiry = c.now().Add(c.ttl())
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return Result{}, false, err
	}
	return v.(Result), false, nil
}

// Invalidate empties the slot. An in-flight refresh still completes and
// fills it again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.filled = false
	c.expiry = time.Time{}
	c.mu.Unlock()
}
