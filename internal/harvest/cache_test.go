package harvest

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_ServesFreshSlot(t *testing.T) {
	var runs int32
	c := &Cache{TTL: time.Hour}
	refresh := func() (Result, error) {
		atomic.AddInt32(&runs, 1)
		return Result{PickedProfile: "Default"}, nil
	}

	res, cached, err := c.Get(false, refresh)
	if err != nil || cached {
		t.Fatalf("first call: cached=%v err=%v", cached, err)
	}
	if res.PickedProfile != "Default" {
		t.Fatalf("res = %+v", res.PickedProfile)
	}

	res, cached, err = c.Get(false, refresh)
	if err != nil || !cached {
		t.Fatalf("second call: cached=%v err=%v", cached, err)
	}
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("refresh ran %d times; want 1", got)
	}
}

func TestCache_ForceBypassesFreshSlot(t *testing.T) {
	var runs int32
	c := &Cache{TTL: time.Hour}
	refresh := func() (Result, error) {
		atomic.AddInt32(&runs, 1)
		return Result{}, nil
	}

	c.Get(false, refresh)
	_, cached, _ := c.Get(true, refresh)
	if cached {
		t.Fatal("forced call must not serve the slot")
	}
	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("refresh ran %d times; want 2", got)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	var runs int32
	c := &Cache{TTL: time.Minute, Now: func() time.Time { return now }}
	refresh := func() (Result, error) {
		atomic.AddInt32(&runs, 1)
		return Result{}, nil
	}

	c.Get(false, refresh)
	now = now.Add(59 * time.Second)
	if _, cached, _ := c.Get(false, refresh); !cached {
		t.Fatal("slot still inside TTL; want cache hit")
	}
	now = now.Add(2 * time.Second)
	if _, cached, _ := c.Get(false, refresh); cached {
		t.Fatal("slot past TTL; want refresh")
	}
	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("refresh ran %d times; want 2", got)
	}
}

func TestCache_InvalidateEmptiesSlot(t *testing.T) {
	var runs int32
	c := &Cache{TTL: time.Hour}
	refresh := func() (Result, error) {
		atomic.AddInt32(&runs, 1)
		return Result{}, nil
	}

	c.Get(false, refresh)
	c.Invalidate()
	if _, cached, _ := c.Get(false, refresh); cached {
		t.Fatal("invalidated slot must not serve")
	}
	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("refresh ran %d times; want 2", got)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	var runs int32
	c := &Cache{TTL: time.Hour}
	boom := errors.New("boom")
	failing := func() (Result, error) {
		atomic.AddInt32(&runs, 1)
		return Result{}, boom
	}

	if _, _, err := c.Get(false, failing); !errors.Is(err, boom) {
		t.Fatalf("err = %v; want boom", err)
	}
	if _, _, err := c.Get(false, failing); !errors.Is(err, boom) {
		t.Fatalf("err = %v; want boom again, not a cached failure", err)
	}
	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("refresh ran %d times; want 2", got)
	}
}

func TestCache_ConcurrentCallersCoalesce(t *testing.T) {
	var runs int32
	release := make(chan struct{})
	c := &Cache{TTL: time.Hour}
	refresh := func() (Result, error) {
		atomic.AddInt32(&runs, 1)
		<-release
		return Result{PickedProfile: "Default"}, nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]Result, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			res, _, err := c.Get(false, refresh)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = res
		}(i)
	}

	// Let the callers pile up behind the in-flight refresh, then let it
	// finish. Stragglers that arrive after completion hit the fresh slot.
	for atomic.LoadInt32(&runs) == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("refresh ran %d times for %d concurrent callers; want 1", got, callers)
	}
	for i, res := range results {
		if res.PickedProfile != "Default" {
			t.Fatalf("caller %d got a different result", i)
		}
	}
}
