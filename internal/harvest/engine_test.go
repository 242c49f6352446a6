package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/jarvest/jarvest/internal/browser"
	"github.com/jarvest/jarvest/pkg/logger"
)

func newEngine(t *testing.T, fake *browser.Fake) *Engine {
	t.Helper()
	fs := seedProfiles(t, "Default", "Profile 1")
	sel := newSelector(fs, fake)
	return NewEngine(logger.NewNopLogger(), sel, &Cache{TTL: time.Hour}, nil)
}

func TestEngine_SecondCallServedFromCache(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("first call cannot be a cache hit")
	}

	m, err = e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if !m.ServedFromCache {
		t.Fatal("second call within TTL must serve the cache")
	}
	if len(fake.Opened) != 1 {
		t.Fatalf("browser launched %d times; want 1", len(fake.Opened))
	}
}

func TestEngine_ForceRefreshRerunsHarvest(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	e.GetSessionMaterial(context.Background(), MaterialParams{})
	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{ForceRefresh: true})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("forced call must not serve the cache")
	}
	if len(fake.Opened) != 2 {
		t.Fatalf("browser launched %d times; want 2", len(fake.Opened))
	}
}

func TestEngine_ExplicitProfileBypassesCache(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	fake.Scripts["Profile 1"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	e.GetSessionMaterial(context.Background(), MaterialParams{})
	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{Profile: "Profile 1"})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("an explicit profile must bypass the unpartitioned slot")
	}
	if m.PickedProfile != "Profile 1" {
		t.Fatalf("PickedProfile = %q", m.PickedProfile)
	}
}

func TestEngine_CustomTargetNeverFillsSlot(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{TargetURL: "https://other.example.org/app"})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache || m.Origin != "https://other.example.org" {
		t.Fatalf("custom-target call: cached=%v origin=%q", m.ServedFromCache, m.Origin)
	}

	// A plain call right after must not be handed the custom-target
	// result: its auth header would be signed for the wrong origin.
	m, err = e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("default call served a slot filled by a custom-target harvest")
	}
	if m.Origin != "https://www.example.com" {
		t.Fatalf("Origin = %q; want the default target's origin", m.Origin)
	}
	if len(fake.Opened) != 2 {
		t.Fatalf("browser launched %d times; want 2", len(fake.Opened))
	}

	// The default-target harvest did fill the slot.
	m, err = e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if !m.ServedFromCache || m.Origin != "https://www.example.com" {
		t.Fatalf("third call: cached=%v origin=%q", m.ServedFromCache, m.Origin)
	}
}

func TestEngine_ExplicitProfileNeverFillsSlot(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	fake.Scripts["Profile 1"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{Profile: "Profile 1"})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.PickedProfile != "Profile 1" {
		t.Fatalf("PickedProfile = %q", m.PickedProfile)
	}

	m, err = e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("default call served a slot filled by an explicit-profile harvest")
	}
	if m.PickedProfile != "Default" {
		t.Fatalf("PickedProfile = %q; want the default walk's pick", m.PickedProfile)
	}
}

func TestEngine_SetSeedInvalidatesCache(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err := e.SetSeedHeader("SID=seeded"); err != nil {
		t.Fatalf("SetSeedHeader: %v", err)
	}

	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("seed update must drop the cached result")
	}
	if len(fake.Injected) == 0 || fake.Injected[0].Name != "SID" {
		t.Fatal("fresh harvest must inject the new seed")
	}
}

func TestEngine_ClearSeedInvalidatesCache(t *testing.T) {
	fake := browser.NewFake()
	fake.Scripts["Default"] = browser.FakeScript{Cookies: identityJar()}
	e := newEngine(t, fake)

	if err := e.SetSeedHeader("SID=seeded"); err != nil {
		t.Fatalf("SetSeedHeader: %v", err)
	}
	e.GetSessionMaterial(context.Background(), MaterialParams{})
	before := len(fake.Injected)

	if err := e.ClearSeedHeader(); err != nil {
		t.Fatalf("ClearSeedHeader: %v", err)
	}
	m, err := e.GetSessionMaterial(context.Background(), MaterialParams{})
	if err != nil {
		t.Fatalf("GetSessionMaterial: %v", err)
	}
	if m.ServedFromCache {
		t.Fatal("seed clear must drop the cached result")
	}
	if len(fake.Injected) != before {
		t.Fatal("cleared seed must not inject")
	}
}
