package booking

import (
	"context"
	"sync"

	"github.com/tidyhive/booking-engine/engine"
)

// SettingsCache is a read-through cache over a SettingsSource with explicit
// invalidation. It is constructor-injected everywhere it is used - never a
// package global - so tests substitute deterministic settings without
// cross-test leakage.
//
// A load failure is not fatal: the engine's documented defaults apply, and
// the next Get retries the source.
type SettingsCache struct {
	src SettingsSource

	mu     sync.RWMutex
	cached engine.Settings
	loaded bool
}

func NewSettingsCache(src SettingsSource) *SettingsCache {
	return &SettingsCache{src: src}
}

// Get returns the current settings, loading from the source on first use or
// after Invalidate.
func (c *SettingsCache) Get(ctx context.Context) engine.Settings {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.cached
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.cached
	}

	raw, err := c.src.LoadSettings(ctx)
	if err != nil {
		// Fall back to defaults without caching, so a transient store
		// failure doesn't pin defaults forever.
		return engine.DefaultSettings()
	}
	c.cached = engine.SettingsFromMap(raw)
	c.loaded = true
	return c.cached
}

// Invalidate drops the cached settings; the next Get re-reads the source.
// Called after any admin settings write.
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
