package solver

import (
	"context"
	"sync"
)

// ProbeResult reports backend availability.
type ProbeResult struct {
	// Available is true when the backend passed all checks.
	Available bool `json:"available"`

	// Reason carries the diagnostic text when the backend is unavailable.
	Reason string `json:"reason,omitempty"`
}

// ProbeCache remembers positive availability results so repeated solves do
// not re-run static checks. Negative results are deliberately never
// cached: a probe that fails because another holder has the license must
// be retried fresh on the next call. Construct one per adapter or share
// one explicitly; there is no process-wide instance.
type ProbeCache struct {
	mu        sync.Mutex
	available bool
}

// NewProbeCache creates an empty probe cache.
func NewProbeCache() *ProbeCache {
	return &ProbeCache{}
}

// KnownAvailable reports whether a prior check succeeded since the last
// Invalidate.
func (c *ProbeCache) KnownAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// MarkAvailable records a successful availability check.
func (c *ProbeCache) MarkAvailable() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = true
}

// Invalidate clears the cached positive result, forcing the next check to
// run against the backend again. Called when the license configuration
// changes out from under the process.
func (c *ProbeCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = false
}

// Probe checks whether the backend is usable right now. Static conditions
// are checked first without touching the licensed resource; only when they
// pass is a live environment opened, started, and immediately released.
// The result reflects this call only — callers must not treat an
// unavailable result as permanent.
func Probe(ctx context.Context, backend Backend) ProbeResult {
	if err := backend.CheckAvailable(ctx); err != nil {
		return ProbeResult{Available: false, Reason: err.Error()}
	}

	env := NewEnvironment(backend, EnvConfig{})
	defer func() { _ = env.Close() }()
	if err := env.Start(ctx); err != nil {
		return ProbeResult{Available: false, Reason: err.Error()}
	}
	return ProbeResult{Available: true}
}
