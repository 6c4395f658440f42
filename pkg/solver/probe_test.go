package solver

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProbeAvailable(t *testing.T) {
	backend := newFakeBackend(1)
	result := Probe(context.Background(), backend)
	if !result.Available {
		t.Fatalf("Probe() = %+v, want available", result)
	}
	// The probe's own environment is released before it returns.
	if backend.seatsInUse() != 0 {
		t.Errorf("seats in use after probe = %d, want 0", backend.seatsInUse())
	}
}

func TestProbeStaticFailure(t *testing.T) {
	backend := newFakeBackend(1)
	backend.staticErr = errors.New("license file missing")

	result := Probe(context.Background(), backend)
	if result.Available {
		t.Fatalf("Probe() = %+v, want unavailable", result)
	}
	if !strings.Contains(result.Reason, "license file missing") {
		t.Errorf("Probe() reason = %q, want the static failure carried through", result.Reason)
	}
	// Static checks run without touching the licensed resource.
	if backend.envsCreated != 0 {
		t.Errorf("environments created during static failure = %d, want 0", backend.envsCreated)
	}
}

func TestProbeContention(t *testing.T) {
	backend := newFakeBackend(1)
	holder := NewEnvironment(backend, EnvConfig{})
	if err := holder.Start(context.Background()); err != nil {
		t.Fatalf("holder Start() error = %v", err)
	}

	if result := Probe(context.Background(), backend); result.Available {
		t.Fatalf("Probe() under contention = %+v, want unavailable", result)
	}

	// Unavailability is a point-in-time answer: the same probe succeeds
	// once the holder lets go.
	if err := holder.Close(); err != nil {
		t.Fatalf("holder Close() error = %v", err)
	}
	if result := Probe(context.Background(), backend); !result.Available {
		t.Fatalf("Probe() after release = %+v, want available", result)
	}
}

func TestProbeCachePositivesOnly(t *testing.T) {
	var nilCache *ProbeCache
	if nilCache.KnownAvailable() {
		t.Errorf("nil cache reports available")
	}
	nilCache.MarkAvailable()
	nilCache.Invalidate()

	cache := NewProbeCache()
	if cache.KnownAvailable() {
		t.Errorf("fresh cache reports available")
	}
	cache.MarkAvailable()
	if !cache.KnownAvailable() {
		t.Errorf("cache lost a positive result")
	}
	cache.Invalidate()
	if cache.KnownAvailable() {
		t.Errorf("cache still positive after invalidation")
	}
}
