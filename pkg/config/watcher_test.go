package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/solvenv/solvenv/pkg/solver"
)

func TestLicenseWatcherInvalidatesCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "dense.lic")
	if err := os.WriteFile(path, []byte("TYPE=NODE\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := solver.NewProbeCache()
	cache.MarkAvailable()

	w, err := WatchLicense(path, cache, nil)
	if err != nil {
		t.Fatalf("WatchLicense() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("TYPE=TOKEN\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for cache.KnownAvailable() {
		select {
		case <-deadline:
			t.Fatalf("probe cache still positive after license file change")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestLicenseWatcherIgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "dense.lic")
	if err := os.WriteFile(path, []byte("TYPE=NODE\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := solver.NewProbeCache()
	cache.MarkAvailable()

	w, err := WatchLicense(path, cache, nil)
	if err != nil {
		t.Fatalf("WatchLicense() error = %v", err)
	}
	defer w.Close()

	// A change to an unrelated file in the same directory must not
	// invalidate the cache.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if !cache.KnownAvailable() {
		t.Errorf("probe cache invalidated by an unrelated file")
	}
}

func TestLicenseWatcherCloseReleasesGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "dense.lic")
	if err := os.WriteFile(path, []byte("TYPE=NODE\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := WatchLicense(path, solver.NewProbeCache(), nil)
	if err != nil {
		t.Fatalf("WatchLicense() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestLicenseWatcherMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "no-such-dir", "dense.lic")
	if _, err := WatchLicense(path, solver.NewProbeCache(), nil); err == nil {
		t.Errorf("WatchLicense() error = nil, want failure for missing directory")
	}
}
