package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/solvenv/solvenv/pkg/solver"
	"github.com/solvenv/solvenv/pkg/telemetry"
)

// LicenseWatcher invalidates a probe cache when the license file changes
// out from under the process. License servers rewrite or replace the
// file, so the parent directory is watched and events are filtered by
// name.
type LicenseWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	cache   *solver.ProbeCache
	log     *telemetry.Logger
	done    chan struct{}
}

// WatchLicense starts watching the license file at path. Close releases
// the watcher and its goroutine.
func WatchLicense(path string, cache *solver.ProbeCache, log *telemetry.Logger) (*LicenseWatcher, error) {
	if log == nil {
		log = telemetry.Discard()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch license directory: %w", err)
	}

	w := &LicenseWatcher{
		watcher: watcher,
		path:    filepath.Clean(path),
		cache:   cache,
		log:     log.WithField("license_path", path),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *LicenseWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.cache.Invalidate()
			w.log.WithField("op", event.Op.String()).Debug("license file changed, probe cache invalidated")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("license watcher error")
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *LicenseWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
