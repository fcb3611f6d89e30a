// Package watcher reloads the vector index when another process
// re-persists it. Persistence swaps the whole index directory into place,
// so the parent directory is watched for the new directory appearing.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/samarth/internal/logger"
)

// DefaultDebounce collapses the burst of events produced by one swap.
const DefaultDebounce = 500 * time.Millisecond

// Reloader re-reads the persisted index.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher triggers a Reload after the index directory is replaced.
type Watcher struct {
	dir      string
	reloader Reloader
	debounce time.Duration
}

// New creates a watcher for the given index directory.
func New(indexDir string, reloader Reloader) *Watcher {
	return &Watcher{
		dir:      filepath.Clean(indexDir),
		reloader: reloader,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the quiet period before reloading.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches until ctx is cancelled. It returns an error only when the
// watch cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	parent := filepath.Dir(w.dir)
	if err := fw.Add(parent); err != nil {
		return fmt.Errorf("watch %s: %w", parent, err)
	}
	logger.Info("watching %s for index changes", w.dir)

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(w.debounce, func() {
			defer wg.Done()
			if err := w.reloader.Reload(ctx); err != nil {
				logger.Error("reload index: %v", err)
				return
			}
			logger.Info("reloaded index from %s", w.dir)
		})
	}

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Debug("index watcher event: %s", event)
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("index watcher: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// relevant reports whether an event means the index directory was swapped in.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.dir {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
