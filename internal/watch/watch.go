// Package watch re-runs a stage whenever new pages land in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/spreads/internal/adapters/imaging"
	"github.com/bft-labs/spreads/pkg/log"
)

// Func is invoked once at start and again after every settled burst of
// page changes.
type Func func(ctx context.Context) error

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   log.Logger

	mu    sync.Mutex
	timer *time.Timer
	fire  chan struct{}
}

// New creates a watcher for dir. Changes are coalesced until no page event
// arrived for debounce.
func New(dir string, debounce time.Duration, logger log.Logger) *Watcher {
	if logger == nil {
		logger = log.NewNop()
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		fire:     make(chan struct{}, 1),
	}
}

// Run calls fn once, then again whenever pages change, until ctx is done.
// Calls never overlap. Errors from fn are logged and do not stop the
// watcher.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer w.stopTimer()

	w.logger.Info("watching for new pages", log.String("dir", w.dir), log.Duration("debounce", w.debounce))
	w.invoke(ctx, fn)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("page changed", log.String("file", filepath.Base(event.Name)), log.String("op", event.Op.String()))
			w.schedule()

		case <-w.fire:
			w.invoke(ctx, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) invoke(ctx context.Context, fn Func) {
	if ctx.Err() != nil {
		return
	}
	if err := fn(ctx); err != nil {
		w.logger.Warn("stage run failed", log.Err(err))
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return !strings.HasPrefix(name, ".") && imaging.IsPageFile(name)
}
