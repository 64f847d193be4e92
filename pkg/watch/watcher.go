package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cubahno/oascombine/pkg/config"
	"github.com/fsnotify/fsnotify"
)

// Watcher owns the fsnotify handle and the merge worker.
type Watcher struct {
	dir      string
	suffix   string
	exclude  string
	debounce time.Duration

	runner  Runner
	watcher *fsnotify.Watcher

	// holds at most one pending merge request
	trigger  chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
	state    atomic.Int32

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// New creates a Watcher for the fragments directory of cfg.
// The directory is created if it does not exist.
func New(cfg *config.Config, runner Runner) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		dir:      cfg.Paths.Fragments,
		suffix:   cfg.Watch.Suffix,
		exclude:  cfg.Watch.ExcludePattern(),
		debounce: cfg.Watch.Debounce,
		runner:   runner,
		watcher:  watcher,
		trigger:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("creating %s: %w", w.dir, err)
	}

	if err := w.addRecursive(w.dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	slog.Info("File watcher initialized", "dir", w.dir)

	return w, nil
}

// Run merges once, then merges again after every qualifying change until
// ctx is cancelled or Stop is called. It returns nil in both cases.
func (w *Watcher) Run(ctx context.Context) error {
	go w.work()

	// initial merge
	w.notify()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return nil

		case <-w.stopChan:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

// Stop closes the watch handle. A merge already running is left to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.state.Store(int32(StateStopped))

		w.debounceMu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
			w.debounceTimer = nil
		}
		w.debounceMu.Unlock()

		close(w.stopChan)
		_ = w.watcher.Close()

		slog.Info("Watcher stopped")
	})
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// Matches reports whether a change to path should trigger a merge.
func (w *Watcher) Matches(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, w.suffix) {
		return false
	}
	return w.exclude == "" || !strings.Contains(name, w.exclude)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("Failed to watch directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	if !w.Matches(event.Name) {
		slog.Debug("Ignoring event", "path", event.Name, "op", event.Op.String())
		return
	}

	slog.Info("Change detected", "path", event.Name, "op", event.Op.String())
	w.schedule()
}

// schedule requests a merge, after the debounce delay when one is set.
// Multiple rapid changes within the delay trigger one merge.
func (w *Watcher) schedule() {
	if w.debounce <= 0 {
		w.notify()
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.State() == StateStopped {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.notify)
}

// notify queues a merge unless one is already pending.
func (w *Watcher) notify() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Watcher) work() {
	for {
		select {
		case <-w.stopChan:
			return
		case <-w.trigger:
			w.merge()
		}
	}
}

func (w *Watcher) merge() {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StateMerging)) {
		return
	}
	defer w.state.CompareAndSwap(int32(StateMerging), int32(StateIdle))

	slog.Info("Combining documents...")
	if err := w.runner.Run(context.Background()); err != nil {
		slog.Error("Combine failed, continuing to watch", "error", err)
		return
	}
	slog.Info("Documents combined, continuing to watch")
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// directory removed while walking
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !entry.IsDir() {
			return nil
		}

		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		slog.Debug("Watching directory", "dir", path)
		return nil
	})
}
