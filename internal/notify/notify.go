// Package notify turns filesystem events on watched shader sources into
// wake-up hints for the sync loop.
//
// Polling stays the source of truth: a hint only makes the loop tick early,
// and content hashing still decides whether a module is rewritten. Parent
// directories are watched rather than the files themselves so editors that
// save by rename-and-replace keep producing events.
package notify

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/schaermu/webglsld/internal/logging"
	"github.com/schaermu/webglsld/internal/shader"
)

// Watcher emits a hint whenever a tracked source file changes
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	sources map[string]struct{}
	dirs    []string
	nudges  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates a watcher for the sources of pairs. Start must be called
// before hints are delivered.
func New(pairs []shader.Pair, logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	sources := make(map[string]struct{}, len(pairs))
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range pairs {
		src := filepath.Clean(p.Source)
		sources[src] = struct{}{}

		dir := filepath.Dir(src)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	return &Watcher{
		watcher: watcher,
		logger:  logger,
		sources: sources,
		dirs:    dirs,
		// One pending hint is enough; the next tick reads every source.
		nudges: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}, nil
}

// Start adds the source directories to the watcher and begins delivering
// hints.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.logger.Debug("watching directory for changes", logging.KeyPath, dir)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop closes the underlying watcher and waits for the event loop to exit.
// The nudge channel is left open so a select on it simply never fires.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()

	return nil
}

// Nudges returns the hint channel
func (w *Watcher) Nudges() <-chan struct{} {
	return w.nudges
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.logger.Debug("source changed", logging.KeyPath, event.Name, "op", event.Op.String())
				w.nudge()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", logging.KeyError, err)
		}
	}
}

// relevant reports whether event touches a tracked source
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	_, ok := w.sources[filepath.Clean(event.Name)]
	return ok
}

// nudge delivers a hint without blocking; a pending hint absorbs the new one
func (w *Watcher) nudge() {
	select {
	case w.nudges <- struct{}{}:
	default:
	}
}
