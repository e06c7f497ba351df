package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reconnectAttempts and reconnectInterval bound how long a removed or
// rotated file is polled for before it is given up on.
var (
	reconnectAttempts = 5
	reconnectInterval = time.Second
)

// Event represents a file change detected by the watcher.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher monitors files for changes using OS-level notifications. Bursts of
// changes that arrive within the debounce window are coalesced into a single
// Event carrying the last change seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	Events   chan Event
	paths    []string
	debounce time.Duration
	restored chan string
	logger   *slog.Logger
}

// New creates a Watcher for the given files. A nil logger uses slog.Default().
func New(paths []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		Events:   make(chan Event, 16),
		debounce: debounce,
		restored: make(chan string),
		logger:   logger,
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			logger.Warn("cannot watch file", "path", p, "error", err)
			continue
		}
		w.paths = append(w.paths, p)
	}

	return w, nil
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	var (
		pending Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	arm := func(ev Event) {
		pending = ev
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(w.debounce)
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			switch {
			case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
				// File rotated or deleted: wait for it to come back.
				go w.reconnect(ctx, ev.Name)
				arm(Event{Path: ev.Name, Op: ev.Op})
			case ev.Op&fsnotify.Write != 0, ev.Op&fsnotify.Create != 0:
				arm(Event{Path: ev.Name, Op: ev.Op})
			}
		case path := <-w.restored:
			arm(Event{Path: path, Op: fsnotify.Create})
		case <-fire:
			fire = nil
			select {
			case w.Events <- pending:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Paths returns the list of files currently being watched.
func (w *Watcher) Paths() []string {
	return w.paths
}

// ReWatch adds a path back to the watcher (used after rotation).
func (w *Watcher) ReWatch(path string) error {
	return w.fsw.Add(path)
}

// reconnect polls for a file to reappear after rotation.
func (w *Watcher) reconnect(ctx context.Context, path string) {
	for i := 0; i < reconnectAttempts; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := w.ReWatch(path); err != nil {
			w.logger.Warn("cannot re-watch file", "path", path, "error", err)
			return
		}
		w.logger.Info("reconnected to rotated file", "path", path)
		select {
		case w.restored <- path:
		case <-ctx.Done():
		}
		return
	}
	w.logger.Warn("gave up reconnecting to file", "path", path, "attempts", reconnectAttempts)
}
