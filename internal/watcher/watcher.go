// Package watcher regenerates assets when their inputs change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// RebuildFunc regenerates assets. changed holds the cleaned paths that
// triggered the rebuild, sorted.
type RebuildFunc func(ctx context.Context, changed []string) error

// Service watches individual files and whole directories and runs one
// rebuild per burst of changes.
type Service struct {
	rebuild RebuildFunc
	logger  *slog.Logger

	debounce time.Duration
	limiter  *rate.Limiter

	mu    sync.Mutex
	files map[string]bool // watched file -> true
	dirs  map[string]bool // watched directory -> true

	// Directory events before quietUntil come from the previous rebuild's
	// own writes and are dropped.
	quietUntil time.Time
}

// NewService creates a watcher. Rebuilds start no sooner than debounce after
// the last change and no more often than once per minInterval.
func NewService(rebuild RebuildFunc, logger *slog.Logger, debounce, minInterval time.Duration) *Service {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Service{
		rebuild:  rebuild,
		logger:   logger.With("component", "fs-watcher"),
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
}

// SetDebounce changes the debounce interval. It may be called from the
// rebuild func to apply a reloaded config.
func (s *Service) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// SetMinInterval changes the minimum spacing between rebuilds.
func (s *Service) SetMinInterval(d time.Duration) {
	if d <= 0 {
		s.limiter.SetLimit(rate.Inf)
		return
	}
	s.limiter.SetLimit(rate.Every(d))
}

func (s *Service) debounceInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debounce
}

// WatchFile adds a single file. Its parent directory is watched so that
// editors that save by rename are still seen.
func (s *Service) WatchFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filepath.Clean(path)] = true
}

// WatchDir adds every entry directly inside dir.
func (s *Service) WatchDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[filepath.Clean(dir)] = true
}

// Start blocks until ctx is canceled. It returns an error only when no
// fsnotify watcher could be created or no path could be watched.
func (s *Service) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	if n := s.addWatches(w); n == 0 {
		return errors.New("no watchable paths")
	}
	s.logger.Info("filesystem watcher starting")

	// Debounce timer for coalescing change events into a single rebuild.
	// Starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("filesystem watcher stopping")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if s.relevant(ev) {
				pending[filepath.Clean(ev.Name)] = true
				resetTimer(debounceTimer, s.debounceInterval())
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-debounceTimer.C:
			if len(pending) == 0 {
				continue
			}
			r := s.limiter.Reserve()
			if d := r.Delay(); d > 0 {
				r.Cancel()
				s.logger.Debug("rebuild rate limited", "delay", d)
				resetTimer(debounceTimer, d)
				continue
			}

			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			s.logger.Info("debounce elapsed, rebuilding", "changed", changed)
			if err := s.rebuild(ctx, changed); err != nil {
				s.logger.Error("rebuild triggered by fs watcher failed", "error", err)
			}

			quiet := s.debounceInterval()
			s.mu.Lock()
			s.quietUntil = time.Now().Add(quiet)
			s.mu.Unlock()
		}
	}
}

// addWatches registers every directory needed and returns how many were
// added.
func (s *Service) addWatches(w *fsnotify.Watcher) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool)
	for f := range s.files {
		wanted[filepath.Dir(f)] = true
	}
	for d := range s.dirs {
		wanted[d] = true
	}

	added := 0
	for dir := range wanted {
		if err := w.Add(dir); err != nil {
			s.logger.Warn("path not watchable", "path", dir, "error", err)
			continue
		}
		s.logger.Info("watching path", "path", dir)
		added++
	}
	return added
}

// relevant reports whether ev should schedule a rebuild. Chmod-only events
// never do.
func (s *Service) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Clean(ev.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.files[name] {
		return true
	}
	if s.dirs[filepath.Dir(name)] {
		return time.Now().After(s.quietUntil)
	}
	return false
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
