// Package watcher monitors the configured directories and emits ready
// files once they pass the stability gate.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/Hari-N-2005/FileOps/internal/activity"
	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/fsprobe"
	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

const readyBuffer = 64

// Watcher subscribes to filesystem notifications for every enabled
// watched path, feeds raw events through the stability gate and
// delivers ready files on the Ready channel. Paths where fsnotify is
// unreliable fall back to a polling scan.
type Watcher struct {
	cfg  config.WatchConfig
	sink *activity.Sink
	log  zerolog.Logger
	gate *Gate

	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	notifyRoots map[string]struct{}
	pollRoots   map[string]struct{}
	pollSeen    map[string]time.Time
	primed      map[string]bool

	ready chan pipeline.ReadyFile
	wg    sync.WaitGroup
}

func New(cfg config.WatchConfig, sink *activity.Sink, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:         cfg,
		sink:        sink,
		log:         log.With().Str("component", "watcher").Logger(),
		gate:        NewGate(cfg.QuietPeriod, cfg.MaxPendingAge),
		fsw:         fsw,
		notifyRoots: make(map[string]struct{}),
		pollRoots:   make(map[string]struct{}),
		pollSeen:    make(map[string]time.Time),
		primed:      make(map[string]bool),
		ready:       make(chan pipeline.ReadyFile, readyBuffer),
	}, nil
}

// Ready delivers stabilized files. Each stabilization episode yields at
// most one entry per path.
func (w *Watcher) Ready() <-chan pipeline.ReadyFile {
	return w.ready
}

// Start subscribes the enabled paths and launches the event, sweep and
// poll loops. A path that cannot be subscribed degrades with a recorded
// failure; the remaining paths keep working.
func (w *Watcher) Start(ctx context.Context, paths []config.WatchedPath) error {
	for _, wp := range paths {
		if wp.Enabled {
			w.subscribe(wp.Path)
		}
	}

	w.wg.Add(3)
	go w.eventLoop(ctx)
	go w.sweepLoop(ctx)
	go w.pollLoop(ctx)

	return nil
}

// Wait blocks until all loops have exited after context cancellation.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// ActivePaths reports how many watch roots are currently subscribed.
func (w *Watcher) ActivePaths() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.notifyRoots) + len(w.pollRoots)
}

// PendingCount exposes the gate's tracked-path count for stats.
func (w *Watcher) PendingCount() int {
	return w.gate.PendingCount()
}

// Reload diffs the old and new enabled path sets: removed roots are
// unsubscribed (their pending stabilization state dropped), added roots
// subscribed, unchanged roots keep their in-flight state.
func (w *Watcher) Reload(paths []config.WatchedPath) {
	next := make(map[string]struct{})
	for _, wp := range paths {
		if wp.Enabled {
			next[filepath.Clean(wp.Path)] = struct{}{}
		}
	}

	w.mu.Lock()
	for root := range w.notifyRoots {
		if _, keep := next[root]; !keep {
			w.unsubscribeLocked(root)
		}
	}
	for root := range w.pollRoots {
		if _, keep := next[root]; !keep {
			w.unsubscribeLocked(root)
		}
	}

	var added []string
	for root := range next {
		if _, ok := w.notifyRoots[root]; ok {
			continue
		}
		if _, ok := w.pollRoots[root]; ok {
			continue
		}
		added = append(added, root)
	}
	w.mu.Unlock()

	for _, root := range added {
		w.subscribe(root)
	}
}

// subscribe resolves the watch mode and registers the root. The mode
// probe does real filesystem round-trips, so it runs before the mutex
// is taken; only the root-map updates hold it.
func (w *Watcher) subscribe(root string) {
	root = filepath.Clean(root)

	mode := w.cfg.Mode
	if mode == "auto" {
		res := fsprobe.Probe(root)
		if res.FsnotifySupported {
			mode = "fsnotify"
		} else {
			w.log.Warn().Str("path", root).Str("reason", res.Reason).Msg("fsnotify unreliable, polling instead")
			mode = "poll"
		}
	}

	switch mode {
	case "poll":
		if _, err := os.Stat(root); err != nil {
			w.sink.Recordf(activity.CategoryWatch, activity.OutcomeFailed, "cannot watch %s: %v", root, err)
			return
		}
		w.mu.Lock()
		w.pollRoots[root] = struct{}{}
		w.mu.Unlock()
		w.sink.Recordf(activity.CategoryWatch, activity.OutcomeSuccess, "polling %s", root)

	default: // fsnotify
		if err := w.addRecursive(root); err != nil {
			w.sink.Recordf(activity.CategoryWatch, activity.OutcomeFailed, "cannot watch %s: %v", root, err)
			return
		}
		w.mu.Lock()
		w.notifyRoots[root] = struct{}{}
		w.mu.Unlock()
		w.sink.Recordf(activity.CategoryWatch, activity.OutcomeSuccess, "watching %s", root)
	}
}

func (w *Watcher) unsubscribeLocked(root string) {
	if _, ok := w.pollRoots[root]; ok {
		delete(w.pollRoots, root)
		for path := range w.pollSeen {
			if isUnder(path, root) {
				delete(w.pollSeen, path)
			}
		}
		delete(w.primed, root)
	}

	if _, ok := w.notifyRoots[root]; ok {
		delete(w.notifyRoots, root)
		for _, watched := range w.fsw.WatchList() {
			if watched == root || isUnder(watched, root) {
				_ = w.fsw.Remove(watched)
			}
		}
	}

	w.gate.DropUnder(root)
	w.log.Info().Str("path", root).Msg("watch removed")
}

// addRecursive subscribes a directory and all its subdirectories.
// Inaccessible subtrees are skipped rather than failing the root.
func (w *Watcher) addRecursive(root string) error {
	if err := w.fsw.Add(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("subdirectory not watched")
		}
		return nil
	})
}

func isUnder(path, root string) bool {
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
