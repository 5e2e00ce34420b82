package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

// pollLoop scans polling-fallback roots on a fixed interval. The first
// scan of a root only primes the seen map, so files that predate the
// watch are left alone; anything appearing or changing afterwards flows
// into the stability gate like an fsnotify event would.
func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scanPollRoots()
		}
	}
}

func (w *Watcher) scanPollRoots() {
	w.mu.Lock()
	roots := make([]string, 0, len(w.pollRoots))
	for root := range w.pollRoots {
		roots = append(roots, root)
	}
	w.mu.Unlock()

	for _, root := range roots {
		w.scanRoot(root)
	}
}

func (w *Watcher) scanRoot(root string) {
	w.mu.Lock()
	priming := !w.primed[root]
	w.mu.Unlock()

	now := time.Now()
	visited := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible subtrees
		}
		if d.IsDir() || shouldIgnore(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		visited[path] = struct{}{}

		w.mu.Lock()
		last, seen := w.pollSeen[path]
		w.pollSeen[path] = info.ModTime()
		w.mu.Unlock()

		if priming {
			return nil
		}

		if !seen {
			w.gate.Observe(pipeline.FileEvent{Path: path, Kind: pipeline.EventCreated, DetectedAt: now})
		} else if info.ModTime().After(last) {
			w.gate.Observe(pipeline.FileEvent{Path: path, Kind: pipeline.EventModified, DetectedAt: now})
		}
		return nil
	})
	if err != nil {
		w.log.Warn().Err(err).Str("path", root).Msg("poll scan failed")
	}

	// Forget paths the scan no longer found. A file that later
	// re-appears under the same name then registers as new, whatever
	// its mtime, and the map cannot grow with directory churn.
	w.mu.Lock()
	for path := range w.pollSeen {
		if !isUnder(path, root) {
			continue
		}
		if _, ok := visited[path]; !ok {
			delete(w.pollSeen, path)
		}
	}
	w.primed[root] = true
	w.mu.Unlock()
}
