package watcher

import (
	"os"
	"sync"
	"time"

	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

// pendingFile is the per-path stabilization bookkeeping.
type pendingFile struct {
	size       int64
	lastChange time.Time
	firstSeen  time.Time
}

// Gate decides when a file has finished being written. It tracks the
// most recent observed size per path; once the size holds for the quiet
// period and the file is openable, the path is emitted exactly once and
// its tracking cleared. Files that vanish before stabilizing are dropped
// silently.
type Gate struct {
	mu      sync.Mutex
	pending map[string]*pendingFile

	quiet  time.Duration
	maxAge time.Duration
}

func NewGate(quiet, maxAge time.Duration) *Gate {
	return &Gate{
		pending: make(map[string]*pendingFile),
		quiet:   quiet,
		maxAge:  maxAge,
	}
}

// Observe feeds one raw change notification into the gate.
func (g *Gate) Observe(ev pipeline.FileEvent) {
	info, err := os.Stat(ev.Path)
	if err != nil {
		g.mu.Lock()
		delete(g.pending, ev.Path)
		g.mu.Unlock()
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.pending[ev.Path]
	if !ok {
		g.pending[ev.Path] = &pendingFile{
			size:       info.Size(),
			lastChange: ev.DetectedAt,
			firstSeen:  ev.DetectedAt,
		}
		return
	}
	if entry.size != info.Size() {
		entry.size = info.Size()
		entry.lastChange = ev.DetectedAt
	}
}

// Sweep re-samples every pending path and returns the files that
// stabilized. Entries pending longer than maxAge are evicted so the map
// cannot grow without bound when paths vanish without notification.
func (g *Gate) Sweep(now time.Time) []pipeline.ReadyFile {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ready []pipeline.ReadyFile

	for path, entry := range g.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(g.pending, path)
			continue
		}

		if info.Size() != entry.size {
			entry.size = info.Size()
			entry.lastChange = now
			continue
		}

		if now.Sub(entry.firstSeen) > g.maxAge {
			delete(g.pending, path)
			continue
		}

		if now.Sub(entry.lastChange) < g.quiet {
			continue
		}

		if !openable(path) {
			// still locked by a writer, keep waiting
			entry.lastChange = now
			continue
		}

		ready = append(ready, pipeline.ReadyFromInfo(path, info, entry.firstSeen))
		delete(g.pending, path)
	}

	return ready
}

// PendingCount reports how many paths are currently tracked.
func (g *Gate) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// DropUnder clears pending entries below a removed watch root.
func (g *Gate) DropUnder(root string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for path := range g.pending {
		if isUnder(path, root) {
			delete(g.pending, path)
		}
	}
}

// openable probes whether the file can be opened for reading, which
// fails on Windows while a writer still holds the file.
func openable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
