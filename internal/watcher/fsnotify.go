package watcher

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

// eventLoop drains fsnotify and feeds the stability gate. A Create for
// a directory under a watched root subscribes it on the fly so nested
// downloads keep getting noticed.
func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return // already gone, nothing to stabilize
	}

	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("path", ev.Name).Msg("new subdirectory not watched")
			}
		}
		return
	}

	if shouldIgnore(ev.Name) {
		return
	}

	kind := pipeline.EventModified
	if ev.Op&fsnotify.Create != 0 {
		kind = pipeline.EventCreated
	}

	w.log.Debug().Str("path", ev.Name).Stringer("kind", kind).Msg("event")
	w.gate.Observe(pipeline.FileEvent{Path: ev.Name, Kind: kind, DetectedAt: time.Now()})
}

// sweepLoop periodically re-samples pending files and forwards the ones
// that stabilized.
func (w *Watcher) sweepLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, rf := range w.gate.Sweep(now) {
				select {
				case w.ready <- rf:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
