// Package engine wires the watcher, rules, organizer, backup and
// scheduler together and exposes the control surface front ends use:
// Start, Stop, Reload and Stats.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Hari-N-2005/FileOps/internal/activity"
	"github.com/Hari-N-2005/FileOps/internal/backup"
	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/fsops"
	"github.com/Hari-N-2005/FileOps/internal/mailbox"
	"github.com/Hari-N-2005/FileOps/internal/organizer"
	"github.com/Hari-N-2005/FileOps/internal/pipeline"
	"github.com/Hari-N-2005/FileOps/internal/rules"
	"github.com/Hari-N-2005/FileOps/internal/scheduler"
	"github.com/Hari-N-2005/FileOps/internal/watcher"
)

// Stats is the snapshot handed to reporting layers.
type Stats struct {
	FilesProcessed     uint64
	FilesMoved         uint64
	FilesFailed        uint64
	PendingFiles       int
	ActiveWatchedPaths int
	ActiveRules        int
	LastActivity       time.Time
}

// Engine is the automation core. The watcher loop and the scheduler
// loop run independently and share only the activity sink and the
// filesystem.
type Engine struct {
	log  zerolog.Logger
	sink *activity.Sink
	fs   fsops.FS

	rules  *rules.Engine
	org    *organizer.Organizer
	backup *backup.Engine
	sched  *scheduler.Scheduler

	reloadBox *mailbox.Mailbox[*config.Config]

	mu      sync.Mutex
	cfg     *config.Config
	watch   *watcher.Watcher
	cancel  context.CancelFunc
	group   *errgroup.Group
	running bool

	processed atomic.Uint64
	moved     atomic.Uint64
	failed    atomic.Uint64
}

func New(cfg *config.Config, sink *activity.Sink, log zerolog.Logger) (*Engine, error) {
	set, err := rules.NewSet(cfg.Rules)
	if err != nil {
		return nil, err
	}

	fs := fsops.New()
	e := &Engine{
		log:       log.With().Str("component", "engine").Logger(),
		sink:      sink,
		fs:        fs,
		cfg:       cfg,
		rules:     rules.NewEngine(set),
		org:       organizer.New(fs, sink, log, cfg.Organize.DuplicatePolicy),
		backup:    backup.New(fs, sink, log),
		reloadBox: mailbox.New[*config.Config](),
	}
	e.sched = scheduler.New(e.backup, log)
	return e, nil
}

// Start brings up the watcher and scheduler loops. Failure to allocate
// the event loop surfaces here; per-path subscription failures only
// degrade that path.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return errors.New("engine already running")
	}

	w, err := watcher.New(e.cfg.Watch, e.sink, e.log)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	if err := w.Start(runCtx, e.cfg.WatchedDirectories); err != nil {
		cancel()
		return err
	}
	if err := e.sched.Start(runCtx, e.cfg.BackupTargets); err != nil {
		cancel()
		return err
	}

	e.watch = w
	e.cancel = cancel
	e.group, _ = errgroup.WithContext(runCtx)
	e.group.Go(func() error {
		e.dispatchLoop(runCtx)
		return nil
	})

	e.running = true
	e.sink.Record(activity.CategoryEngineStarted, activity.OutcomeSuccess, "automation engine started")
	return nil
}

// Stop halts both loops. Any in-flight move or backup copy finishes
// before teardown: cancellation is only observed between files.
// The mutex is released before waiting so a reload being applied on the
// dispatch goroutine can still take it and drain.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	group := e.group
	watch := e.watch
	e.mu.Unlock()

	cancel()
	_ = group.Wait()
	watch.Wait()
	e.sched.Stop()

	e.sink.Record(activity.CategoryEngineStopped, activity.OutcomeSuccess, "automation engine stopped")
}

// Reload queues a validated configuration for the dispatch loop to
// install. Latest wins if reloads arrive faster than they apply.
func (e *Engine) Reload(cfg *config.Config) {
	e.reloadBox.Put(cfg)
}

// RunBackups executes every enabled target once, outside the schedule.
func (e *Engine) RunBackups(ctx context.Context) error {
	e.mu.Lock()
	targets := e.cfg.BackupTargets
	e.mu.Unlock()

	var firstErr error
	for _, t := range targets {
		if !t.Enabled {
			continue
		}
		if _, err := e.backup.Run(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns a point-in-time snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		FilesProcessed: e.processed.Load(),
		FilesMoved:     e.moved.Load(),
		FilesFailed:    e.failed.Load(),
		ActiveRules:    e.rules.Current().EnabledCount(),
		LastActivity:   e.sink.LastActivity(),
	}

	e.mu.Lock()
	if e.watch != nil {
		s.ActiveWatchedPaths = e.watch.ActivePaths()
		s.PendingFiles = e.watch.PendingCount()
	}
	e.mu.Unlock()
	return s
}

func (e *Engine) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case rf := <-e.watch.Ready():
			e.handleReady(ctx, rf)

		case <-e.reloadBox.Ready():
			if cfg, ok := e.reloadBox.TryTake(); ok {
				e.applyReload(ctx, cfg)
			}
		}
	}
}

func (e *Engine) handleReady(ctx context.Context, rf pipeline.ReadyFile) {
	e.processed.Add(1)

	dest, ruleName, ok := e.rules.Evaluate(rf)
	if !ok {
		// unmatched files are not an error; leave them where they are
		e.log.Debug().Str("file", rf.Base).Msg("no matching rule")
		return
	}

	e.log.Debug().Str("file", rf.Base).Str("rule", ruleName).Str("dest", dest).Msg("rule matched")

	outcome := e.org.Organize(ctx, rf, dest)
	switch outcome.Result {
	case pipeline.ResultMoved, pipeline.ResultRenamedConflict:
		e.moved.Add(1)
	case pipeline.ResultFailed:
		e.failed.Add(1)
	}
}

// applyReload installs a new configuration snapshot: rules swap
// atomically, the watcher diffs its path set and the scheduler is
// rebuilt. In-flight evaluations never see a partially-updated state.
func (e *Engine) applyReload(ctx context.Context, cfg *config.Config) {
	set, err := rules.NewSet(cfg.Rules)
	if err != nil {
		e.sink.Recordf(activity.CategoryRules, activity.OutcomeFailed, "reload rejected: %v", err)
		return
	}

	e.rules.Swap(set)

	// safe: applyReload runs on the dispatch goroutine, the only reader
	e.org = organizer.New(e.fs, e.sink, e.log, cfg.Organize.DuplicatePolicy)

	e.mu.Lock()
	e.cfg = cfg
	w := e.watch
	e.mu.Unlock()

	if w != nil {
		w.Reload(cfg.WatchedDirectories)
	}
	if err := e.sched.Reload(ctx, cfg.BackupTargets); err != nil {
		e.sink.Recordf(activity.CategoryRules, activity.OutcomeFailed, "schedule reload: %v", err)
	}

	e.sink.Recordf(activity.CategoryRules, activity.OutcomeSuccess,
		"configuration reloaded: %d rules (%d enabled), %d watched paths",
		set.Len(), set.EnabledCount(), len(cfg.WatchedDirectories))
}
