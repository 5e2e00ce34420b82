// Package backup runs full and incremental backups of configured source
// trees into timestamped run folders, tracks them through manifests and
// prunes expired runs.
package backup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/Hari-N-2005/FileOps/internal/activity"
	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/fingerprint"
	"github.com/Hari-N-2005/FileOps/internal/fsops"
	"github.com/Hari-N-2005/FileOps/internal/manifest"
)

// runPrefix names run folders under the target destination:
// backup_20060102_150405.
const runPrefix = "backup_"

type RunResult string

const (
	ResultSuccess RunResult = "success"
	ResultPartial RunResult = "partial"
	ResultFailed  RunResult = "failed"
)

// Run is the finalized record of one backup invocation.
type Run struct {
	Target  string
	Mode    string
	Start   time.Time
	End     time.Time
	Copied  int
	Skipped int
	Deleted int
	Failed  int
	Result  RunResult
}

// Engine executes backup runs. Safe for use from the scheduler loop
// while the organizer loop touches the same trees: a file vanishing
// mid-read is an ordinary per-file failure, never engine-fatal.
type Engine struct {
	fs   fsops.FS
	sink *activity.Sink
	log  zerolog.Logger
}

func New(fs fsops.FS, sink *activity.Sink, log zerolog.Logger) *Engine {
	return &Engine{
		fs:   fs,
		sink: sink,
		log:  log.With().Str("component", "backup").Logger(),
	}
}

// Run performs one backup of target and returns the finalized run
// record. The manifest is written only after all copying is done, so a
// crash mid-copy never leaves a manifest claiming uncopied files.
func (e *Engine) Run(ctx context.Context, target config.BackupTarget) (*Run, error) {
	start := time.Now()
	ts := start.Format(manifest.TimestampLayout)
	run := &Run{Target: target.Name, Mode: target.Mode, Start: start}

	store := manifest.NewStore(target.Destination)

	prior, mode := e.loadPrior(store, target)
	run.Mode = mode

	category := activity.CategoryBackupFull
	if mode == "incremental" {
		category = activity.CategoryBackupIncremental
	}

	// A target whose sources are all missing fails outright with no
	// manifest change. Individually missing roots degrade below.
	if !anySourceExists(target.Sources) {
		run.Result = ResultFailed
		run.End = time.Now()
		e.sink.Recordf(category, activity.OutcomeFailed, "target %s: no source directory exists", target.Name)
		return run, errors.Errorf("target %s: no source directory exists", target.Name)
	}

	runDir := filepath.Join(target.Destination, runPrefix+ts)
	next := manifest.New(target.Name, ts, mode)
	walked := make(map[string]struct{})

	for _, src := range target.Sources {
		if err := e.backupSource(ctx, src, runDir, ts, prior, next, walked, run); err != nil {
			e.log.Warn().Err(err).Str("source", src).Msg("source skipped")
			run.Failed++
		}
	}

	// Files in the prior manifest but absent from the tree are dropped
	// from tracking. A file the walk did reach but failed to copy still
	// exists, so it does not count as deleted.
	if prior != nil {
		for path := range prior.Files {
			if _, ok := walked[path]; !ok {
				run.Deleted++
			}
		}
	}

	if err := store.Save(next); err != nil {
		run.Result = ResultFailed
		run.End = time.Now()
		e.sink.Recordf(category, activity.OutcomeFailed, "target %s: %v", target.Name, err)
		return run, err
	}

	run.Result = ResultSuccess
	if run.Failed > 0 {
		run.Result = ResultPartial
	}
	run.End = time.Now()

	e.sink.Recordf(category, activity.OutcomeSuccess,
		"target %s -> %s | copied: %d, skipped: %d, deleted: %d, failed: %d",
		target.Name, runDir, run.Copied, run.Skipped, run.Deleted, run.Failed)

	// Pruning only after a fully successful run, so a bad run never
	// costs the last good backup.
	if run.Result == ResultSuccess && target.RetentionDays > 0 {
		e.prune(target, store, time.Now())
	}

	return run, nil
}

// loadPrior resolves the manifest to diff against. Missing or corrupt
// manifests degrade the run to full-mode semantics.
func (e *Engine) loadPrior(store *manifest.Store, target config.BackupTarget) (*manifest.Manifest, string) {
	if target.Mode != "incremental" {
		return nil, "full"
	}

	prior, err := store.Latest(target.Name)
	if err != nil {
		e.log.Warn().Err(err).Str("target", target.Name).Msg("manifest unreadable, degrading to full")
		return nil, "full"
	}
	if prior == nil {
		e.log.Info().Str("target", target.Name).Msg("no prior manifest, first run is full")
		return nil, "full"
	}
	return prior, "incremental"
}

// backupSource walks one source root. Each root lands in its own
// subfolder of the run directory, named after the root's base name.
func (e *Engine) backupSource(ctx context.Context, src, runDir, ts string, prior, next *manifest.Manifest, walked map[string]struct{}, run *Run) error {
	if _, err := os.Stat(src); err != nil {
		return errors.Errorf("source %s: %w", src, err)
	}

	base := filepath.Base(src)

	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// unreadable subtree: record and keep walking the rest
			run.Failed++
			e.log.Warn().Err(err).Str("path", path).Msg("walk error")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			run.Failed++
			return nil
		}
		key := filepath.ToSlash(filepath.Join(base, rel))
		walked[key] = struct{}{}

		if err := e.backupFile(ctx, path, key, runDir, ts, prior, next, run); err != nil {
			run.Failed++
			e.log.Warn().Err(err).Str("path", path).Msg("file not backed up")
		}
		return nil
	})
}

func (e *Engine) backupFile(ctx context.Context, path, key, runDir, ts string, prior, next *manifest.Manifest, run *Run) error {
	info, err := e.fs.Stat(path)
	if err != nil {
		return errors.Errorf("stat %s: %w", path, err)
	}

	if prior != nil {
		if entry, ok := prior.Files[key]; ok {
			unchanged, sum := isUnchanged(path, info, entry)
			if unchanged {
				// carried forward, pointing at the prior stored copy
				entry.Size = info.Size
				entry.ModTime = info.MTime
				next.Files[key] = entry
				run.Skipped++
				return nil
			}
			// reuse the fingerprint computed during comparison
			if sum != "" {
				return e.copyInto(ctx, path, key, sum, runDir, ts, next, run)
			}
		}
	}

	sum, err := fingerprint.File(path)
	if err != nil {
		return errors.Errorf("fingerprinting %s: %w", path, err)
	}
	return e.copyInto(ctx, path, key, sum, runDir, ts, next, run)
}

// isUnchanged compares a live file against its prior manifest entry.
// Size+mtime equality is the fast path; when they differ the content
// fingerprint has the final say (a touch without a content change is
// still unchanged). Returns the computed fingerprint when one was taken.
func isUnchanged(path string, info fsops.FileInfo, entry manifest.Entry) (bool, string) {
	if info.Size == entry.Size && info.MTime.Equal(entry.ModTime) {
		return true, ""
	}
	sum, err := fingerprint.File(path)
	if err != nil {
		return false, ""
	}
	return sum == entry.Fingerprint, sum
}

func (e *Engine) copyInto(ctx context.Context, path, key, sum, runDir, ts string, next *manifest.Manifest, run *Run) error {
	dst := filepath.Join(runDir, filepath.FromSlash(key))
	if err := e.fs.MkdirAll(filepath.Dir(dst)); err != nil {
		return errors.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := e.fs.CopyFile(ctx, path, dst); err != nil {
		return errors.Errorf("copying %s: %w", path, err)
	}

	info, err := e.fs.Stat(path)
	if err != nil {
		return errors.Errorf("stat after copy %s: %w", path, err)
	}

	next.Files[key] = manifest.Entry{
		Path:        key,
		Size:        info.Size,
		ModTime:     info.MTime,
		Fingerprint: sum,
		StoredIn:    ts,
	}
	run.Copied++
	return nil
}

func anySourceExists(sources []string) bool {
	for _, src := range sources {
		if st, err := os.Stat(src); err == nil && st.IsDir() {
			return true
		}
	}
	return false
}
