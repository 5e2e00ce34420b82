// Package organizer relocates ready files into their rule destination
// without data loss or silent overwrite.
package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/Hari-N-2005/FileOps/internal/activity"
	"github.com/Hari-N-2005/FileOps/internal/fingerprint"
	"github.com/Hari-N-2005/FileOps/internal/fsops"
	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

// maxConflictSuffix bounds the "name (N).ext" counter search.
const maxConflictSuffix = 1000

// Organizer executes conflict-safe moves and records every outcome
// exactly once on the activity sink.
type Organizer struct {
	fs   fsops.FS
	sink *activity.Sink
	log  zerolog.Logger

	// keepDuplicates leaves a content-identical source in place instead
	// of deleting it.
	keepDuplicates bool
}

func New(fs fsops.FS, sink *activity.Sink, log zerolog.Logger, duplicatePolicy string) *Organizer {
	return &Organizer{
		fs:             fs,
		sink:           sink,
		log:            log.With().Str("component", "organizer").Logger(),
		keepDuplicates: duplicatePolicy == "keep",
	}
}

// Organize moves file into destDir. On any failure the source file is
// left untouched so nothing is lost.
func (o *Organizer) Organize(ctx context.Context, file pipeline.ReadyFile, destDir string) pipeline.OrganizeOutcome {
	outcome := o.organize(ctx, file, destDir)
	o.record(outcome)
	return outcome
}

func (o *Organizer) organize(ctx context.Context, file pipeline.ReadyFile, destDir string) pipeline.OrganizeOutcome {
	if err := o.fs.MkdirAll(destDir); err != nil {
		return failed(file.Path, "", errors.Errorf("creating destination: %w", err))
	}

	target := filepath.Join(destDir, file.Base)

	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := o.fs.Move(ctx, file.Path, target); err != nil {
			return failed(file.Path, target, err)
		}
		return pipeline.OrganizeOutcome{Source: file.Path, Destination: target, Result: pipeline.ResultMoved}
	}

	// Something already sits at the target path. Compare contents to
	// tell a redundant duplicate from a genuine name conflict.
	srcSum, err := fingerprint.File(file.Path)
	if err != nil {
		return failed(file.Path, target, err)
	}
	dstSum, err := fingerprint.File(target)
	if err != nil {
		return failed(file.Path, target, err)
	}

	if srcSum == dstSum {
		reason := "identical content already at destination"
		if !o.keepDuplicates {
			if err := o.fs.Remove(file.Path); err != nil {
				return failed(file.Path, target, errors.Errorf("removing duplicate source: %w", err))
			}
			reason = "duplicate source removed"
		}
		return pipeline.OrganizeOutcome{
			Source:      file.Path,
			Destination: target,
			Result:      pipeline.ResultSkippedDuplicate,
			Reason:      reason,
		}
	}

	renamed, err := nextFreeName(target)
	if err != nil {
		return failed(file.Path, target, err)
	}
	if err := o.fs.Move(ctx, file.Path, renamed); err != nil {
		return failed(file.Path, renamed, err)
	}
	return pipeline.OrganizeOutcome{
		Source:      file.Path,
		Destination: renamed,
		Result:      pipeline.ResultRenamedConflict,
		Reason:      fmt.Sprintf("name conflict with %s", filepath.Base(target)),
	}
}

// nextFreeName appends " (N)" before the extension until an unused name
// is found: report.pdf → report (1).pdf, report (2).pdf, ...
func nextFreeName(target string) (string, error) {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(filepath.Base(target), ext)

	for n := 1; n <= maxConflictSuffix; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", errors.Errorf("no free name for %s after %d attempts", target, maxConflictSuffix)
}

func failed(src, dst string, err error) pipeline.OrganizeOutcome {
	return pipeline.OrganizeOutcome{
		Source:      src,
		Destination: dst,
		Result:      pipeline.ResultFailed,
		Reason:      err.Error(),
	}
}

func (o *Organizer) record(out pipeline.OrganizeOutcome) {
	if out.Result == pipeline.ResultFailed {
		o.sink.Recordf(activity.CategoryMove, activity.OutcomeFailed, "%s: %s", out.Source, out.Reason)
		return
	}
	o.sink.Recordf(activity.CategoryMove, activity.OutcomeSuccess, "%s -> %s (%s)", out.Source, out.Destination, out.Result)
}
