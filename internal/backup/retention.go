package backup

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/manifest"
)

// prune deletes completed run folders older than the retention window,
// along with their manifests. Ages are instant-based, compared against
// the run timestamp encoded in the folder name rather than directory
// ctime, which is unreliable across filesystems.
func (e *Engine) prune(target config.BackupTarget, store *manifest.Store, now time.Time) {
	cutoff := now.Add(-time.Duration(target.RetentionDays) * 24 * time.Hour)

	entries, err := os.ReadDir(target.Destination)
	if err != nil {
		e.log.Warn().Err(err).Str("target", target.Name).Msg("retention: cannot read destination")
		return
	}

	for _, ent := range entries {
		if !ent.IsDir() || !strings.HasPrefix(ent.Name(), runPrefix) {
			continue
		}

		ts := strings.TrimPrefix(ent.Name(), runPrefix)
		runTime, err := time.ParseInLocation(manifest.TimestampLayout, ts, time.Local)
		if err != nil {
			continue // not one of ours
		}

		if !runTime.Before(cutoff) {
			continue
		}

		full := filepath.Join(target.Destination, ent.Name())
		if err := e.fs.RemoveAll(full); err != nil {
			e.log.Warn().Err(err).Str("path", full).Msg("retention: delete failed")
			continue
		}
		if err := store.Remove(ts); err != nil {
			e.log.Warn().Err(err).Str("timestamp", ts).Msg("retention: manifest delete failed")
		}
		e.log.Info().Str("target", target.Name).Str("run", ent.Name()).Msg("retention: pruned expired backup")
	}

	// Manifests can outlive their folders when a run copied nothing, so
	// sweep expired manifests as well.
	timestamps, err := store.Timestamps()
	if err != nil {
		return
	}
	for _, ts := range timestamps {
		runTime, err := time.ParseInLocation(manifest.TimestampLayout, ts, time.Local)
		if err != nil {
			continue
		}
		if runTime.Before(cutoff) {
			_ = store.Remove(ts)
		}
	}
}
