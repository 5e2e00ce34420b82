// Package manifest persists the file-identity snapshot captured by each
// backup run. The latest manifest is the sole source of truth for the
// next incremental diff, and it survives process restarts.
package manifest

import (
	"time"
)

// TimestampLayout names backup runs: backup_20060102_150405.
const TimestampLayout = "20060102_150405"

// Entry records one file's identity as of a backup run.
type Entry struct {
	Path        string    `json:"path"` // relative, forward slashes
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Fingerprint string    `json:"fingerprint"`

	// StoredIn is the run timestamp of the backup folder that actually
	// holds this file's copy. Unchanged files carry the value forward.
	StoredIn string `json:"stored_in"`
}

// Manifest is the full snapshot for one completed run.
type Manifest struct {
	Target    string           `json:"target"`
	Timestamp string           `json:"timestamp"` // TimestampLayout
	Mode      string           `json:"mode"`
	CreatedAt time.Time        `json:"created_at"`
	Files     map[string]Entry `json:"files"` // keyed by Entry.Path
}

func New(target, timestamp, mode string) *Manifest {
	return &Manifest{
		Target:    target,
		Timestamp: timestamp,
		Mode:      mode,
		CreatedAt: time.Now(),
		Files:     make(map[string]Entry),
	}
}
