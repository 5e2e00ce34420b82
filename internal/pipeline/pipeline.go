// Package pipeline holds the value types passed between the watcher,
// the rules engine and the organizer.
package pipeline

import (
	"os"
	"path/filepath"
	"time"
)

type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	default:
		return "unknown"
	}
}

// FileEvent is a raw filesystem change notification. Consumed and
// discarded by the stability gate.
type FileEvent struct {
	Path       string
	Kind       EventKind
	DetectedAt time.Time
}

// ReadyFile is a file that passed the stability check. Each
// stabilization episode yields at most one ReadyFile per path.
type ReadyFile struct {
	Path      string
	Size      int64
	Ext       string
	Base      string
	FirstSeen time.Time
}

// ReadyFromInfo builds a ReadyFile from a path and its os.FileInfo.
func ReadyFromInfo(path string, info os.FileInfo, firstSeen time.Time) ReadyFile {
	return ReadyFile{
		Path:      path,
		Size:      info.Size(),
		Ext:       filepath.Ext(path),
		Base:      filepath.Base(path),
		FirstSeen: firstSeen,
	}
}

type OutcomeResult string

const (
	ResultMoved            OutcomeResult = "moved"
	ResultSkippedDuplicate OutcomeResult = "skipped-duplicate"
	ResultRenamedConflict  OutcomeResult = "renamed-conflict"
	ResultFailed           OutcomeResult = "failed"
)

// OrganizeOutcome records what happened to one ReadyFile. Written once,
// immutable after.
type OrganizeOutcome struct {
	Source      string
	Destination string
	Result      OutcomeResult
	Reason      string
}
