// Package fsops defines the filesystem abstraction used by the
// organizer and the backup engine. It provides the FS interface and the
// FileInfo type shared across the system.
package fsops

import (
	"context"
	"time"
)

type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Inode uint64
}

type FS interface {
	Stat(path string) (FileInfo, error)
	CopyFile(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
	MkdirAll(path string) error
	Remove(path string) error
	RemoveAll(path string) error
}
