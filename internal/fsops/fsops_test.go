package fsops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	info, err := New().Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size)
	assert.False(t, info.MTime.IsZero())
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, New().CopyFile(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// source untouched
	data, err = os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := New().CopyFile(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "sub", "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("moving"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))

	require.NoError(t, New().Move(context.Background(), src, dst))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source must be gone after move")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "moving", string(data))
}

func TestSourceChanged(t *testing.T) {
	base := FileInfo{Size: 10, Inode: 42}

	assert.False(t, sourceChanged(base, base))
	assert.True(t, sourceChanged(base, FileInfo{Size: 11, Inode: 42}))
	assert.True(t, sourceChanged(base, FileInfo{Size: 10, Inode: 43}))
}
