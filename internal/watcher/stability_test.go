package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func observe(g *Gate, path string, at time.Time) {
	g.Observe(pipeline.FileEvent{Path: path, Kind: pipeline.EventModified, DetectedAt: at})
}

func TestGateEmitsAfterQuietPeriod(t *testing.T) {
	dir := t.TempDir()
	g := NewGate(2*time.Second, 10*time.Minute)
	t0 := time.Now()

	path := writeFile(t, dir, "report.pdf", "chunk1")
	observe(g, path, t0)

	// still inside the quiet period: nothing emits
	assert.Empty(t, g.Sweep(t0.Add(time.Second)))
	assert.Equal(t, 1, g.PendingCount())

	ready := g.Sweep(t0.Add(3 * time.Second))
	require.Len(t, ready, 1)
	assert.Equal(t, path, ready[0].Path)
	assert.Equal(t, int64(len("chunk1")), ready[0].Size)
	assert.Equal(t, ".pdf", ready[0].Ext)
	assert.Zero(t, g.PendingCount(), "emitted path no longer tracked")

	// the episode is over; a later sweep emits nothing more
	assert.Empty(t, g.Sweep(t0.Add(10*time.Second)))
}

func TestGateChunkedWriteEmitsOnce(t *testing.T) {
	dir := t.TempDir()
	g := NewGate(2*time.Second, 10*time.Minute)
	t0 := time.Now()

	// a slow writer appending a chunk every second
	path := writeFile(t, dir, "big.bin", "1111")
	observe(g, path, t0)
	writeFile(t, dir, "big.bin", "11112222")
	observe(g, path, t0.Add(time.Second))
	writeFile(t, dir, "big.bin", "111122223333")
	observe(g, path, t0.Add(2*time.Second))

	// quiet period counts from the last size change
	assert.Empty(t, g.Sweep(t0.Add(3*time.Second)))

	ready := g.Sweep(t0.Add(5 * time.Second))
	require.Len(t, ready, 1)
	assert.Equal(t, int64(12), ready[0].Size)
}

func TestGateSweepDetectsGrowth(t *testing.T) {
	dir := t.TempDir()
	g := NewGate(2*time.Second, 10*time.Minute)
	t0 := time.Now()

	// the file grows without any notification; the sweep re-sample must
	// catch it and restart the quiet period
	path := writeFile(t, dir, "big.bin", "1111")
	observe(g, path, t0)
	writeFile(t, dir, "big.bin", "11112222")

	assert.Empty(t, g.Sweep(t0.Add(3*time.Second)))
	assert.Empty(t, g.Sweep(t0.Add(4*time.Second)))

	ready := g.Sweep(t0.Add(6 * time.Second))
	require.Len(t, ready, 1)
}

func TestGateVanishedFileDropped(t *testing.T) {
	dir := t.TempDir()
	g := NewGate(2*time.Second, 10*time.Minute)
	t0 := time.Now()

	path := writeFile(t, dir, "gone.txt", "x")
	observe(g, path, t0)
	require.NoError(t, os.Remove(path))

	assert.Empty(t, g.Sweep(t0.Add(5*time.Second)))
	assert.Zero(t, g.PendingCount())
}

func TestGateEviction(t *testing.T) {
	dir := t.TempDir()
	g := NewGate(2*time.Second, 10*time.Minute)
	t0 := time.Now()

	path := writeFile(t, dir, "churning.bin", "1")
	observe(g, path, t0)

	// keep the size changing on every sweep so it never stabilizes
	for i := 1; i <= 3; i++ {
		writeFile(t, dir, "churning.bin", string(make([]byte, i*10)))
		assert.Empty(t, g.Sweep(t0.Add(time.Duration(i)*time.Minute)))
	}

	// past maxAge the entry is evicted even though it never went quiet
	assert.Empty(t, g.Sweep(t0.Add(11*time.Minute)))
	assert.Zero(t, g.PendingCount())
}

func TestGateObserveMissingFile(t *testing.T) {
	g := NewGate(2*time.Second, 10*time.Minute)
	observe(g, filepath.Join(t.TempDir(), "never-existed"), time.Now())
	assert.Zero(t, g.PendingCount())
}

func TestGateDropUnder(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	g := NewGate(2*time.Second, 10*time.Minute)
	t0 := time.Now()

	a := writeFile(t, root, "a.txt", "x")
	b := writeFile(t, other, "b.txt", "x")
	observe(g, a, t0)
	observe(g, b, t0)
	require.Equal(t, 2, g.PendingCount())

	g.DropUnder(root)
	assert.Equal(t, 1, g.PendingCount())

	ready := g.Sweep(t0.Add(5 * time.Second))
	require.Len(t, ready, 1)
	assert.Equal(t, b, ready[0].Path)
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"/watch/report.pdf", false},
		{"/watch/archive.tar.gz", false},
		{"/watch/download.crdownload", true},
		{"/watch/partial.part", true},
		{"/watch/editor.tmp", true},
		{"/watch/UPPER.TMP", true},
		{"/watch/.hidden", true},
		{"/watch/.~lock.doc#", true},
		{"/watch/Desktop.ini", true},
		{"/watch/Thumbs.db", true},
		{"/watch/.DS_Store", true},
		{"/watch/tmpfile", false}, // no extension, not a temp pattern
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ignore, shouldIgnore(tt.path), tt.path)
	}
}
