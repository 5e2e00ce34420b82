package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	m := New("documents", "20260101_120000", "full")
	m.Files["sub/report.pdf"] = Entry{
		Path:        "sub/report.pdf",
		Size:        42,
		ModTime:     time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC),
		Fingerprint: "deadbeefdeadbeef",
		StoredIn:    "20260101_120000",
	}
	require.NoError(t, store.Save(m))

	got, err := store.Load("20260101_120000")
	require.NoError(t, err)
	assert.Equal(t, "documents", got.Target)
	assert.Equal(t, "full", got.Mode)
	require.Contains(t, got.Files, "sub/report.pdf")
	assert.Equal(t, int64(42), got.Files["sub/report.pdf"].Size)
	assert.Equal(t, "20260101_120000", got.Files["sub/report.pdf"].StoredIn)
}

func TestStoreTimestampsSorted(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, ts := range []string{"20260103_090000", "20260101_090000", "20260102_090000"} {
		require.NoError(t, store.Save(New("t", ts, "full")))
	}

	got, err := store.Timestamps()
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101_090000", "20260102_090000", "20260103_090000"}, got)
}

func TestStoreTimestampsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))

	got, err := store.Timestamps()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreLatest(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save(New("documents", "20260101_090000", "full")))
	require.NoError(t, store.Save(New("photos", "20260102_090000", "full")))
	require.NoError(t, store.Save(New("documents", "20260103_090000", "incremental")))

	got, err := store.Latest("documents")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "20260103_090000", got.Timestamp)
	assert.Equal(t, "incremental", got.Mode)

	got, err = store.Latest("photos")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "20260102_090000", got.Timestamp)
}

func TestStoreLatestNone(t *testing.T) {
	store := NewStore(t.TempDir())

	got, err := store.Latest("documents")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreLatestCorrupt(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	dir := filepath.Join(root, "manifests")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest_20260101_090000.json"), []byte("{not json"), 0o644))

	got, err := store.Latest("documents")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestStoreRemove(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save(New("t", "20260101_090000", "full")))
	require.NoError(t, store.Remove("20260101_090000"))

	got, err := store.Timestamps()
	require.NoError(t, err)
	assert.Empty(t, got)

	// removing a missing manifest is not an error
	require.NoError(t, store.Remove("20260101_090000"))
}

func TestStoreSaveLeavesNoTempFile(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.Save(New("t", "20260101_090000", "full")))

	entries, err := os.ReadDir(filepath.Join(root, "manifests"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest_20260101_090000.json", entries[0].Name())
}
