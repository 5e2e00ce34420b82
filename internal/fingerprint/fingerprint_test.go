package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileFingerprint(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.txt", "hello world")
	b := writeFile(t, dir, "b.txt", "hello world")
	c := writeFile(t, dir, "c.txt", "hello there")

	sumA, err := File(a)
	require.NoError(t, err)
	sumB, err := File(b)
	require.NoError(t, err)
	sumC, err := File(c)
	require.NoError(t, err)

	assert.Len(t, sumA, 16, "XXH64 hex is 16 chars")
	assert.Equal(t, sumA, sumB, "equal content, equal fingerprint")
	assert.NotEqual(t, sumA, sumC, "different content, different fingerprint")
}

func TestFileFingerprintMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
