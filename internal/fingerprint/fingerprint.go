// Package fingerprint computes content fingerprints for duplicate
// detection and incremental backup diffing. XXH64 is fast enough to
// hash large downloads without stalling the pipeline.
package fingerprint

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"gitlab.com/tozd/go/errors"
)

// bufferSize is the read chunk size. 1MB keeps memory flat on large files.
const bufferSize = 1024 * 1024

// File returns the XXH64 hash of a file's contents as a hex string.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	buf := make([]byte, bufferSize)

	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n]) // xxhash.Write never fails
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Errorf("reading %s: %w", path, err)
		}
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}
