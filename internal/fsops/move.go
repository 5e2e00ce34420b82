package fsops

import (
	"context"
	"os"

	"gitlab.com/tozd/go/errors"
)

// moveWithRetry renames src to dst, retrying transient errors. Rename is
// atomic within a volume; across volumes it falls back to copy+remove.
func moveWithRetry(ctx context.Context, src, dst string) error {
	err := retry(ctx, "rename", func() error {
		return os.Rename(src, dst)
	})
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	// Cross-device rename. Copy, then remove the source only once the
	// destination is fully written, so a failure never loses the file.
	if err := copyOnce(src, dst); err != nil {
		_ = os.Remove(dst)
		return errors.Errorf("cross-device copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return errors.Errorf("removing source after copy: %w", err)
	}
	return nil
}
