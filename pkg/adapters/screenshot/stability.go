package screenshot

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	// Register decoders for every capture format the pipeline accepts.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// waitForStableFile blocks until the file stops changing size (i.e. is
// fully written) or the timeout elapses. Screenshot tools write files in
// chunks; OCRing a half-written file yields garbage.
func waitForStableFile(ctx context.Context, path string, timeout, poll time.Duration) error {
	deadline := time.Now().Add(timeout)
	lastSize := int64(-1)

	for {
		size := int64(-1)
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}

		if size == lastSize && size > 0 {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for file to stabilize: %s", path)
		}

		lastSize = size

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

// validateImage checks the file header decodes as a known image format.
func validateImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("cannot decode image %s: %w", path, err)
	}
	return nil
}
