// Package store implements the dataset I/O collaborators: image decode and
// encode, and YOLO-format label files. Writes are atomic so a failed run never
// leaves a partial file next to good dataset entries.
package store

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrDecodeFailure reports an unreadable or corrupt image file.
var ErrDecodeFailure = errors.New("image decode failure")

// ImageStore loads and saves dataset images (jpg/png/webp).
type ImageStore struct {
	// Quality applies to JPEG and lossy WebP output, 1-100.
	Quality int
}

// NewImageStore returns an ImageStore with default output quality.
func NewImageStore() *ImageStore {
	return &ImageStore{Quality: 90}
}

// Load decodes an image from path. Decoding failure is fatal for the caller's
// invocation, wrapped as ErrDecodeFailure.
func (s *ImageStore) Load(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode, then one more generic attempt.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	if img, err := webp.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, 0); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDecodeFailure, path)
}

// Save encodes img to path, format chosen by extension. The file appears
// atomically: encoding goes to a temp file in the destination directory which
// is renamed into place only after the encoder finished.
func (s *ImageStore) Save(img image.Image, path string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	return writeAtomic(path, func(f *os.File) error {
		switch ext {
		case "jpg", "jpeg":
			return jpeg.Encode(f, img, &jpeg.Options{Quality: s.Quality})
		case "png":
			return png.Encode(f, img)
		case "webp":
			return webp.Encode(f, img, &webp.Options{Quality: float32(s.Quality)})
		default:
			return fmt.Errorf("unsupported output format: %s", ext)
		}
	})
}

// writeAtomic writes via a temp file in the same directory and renames it
// over path, removing the temp file on any failure.
func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finish writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
