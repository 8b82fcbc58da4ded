package display

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoExtension is returned when an image path has no extension to name the
// local file with.
var ErrNoExtension = errors.New("image has no extension")

// FileDisplay writes the current image to a local file named base.ext, for a
// viewer or panel driver that watches it. Only one such file exists at a time.
type FileDisplay struct {
	base       string
	extensions []string

	mu      sync.Mutex
	current string
}

// NewFileDisplay creates a FileDisplay writing to base plus the image's
// extension. Files for every extension in extensions are removed before each
// write.
func NewFileDisplay(base string, extensions []string) *FileDisplay {
	return &FileDisplay{
		base:       base,
		extensions: append([]string(nil), extensions...),
	}
}

// Current returns the local path of the image on display, or "".
func (d *FileDisplay) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.current
}

// Show replaces the local file with img.
func (d *FileDisplay) Show(ctx context.Context, img Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ext := img.Ext()
	if ext == "" {
		return fmt.Errorf("%w: %s", ErrNoExtension, img.Path)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.base + "." + ext

	// A watcher must never see a partial image
	tmp, err := os.CreateTemp(filepath.Dir(target), ".cover-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(img.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move image into place: %w", err)
	}

	// The old image stays on disk until the new one is in place
	err = d.removeExceptLocked(target)
	d.current = target

	return err
}

// Clear removes the local file.
func (d *FileDisplay) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.removeExceptLocked(""); err != nil {
		return err
	}

	d.current = ""

	return nil
}

// removeExceptLocked removes base.ext for every configured extension and the
// current image, sparing keep.
func (d *FileDisplay) removeExceptLocked(keep string) error {
	paths := make([]string, 0, len(d.extensions)+1)
	for _, ext := range d.extensions {
		paths = append(paths, d.base+"."+ext)
	}

	if d.current != "" {
		paths = append(paths, d.current)
	}

	var errs []error

	for _, p := range paths {
		if p == keep {
			continue
		}

		err := os.Remove(p)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove stale image: %w", err))
		}
	}

	return errors.Join(errs...)
}
