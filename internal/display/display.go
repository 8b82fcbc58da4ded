// Package display shows the selected cover image.
package display

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Image is a fetched candidate.
type Image struct {
	// Path is the remote path the bytes were fetched from
	Path string
	Data []byte
}

// Ext returns the image's extension without the dot, or "" if it has none.
func (i Image) Ext() string {
	return strings.TrimPrefix(path.Ext(i.Path), ".")
}

// Display presents images. Implementations must accept Clear without a prior
// Show.
type Display interface {
	Show(ctx context.Context, img Image) error
	Clear(ctx context.Context) error
}

// Multi fans every call out to several displays. All of them are called even
// when one fails; the errors are joined.
type Multi []Display

// Show shows img on every display.
func (m Multi) Show(ctx context.Context, img Image) error {
	var errs []error

	for _, d := range m {
		if err := d.Show(ctx, img); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clear clears every display.
func (m Multi) Clear(ctx context.Context) error {
	var errs []error

	for _, d := range m {
		if err := d.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
