// Package filesystem provides the remote listing and fetch capabilities the
// catalog walks, so selection logic can be tested without a server.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
)

// ErrNotDirectory is returned when a listing is requested for a leaf entry.
var ErrNotDirectory = errors.New("not a directory")

// Entry is one item of a directory listing.
type Entry struct {
	// Name is the base name of the entry within its directory
	Name string

	// IsDir indicates if this is a directory
	IsDir bool

	// Size is the file size in bytes (0 when the server does not report it)
	Size int64

	// ModTime is the modification time (zero when the server does not report it)
	ModTime time.Time
}

// Lister lists one directory at a time.
type Lister interface {
	// List returns the entries directly under dir. The order is whatever the
	// server returns; callers sort.
	List(ctx context.Context, dir string) ([]Entry, error)
}

// Fetcher reads the full content of one file.
type Fetcher interface {
	Fetch(ctx context.Context, file string) ([]byte, error)
}

// Session is one connected transport used for a single poll cycle.
// Close must be called on every exit path.
type Session interface {
	Lister
	Fetcher
	io.Closer
}

// LocalSession implements Session on the local disk. Paths are slash
// separated and converted with filepath at the edge.
type LocalSession struct{}

// NewLocalSession creates a new LocalSession instance.
func NewLocalSession() *LocalSession {
	return &LocalSession{}
}

// Close is a no-op; local sessions hold no resources.
func (s *LocalSession) Close() error {
	return nil
}

// Fetch reads a local file.
func (s *LocalSession) Fetch(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.FromSlash(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return data, nil
}

// List reads one local directory.
func (s *LocalSession) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: de.IsDir()}

		// Info can fail if the entry vanished after ReadDir; the name and kind
		// are still good enough for a listing.
		if info, infoErr := de.Info(); infoErr == nil {
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Join joins remote path elements with forward slashes.
// Uses path package (not filepath) since remote servers always use forward slashes.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}

	return path.Join(dir, name)
}
