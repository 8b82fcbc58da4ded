package filesystem

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"
	"time"
)

// MockFileSystem is an in-memory Session implementation for testing.
// It records every List and Fetch call so tests can assert which directories
// were never visited.
type MockFileSystem struct {
	mu         sync.RWMutex
	files      map[string]*mockFile
	listErrs   map[string]error
	fetchErrs  map[string]error
	listCalls  []string
	fetchCalls []string
	closed     bool
}

// mockFile represents a file or directory in the mock filesystem.
type mockFile struct {
	data    []byte
	modTime time.Time
	isDir   bool
}

// NewMockFileSystem creates a new in-memory filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: map[string]*mockFile{
			"/": {isDir: true},
		},
		listErrs:  make(map[string]error),
		fetchErrs: make(map[string]error),
	}
}

// Close marks the session closed. Calling it twice is an error so tests catch
// double releases.
func (fs *MockFileSystem) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return os.ErrClosed
	}

	fs.closed = true

	return nil
}

// Fetch returns a copy of a file's content.
func (fs *MockFileSystem) Fetch(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	file = cleanMockPath(file)
	fs.fetchCalls = append(fs.fetchCalls, file)

	if err := fs.fetchErrs[file]; err != nil {
		return nil, err
	}

	f, exists := fs.files[file]
	if !exists {
		return nil, fmt.Errorf("fetch %s: %w", file, os.ErrNotExist)
	}

	if f.isDir {
		return nil, fmt.Errorf("fetch %s: is a directory", file) //nolint:err113 // Mock error
	}

	return append([]byte(nil), f.data...), nil
}

// List returns the direct children of dir in byte order, which is deliberately
// not natural order.
func (fs *MockFileSystem) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir = cleanMockPath(dir)
	fs.listCalls = append(fs.listCalls, dir)

	if err := fs.listErrs[dir]; err != nil {
		return nil, err
	}

	f, exists := fs.files[dir]
	if !exists {
		return nil, fmt.Errorf("list %s: %w", dir, os.ErrNotExist)
	}

	if !f.isDir {
		return nil, fmt.Errorf("list %s: %w", dir, ErrNotDirectory)
	}

	entries := make([]Entry, 0)
	for p, child := range fs.files {
		if p == "/" || path.Dir(p) != dir {
			continue
		}

		entries = append(entries, Entry{
			Name:    path.Base(p),
			IsDir:   child.isDir,
			Size:    int64(len(child.data)),
			ModTime: child.modTime,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Open returns the mock itself, so it can stand in for an Opener.
func (fs *MockFileSystem) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.closed = false

	return fs, nil
}

// Helper methods for testing

// AddDir adds a directory and its parents.
func (fs *MockFileSystem) AddDir(dir string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.mkdirAllLocked(cleanMockPath(dir))
}

// AddFile adds a file with the given content, creating parent directories.
func (fs *MockFileSystem) AddFile(file string, content []byte) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file = cleanMockPath(file)
	fs.mkdirAllLocked(path.Dir(file))
	fs.files[file] = &mockFile{
		data:    append([]byte(nil), content...),
		modTime: time.Now(),
	}
}

// Closed reports whether Close has been called since the last Open.
func (fs *MockFileSystem) Closed() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.closed
}

// FailFetch makes every Fetch of file return err.
func (fs *MockFileSystem) FailFetch(file string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.fetchErrs[cleanMockPath(file)] = err
}

// FailList makes every List of dir return err.
func (fs *MockFileSystem) FailList(dir string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.listErrs[cleanMockPath(dir)] = err
}

// FetchCalls returns the files fetched so far, in call order.
func (fs *MockFileSystem) FetchCalls() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return append([]string(nil), fs.fetchCalls...)
}

// ListCalls returns the directories listed so far, in call order.
func (fs *MockFileSystem) ListCalls() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return append([]string(nil), fs.listCalls...)
}

// Remove deletes a file or a directory with everything under it.
func (fs *MockFileSystem) Remove(p string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	p = cleanMockPath(p)
	for existing := range fs.files {
		if existing == p || (p != "/" && len(existing) > len(p) && existing[:len(p)+1] == p+"/") {
			delete(fs.files, existing)
		}
	}
}

// mkdirAllLocked is the internal implementation that assumes the lock is held.
func (fs *MockFileSystem) mkdirAllLocked(dir string) {
	for dir != "/" {
		if _, exists := fs.files[dir]; !exists {
			fs.files[dir] = &mockFile{isDir: true, modTime: time.Now()}
		}

		dir = path.Dir(dir)
	}
}

// cleanMockPath anchors paths at "/" so "Covers" and "/Covers" name the same
// directory.
func cleanMockPath(p string) string {
	return path.Clean("/" + p)
}
