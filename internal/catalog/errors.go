package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	// ErrInvalidConfig indicates a configuration problem found before any
	// transport call.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidPattern indicates a malformed include, exclude, or cover-dir pattern.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrUnknownSortOrder indicates a sort order other than in_order, reverse, or random.
	ErrUnknownSortOrder = errors.New("unknown sort order")
	// ErrAllRootsFailed indicates that no match rule could list its root, so
	// the cycle has no candidate list at all.
	ErrAllRootsFailed = errors.New("every match rule root failed to list")
)

// RootError is returned when the root directory of a match rule can't be
// listed. Its rule contributes nothing to the cycle.
type RootError struct {
	Root string
	Err  error
}

// Error implements the error interface.
func (e *RootError) Error() string {
	return fmt.Sprintf("listing root %s: %v", e.Root, e.Err)
}

// Unwrap returns the transport error.
func (e *RootError) Unwrap() error {
	return e.Err
}
