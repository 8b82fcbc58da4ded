package catalog

import (
	"fmt"
	"strings"
)

// SortOrder decides how the next candidate follows the previous one.
type SortOrder int

const (
	// InOrder steps forward through the candidate list, wrapping at the end
	InOrder SortOrder = iota
	// Reverse steps backward, wrapping at the start
	Reverse
	// Random picks uniformly, never repeating the previous pick when it can avoid it
	Random
)

// String returns the string representation of SortOrder
func (o SortOrder) String() string {
	switch o {
	case InOrder:
		return "in_order"
	case Reverse:
		return "reverse"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// ParseSortOrder parses a string into a SortOrder
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in_order", "in-order", "inorder":
		return InOrder, nil
	case "reverse":
		return Reverse, nil
	case "random":
		return Random, nil
	default:
		return Random, fmt.Errorf("%w: %q (valid: in_order, reverse, random)", ErrUnknownSortOrder, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (o *SortOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseSortOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed

	return nil
}

// MarshalText implements encoding.TextMarshaler
func (o SortOrder) MarshalText() ([]byte, error) {
	if !o.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSortOrder, int(o))
	}

	return []byte(o.String()), nil
}

func (o SortOrder) valid() bool {
	return o == InOrder || o == Reverse || o == Random
}

// Rand is the random source used by the Random order.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// SelectionState is carried by the caller from one cycle to the next.
type SelectionState struct {
	// PreviousPath is the last path handed to the display, empty before the
	// first successful cycle
	PreviousPath string
}

// Selection is the outcome of Select.
type Selection struct {
	// Path is the chosen candidate, or the previous path when unchanged
	Path string

	// Index is Path's position in the candidate list, -1 when unchanged
	Index int

	// Changed is false when there were no candidates; the caller keeps the
	// previous selection and display as they are
	Changed bool
}

// Select picks the next candidate after state.PreviousPath.
//
// An empty list isn't an error: the result is unchanged. When the previous path
// is not in the list there is no anchor and in_order starts at the first
// candidate, reverse at the last. Random picks uniformly and, when it lands on
// the previous path and there is another candidate, takes the next one instead.
func Select(candidates []string, state SelectionState, order SortOrder, rng Rand) (Selection, error) {
	if !order.valid() {
		return Selection{}, fmt.Errorf("%w: %d", ErrUnknownSortOrder, int(order))
	}

	unchanged := Selection{Path: state.PreviousPath, Index: -1, Changed: false}

	n := len(candidates)
	if n == 0 {
		return unchanged, nil
	}

	anchor := indexOf(candidates, state.PreviousPath)

	var next int

	switch order {
	case InOrder:
		if anchor < 0 {
			next = 0
		} else {
			next = (anchor + 1) % n
		}
	case Reverse:
		if anchor < 0 {
			next = n - 1
		} else {
			next = (anchor - 1 + n) % n
		}
	case Random:
		if rng == nil {
			return Selection{}, fmt.Errorf("%w: random order needs a random source", ErrInvalidConfig)
		}

		next = rng.IntN(n)
		if n > 1 && candidates[next] == state.PreviousPath {
			next = (next + 1) % n
		}
	}

	return Selection{Path: candidates[next], Index: next, Changed: true}, nil
}

// indexOf returns the first position of p in candidates, or -1.
func indexOf(candidates []string, p string) int {
	if p == "" {
		return -1
	}

	for i, c := range candidates {
		if c == p {
			return i
		}
	}

	return -1
}
