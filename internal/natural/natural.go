// Package natural orders names the way a person reads them: runs of digits
// embedded in a name compare by numeric value instead of byte by byte, so
// "img2" sorts before "img10".
package natural

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSegmentMismatch is returned when two keys hold different segment kinds at
// the same position. Keys built by KeyOf never do.
var ErrSegmentMismatch = errors.New("natural key segment kinds differ")

// Segment is one run of a key: either a text run or a digit run.
type Segment struct {
	Text    string
	Numeric bool
}

// Key is the comparison key of a name. It always starts with a (possibly
// empty) text segment and then alternates, so even indexes are text and odd
// indexes are numeric.
type Key []Segment

// KeyOf splits name into alternating text and digit runs.
func KeyOf(name string) Key {
	key := make(Key, 0, 1)
	start := 0
	numeric := false

	for i := 0; i < len(name); i++ {
		digit := isDigit(name[i])
		if digit == numeric {
			continue
		}

		key = append(key, Segment{Text: name[start:i], Numeric: numeric})
		start = i
		numeric = digit
	}

	key = append(key, Segment{Text: name[start:], Numeric: numeric})

	// Close with an empty text run after a trailing number so two keys
	// built from any inputs keep the same parity layout.
	if numeric {
		key = append(key, Segment{Text: "", Numeric: false})
	}

	return key
}

// CompareKeys compares two keys segment by segment. Numeric segments compare as
// unbounded integers; text segments compare as strings. It fails with
// ErrSegmentMismatch rather than guessing when segment kinds disagree.
func CompareKeys(a, b Key) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Numeric != b[i].Numeric {
			return 0, fmt.Errorf("%w at index %d (%q vs %q)", ErrSegmentMismatch, i, a[i].Text, b[i].Text)
		}

		var c int
		if a[i].Numeric {
			c = compareDigits(a[i].Text, b[i].Text)
		} else {
			c = strings.Compare(a[i].Text, b[i].Text)
		}

		if c != 0 {
			return c, nil
		}
	}

	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	default:
		return 0, nil
	}
}

// Compare orders two names naturally. Names whose keys are equal (for example
// "a01" and "a1") fall back to plain string order so the result is a total
// order.
func Compare(a, b string) int {
	c, err := CompareKeys(KeyOf(a), KeyOf(b))
	if err != nil {
		// unreachable for keys built by KeyOf
		panic(err)
	}

	if c != 0 {
		return c
	}

	return strings.Compare(a, b)
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// compareDigits compares two digit strings by numeric value without
// converting them, so arbitrarily long runs never overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
