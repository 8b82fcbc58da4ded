package catalog

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtensions are the image extensions accepted when none are configured.
//
//nolint:gochecknoglobals // Read-only default list
var DefaultExtensions = []string{"jpg", "bmp", "png"}

// MatchRule is one root path plus the filters that decide which leaves under it
// become candidates.
type MatchRule struct {
	// Root is the directory the walk starts from
	Root string `yaml:"root"`

	// Include patterns are regexes searched in the leaf path; empty accepts all
	Include []string `yaml:"include,omitempty"`

	// Exclude patterns are regexes searched in directory and leaf paths
	Exclude []string `yaml:"exclude,omitempty"`

	// CoverDirs are globs matched against the base name of the leaf's
	// directory; empty accepts any directory
	CoverDirs []string `yaml:"cover_dirs,omitempty"`
}

// Rejection says why a path was not accepted.
type Rejection int

// Rejection reasons, in evaluation order.
const (
	Accepted Rejection = iota
	RejectedExtension
	RejectedCoverDir
	RejectedExclude
	RejectedInclude
)

// String returns the string representation of Rejection
func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedExtension:
		return "unsupported extension"
	case RejectedCoverDir:
		return "not in a cover directory"
	case RejectedExclude:
		return "excluded"
	case RejectedInclude:
		return "not included"
	default:
		return "unknown"
	}
}

// Decision is the outcome of matching one path. Pattern is the pattern found
// while evaluating this path, empty when no pattern was involved.
type Decision struct {
	Reason  Rejection
	Pattern string
}

// Accepted reports whether the path passed every filter.
func (d Decision) Accepted() bool {
	return d.Reason == Accepted
}

// Matcher is a MatchRule with its patterns compiled.
type Matcher struct {
	rule       MatchRule
	include    []*regexp.Regexp
	exclude    []*regexp.Regexp
	extensions map[string]struct{}
}

// NewMatcher compiles rule. Extensions are compared case-sensitively; an empty
// list means DefaultExtensions. Any malformed regex or glob fails the whole
// rule with ErrInvalidPattern.
func NewMatcher(rule MatchRule, extensions []string) (*Matcher, error) {
	if strings.TrimSpace(rule.Root) == "" {
		return nil, fmt.Errorf("%w: match rule has no root", ErrInvalidConfig)
	}

	include, err := compileAll(rule.Include)
	if err != nil {
		return nil, fmt.Errorf("root %s include: %w", rule.Root, err)
	}

	exclude, err := compileAll(rule.Exclude)
	if err != nil {
		return nil, fmt.Errorf("root %s exclude: %w", rule.Root, err)
	}

	for _, glob := range rule.CoverDirs {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("root %s cover dir %q: %w", rule.Root, glob, ErrInvalidPattern)
		}
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.TrimPrefix(ext, ".")] = struct{}{}
	}

	return &Matcher{
		rule:       rule,
		include:    include,
		exclude:    exclude,
		extensions: extSet,
	}, nil
}

// Rule returns the rule the matcher was compiled from.
func (m *Matcher) Rule() MatchRule {
	return m.rule
}

// ExcludedDir reports the first exclude pattern found in dir, in declared
// order. A match prunes the whole subtree.
func (m *Matcher) ExcludedDir(dir string) (string, bool) {
	return firstMatch(m.exclude, dir)
}

// MatchLeaf decides whether a leaf at leafPath is a candidate, assuming every
// directory above it already passed ExcludedDir.
func (m *Matcher) MatchLeaf(leafPath string) Decision {
	name := path.Base(leafPath)

	if !m.supportedExtension(name) {
		return Decision{Reason: RejectedExtension}
	}

	if m.outsideCoverDirs(leafPath) {
		return Decision{Reason: RejectedCoverDir}
	}

	if pattern, ok := firstMatch(m.exclude, leafPath); ok {
		return Decision{Reason: RejectedExclude, Pattern: pattern}
	}

	if len(m.include) == 0 {
		return Decision{Reason: Accepted}
	}

	if pattern, ok := firstMatch(m.include, leafPath); ok {
		return Decision{Reason: Accepted, Pattern: pattern}
	}

	return Decision{Reason: RejectedInclude}
}

// outsideCoverDirs reports whether cover dirs are configured and none matches
// the leaf's directory name.
func (m *Matcher) outsideCoverDirs(leafPath string) bool {
	if len(m.rule.CoverDirs) == 0 {
		return false
	}

	dirName := path.Base(path.Dir(leafPath))
	for _, glob := range m.rule.CoverDirs {
		// patterns were validated in NewMatcher
		if ok, _ := doublestar.Match(glob, dirName); ok {
			return false
		}
	}

	return true
}

// supportedExtension checks the final dot-separated segment of name.
func (m *Matcher) supportedExtension(name string) bool {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return false
	}

	_, ok := m.extensions[name[dot+1:]]

	return ok
}

// compileAll compiles patterns in order, failing on the first bad one.
func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

// firstMatch returns the first pattern that matches anywhere in s.
func firstMatch(patterns []*regexp.Regexp, s string) (string, bool) {
	for _, re := range patterns {
		if re.MatchString(s) {
			return re.String(), true
		}
	}

	return "", false
}
