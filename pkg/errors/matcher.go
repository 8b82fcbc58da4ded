package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
// Categories are checked in order, so a configuration error that mentions a
// missing path is still reported as configuration.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		patterns: []categoryPatterns{
			{CategoryConfig, []string{
				"invalid configuration",
				"invalid pattern",
				"unknown sort order",
				"server address is empty",
				"unsupported scheme",
				"url must include",
				"config file",
			}},
			{CategoryAuth, []string{
				"unable to authenticate",
				"no ssh authentication methods",
				"login incorrect",
				"530 ",
				"ftp login",
			}},
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"operation not permitted",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"file does not exist",
				"file not found",
				"550 ",
				"not a directory",
			}},
			{CategoryConnection, []string{
				"connection refused",
				"connection reset",
				"no route to host",
				"no such host",
				"network is unreachable",
				"i/o timeout",
				"handshake failed",
				"connection failed",
				"every match rule root failed",
			}},
		},
	}
}

// categoryPatterns pairs a category with the substrings that identify it.
type categoryPatterns struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	patterns []categoryPatterns
}

// Match returns the error category based on pattern matching.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, cp := range m.patterns {
		for _, pattern := range cp.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return cp.category
			}
		}
	}

	return CategoryUnknown
}
