// Package errors provides actionable error handling with context-aware suggestions.
//
// This package enriches the fatal errors of a poll cycle with a category and
// suggestions so a user staring at a blank picture frame knows what to fix.
// It detects configuration, authentication, connection, permission and path
// problems from the error text.
//
// Basic Usage:
//
//	enricher := errors.NewEnricher()
//	if err := runner.RunOnce(ctx); err != nil {
//	    actionableErr := enricher.Enrich(err, "")
//	    fmt.Fprintln(os.Stderr, actionableErr.Error())
//	    fmt.Fprintln(os.Stderr, errors.FormatSuggestions(actionableErr))
//	}
//
// The enricher extracts paths from error messages when none is given:
//
//	err := errors.New("failed to list remote directory /Media/Games: file does not exist")
//	enriched := enricher.Enrich(err, "") // AffectedPath() == "/Media/Games"
package errors

import "strings"

// Exported constants.
const (
	CategoryAuth       ErrorCategory = "auth"
	CategoryConfig     ErrorCategory = "config"
	CategoryConnection ErrorCategory = "connection"
	CategoryPath       ErrorCategory = "path"
	CategoryPermission ErrorCategory = "permission"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	Unwrap() error
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	cause error,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		cause:        cause,
		category:     category,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list.
// Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError) //nolint:errorlint // Enrich returns the ActionableError itself
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	cause        error
	category     ErrorCategory
	suggestions  []string
	affectedPath string
}

// AffectedPath returns the path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	if e.cause == nil {
		return string(e.category) + " error"
	}

	return e.cause.Error()
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap returns the underlying error so errors.Is keeps working.
func (e *actionableError) Unwrap() error {
	return e.cause
}
