package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryAuth:
		return g.generateAuthSuggestions()
	case CategoryConfig:
		return g.generateConfigSuggestions()
	case CategoryConnection:
		return g.generateConnectionSuggestions()
	case CategoryPath:
		return g.generatePathSuggestions(affectedPath)
	case CategoryPermission:
		return g.generatePermissionSuggestions(affectedPath)
	case CategoryUnknown:
		return g.generateUnknownSuggestions(affectedPath)
	default:
		return g.generateUnknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) generateAuthSuggestions() []string {
	return []string{
		"Check the user name and password in the server URL or config file",
		"For SFTP, make sure your key is loaded in ssh-agent or stored unencrypted in ~/.ssh",
		"For FTP, leave the user empty to log in anonymously if the server allows it",
	}
}

func (g *suggestionGenerator) generateConfigSuggestions() []string {
	return []string{
		"Fix the config file and run again (use --init to write a fresh template)",
		"Patterns are regular expressions: escape literal dots as \\. and don't start with *",
		"Valid sort orders are in_order, reverse and random",
		"The server must look like sftp://user@host/path, ftp://host/path or a local directory",
	}
}

func (g *suggestionGenerator) generateConnectionSuggestions() []string {
	return []string{
		"Check that the server is powered on and reachable from this device",
		"Verify the host name and port in the server URL",
		"The next poll will try again; transient network errors are expected",
	}
}

func (g *suggestionGenerator) generatePathSuggestions(path string) []string {
	suggestions := []string{
		"Verify the matcher root exists on the server and is spelled correctly",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists on the server: "+path)
	}

	suggestions = append(suggestions, "Relative roots are resolved against the server login directory")

	return suggestions
}

func (g *suggestionGenerator) generatePermissionSuggestions(path string) []string {
	suggestions := []string{
		"Ensure the server account can read the image directories",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions on the server with 'ls -la %s'", path))
	}

	return suggestions
}

func (g *suggestionGenerator) generateUnknownSuggestions(path string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Run with --log-level=debug to see every listing call",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}
