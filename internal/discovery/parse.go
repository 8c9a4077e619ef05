package discovery

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/spigell/profile-scout/internal/profile"
)

const titleSeparator = " - "

var (
	linkedInSuffix = regexp.MustCompile(`\s*\|\s*LinkedIn\s*$`)
	// Snippets often carry "Location: San Francisco Bay Area · 500+ connections".
	locationPattern = regexp.MustCompile(`(?i)\blocation:\s*([^·|\n]+)`)
)

// ParseResult turns a "Name - Title - Company | LinkedIn" search result into a candidate.
func ParseResult(result *SearchResult) *profile.Candidate {
	title := linkedInSuffix.ReplaceAllString(strings.TrimSpace(result.Title), "")

	var parts []string
	if title != "" {
		parts = strings.Split(title, titleSeparator)
	}

	candidate := &profile.Candidate{
		ID:               uuid.NewString(),
		LinkedInURL:      result.Link,
		ResultSnippet:    result.Snippet,
		Query:            result.Query,
		InferredLocation: extractLocation(result.Snippet),
	}

	if len(parts) > 0 {
		candidate.InferredName = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		candidate.InferredTitle = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		candidate.InferredCompany = strings.TrimSpace(parts[2])
	}

	return candidate
}

func extractLocation(snippet string) string {
	match := locationPattern.FindStringSubmatch(snippet)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(match[1]), ".,;")
}
