package discovery

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/profile"
)

const (
	sitePrefix = "site:linkedin.com/in/"
	// Only the leading persona titles and keywords go into queries.
	maxQueryTitles   = 2
	maxQueryKeywords = 3
)

// SearchParams narrows a persona search.
type SearchParams struct {
	Location string `mapstructure:"location"`
	Limit    int    `mapstructure:"limit"`
}

// BuildQueries returns one query per leading persona title, optionally narrowed
// by location and the primary persona keyword.
func BuildQueries(persona *profile.Persona, location string) []string {
	if persona == nil {
		return nil
	}

	titles := persona.Titles[:min(len(persona.Titles), maxQueryTitles)]
	keywords := persona.Keywords[:min(len(persona.Keywords), maxQueryKeywords)]
	location = strings.TrimSpace(location)

	queries := make([]string, 0, len(titles))
	for _, title := range titles {
		parts := []string{fmt.Sprintf("%s %q", sitePrefix, title)}

		if location != "" {
			parts = append(parts, fmt.Sprintf("%q", location))
		}

		if len(keywords) > 0 {
			parts = append(parts, fmt.Sprintf("%q", keywords[0]))
		}

		queries = append(queries, strings.Join(parts, " "))
	}

	return queries
}

// SearchProfiles runs the persona queries and returns unique candidates, at most params.Limit.
// Failing queries are logged and skipped; without credentials nothing is searched.
func (c *Client) SearchProfiles(persona *profile.Persona, params *SearchParams) (*profile.Candidates, error) {
	if params == nil {
		params = &SearchParams{}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = maxPerRequest
	}

	if !c.configured() {
		c.logger.Warn("search api credentials are not configured; skipping discovery")
		return &profile.Candidates{}, nil
	}

	queries := BuildQueries(persona, params.Location)
	if len(queries) > maxQueriesPerPersona {
		queries = queries[:maxQueriesPerPersona]
	}

	var results []*SearchResult
	for _, query := range queries {
		if err := c.ctx.Err(); err != nil {
			return nil, err
		}

		found, err := c.execute(query, limit)
		if err != nil {
			c.logger.Error("search query failed", zap.String("query", query), zap.Error(err))
			continue
		}

		c.logger.Debug("search query done", zap.String("query", query), zap.Int("results", len(found)))
		results = append(results, found...)
	}

	seen := make(map[string]struct{}, len(results))
	candidates := &profile.Candidates{}
	for _, result := range results {
		if result == nil || result.Link == "" {
			continue
		}
		if _, ok := seen[result.Link]; ok {
			continue
		}
		seen[result.Link] = struct{}{}

		candidate := ParseResult(result)
		if persona != nil {
			candidate.Persona = persona.Name
		}
		candidates.Items = append(candidates.Items, candidate)

		if candidates.Len() >= limit {
			break
		}
	}

	return candidates, nil
}
