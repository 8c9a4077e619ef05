package scoring

import (
	"strings"

	"github.com/spigell/profile-scout/internal/profile"
)

// Neutral and fallback component values.
const (
	neutralScore = 0.5

	roleExactMatch   = 1.0
	rolePartialCap   = 0.8
	roleUnknown      = 0.3
	roleNoMatch      = 0.2
	industryDefault  = neutralScore
	geoUnknown       = neutralScore
	geoKnownLocation = 0.7

	maxMatchedKeywords = 10
)

// semanticScore is the share of persona keywords found in the snippet.
// A persona without keywords gives no signal and scores neutral.
func semanticScore(snippet string, persona *profile.Persona) float64 {
	if len(persona.Keywords) == 0 {
		return neutralScore
	}

	text := strings.ToLower(snippet)
	matches := 0
	for _, keyword := range persona.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			matches++
		}
	}

	return min(float64(matches)/float64(len(persona.Keywords)), 1.0)
}

// roleScore compares the candidate title with persona titles in priority order.
// The first persona title that matches at all decides the score.
func roleScore(candidateTitle string, personaTitles []string) float64 {
	if candidateTitle == "" || len(personaTitles) == 0 {
		return roleUnknown
	}

	title := strings.ToLower(candidateTitle)
	candidateWords := wordSet(title)

	for _, personaTitle := range personaTitles {
		target := strings.ToLower(personaTitle)
		if strings.Contains(title, target) {
			return roleExactMatch
		}

		targetWords := wordSet(target)
		overlap := 0
		for word := range targetWords {
			if _, ok := candidateWords[word]; ok {
				overlap++
			}
		}

		if overlap > 0 {
			return min(float64(overlap)/float64(len(targetWords)), rolePartialCap)
		}
	}

	return roleNoMatch
}

// industryScore is a placeholder. Company industry signals are not compared
// against the ICP industry and sub-industries yet.
func industryScore(_ *profile.Candidate, _ *profile.ICP) float64 {
	return industryDefault
}

// geoScore is a placeholder. A known location is not matched against the ICP
// firmographics yet, it only scores above the unknown case.
func geoScore(location string, _ *profile.ICP) float64 {
	if location == "" {
		return geoUnknown
	}
	return geoKnownLocation
}

// matchedKeywords lists persona keywords and goals found in the snippet.
// Duplicates are dropped and the list is capped at maxMatchedKeywords.
func matchedKeywords(snippet string, persona *profile.Persona) []string {
	text := strings.ToLower(snippet)

	seen := make(map[string]struct{})
	matched := make([]string, 0)
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		matched = append(matched, term)
	}

	for _, keyword := range persona.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			add(keyword)
		}
	}
	for _, goal := range persona.Goals {
		if strings.Contains(text, strings.ToLower(goal)) {
			add(goal)
		}
	}

	if len(matched) > maxMatchedKeywords {
		matched = matched[:maxMatchedKeywords]
	}

	return matched
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
