package filtering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/profile"
)

// keep drops every candidate for which fn returns false and reports the dropped URLs.
func keep(c *profile.Candidates, fn func(*profile.Candidate) bool) []string {
	var dropped []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if fn(candidate) {
			kept = append(kept, candidate)
			continue
		}
		dropped = append(dropped, candidate.LinkedInURL)
	}
	c.Items = kept
	return dropped
}

type scoreRangeFilter struct {
	disabled bool
	reason   string
	min      float64
	max      float64
}

// NewScoreRange creates a filter that keeps candidates whose final score lies in [min, max].
// A zero max means no upper bound.
func NewScoreRange() Filter {
	return &scoreRangeFilter{}
}

func (f *scoreRangeFilter) Name() string { return "score_range" }

func (f *scoreRangeFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *scoreRangeFilter) IsEnabled() bool { return !f.disabled }

func (f *scoreRangeFilter) Validate(cfg *Config) error {
	f.min, f.max = 0, 0
	if cfg == nil {
		return nil
	}
	f.min, f.max = cfg.MinScore, cfg.MaxScore

	if math.IsNaN(f.min) || math.IsNaN(f.max) {
		return errors.New("score bounds must be numbers")
	}
	if f.min < 0 || f.min > 1 || f.max < 0 || f.max > 1 {
		return fmt.Errorf("score bounds must be within [0, 1], got min=%v max=%v", f.min, f.max)
	}
	if f.max > 0 && f.min > f.max {
		return fmt.Errorf("min score %v is greater than max score %v", f.min, f.max)
	}
	return nil
}

func (f *scoreRangeFilter) Apply(_ context.Context, deps Deps, c *profile.Candidates) (*profile.Candidates, Step, error) {
	initial := c.Len()
	if f.min == 0 && f.max == 0 {
		return c, unchanged(c), nil
	}

	dropped := keep(c, func(candidate *profile.Candidate) bool {
		score := candidate.FinalScore()
		if score < f.min {
			return false
		}
		return f.max == 0 || score <= f.max
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates outside of score range",
			zap.Float64("min_score", f.min),
			zap.Float64("max_score", f.max),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *scoreRangeFilter) Status() Status {
	details := map[string]string{
		"min_score": strconv.FormatFloat(f.min, 'f', -1, 64),
	}
	if f.max > 0 {
		details["max_score"] = strconv.FormatFloat(f.max, 'f', -1, 64)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type locationFilter struct {
	disabled bool
	reason   string
	location string
}

// NewLocation creates a filter that keeps candidates whose inferred location mentions the configured one.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *locationFilter) IsEnabled() bool { return !f.disabled }

func (f *locationFilter) Validate(cfg *Config) error {
	f.location = ""
	if cfg != nil {
		f.location = strings.ToLower(strings.TrimSpace(cfg.Location))
	}
	return nil
}

func (f *locationFilter) Apply(_ context.Context, deps Deps, c *profile.Candidates) (*profile.Candidates, Step, error) {
	initial := c.Len()
	if f.location == "" {
		return c, unchanged(c), nil
	}

	dropped := keep(c, func(candidate *profile.Candidate) bool {
		return strings.Contains(strings.ToLower(candidate.InferredLocation), f.location)
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates by location",
			zap.String("location", f.location),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *locationFilter) Status() Status {
	details := map[string]string{}
	if f.location != "" {
		details["location"] = f.location
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type companiesFilter struct {
	companies []string
}

// NewCompanies creates a filter that removes candidates working at configured companies.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		f.companies = append(f.companies, cfg.ExcludeCompanies...)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, c *profile.Candidates) (*profile.Candidates, Step, error) {
	initial := c.Len()
	if len(f.companies) == 0 {
		return c, unchanged(c), nil
	}

	excluded := c.Exclude(profile.CandidateCompanyField, f.companies)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type titlePatternFilter struct {
	disabled bool
	reason   string
	pattern  *regexp.Regexp
}

// NewTitlePattern creates a filter that keeps candidates whose inferred title matches a regular expression.
func NewTitlePattern() Filter {
	return &titlePatternFilter{}
}

func (f *titlePatternFilter) Name() string { return "title_pattern" }

func (f *titlePatternFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *titlePatternFilter) IsEnabled() bool { return !f.disabled }

func (f *titlePatternFilter) Validate(cfg *Config) error {
	f.pattern = nil
	if cfg == nil || strings.TrimSpace(cfg.TitlePattern) == "" {
		return nil
	}

	re, err := regexp.Compile(cfg.TitlePattern)
	if err != nil {
		return fmt.Errorf("compile title pattern: %w", err)
	}
	f.pattern = re
	return nil
}

func (f *titlePatternFilter) Apply(_ context.Context, deps Deps, c *profile.Candidates) (*profile.Candidates, Step, error) {
	initial := c.Len()
	if f.pattern == nil {
		return c, unchanged(c), nil
	}

	dropped := keep(c, func(candidate *profile.Candidate) bool {
		return f.pattern.MatchString(candidate.InferredTitle)
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates by title pattern",
			zap.String("pattern", f.pattern.String()),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *titlePatternFilter) Status() Status {
	details := map[string]string{}
	if f.pattern != nil {
		details["pattern"] = f.pattern.String()
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *profile.Candidates) (*profile.Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, unchanged(c), nil
	}

	excluded, err := profile.GetExcludedCandidatesFromFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	removed := c.Exclude(profile.CandidateURLField, excluded.URLs())
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
