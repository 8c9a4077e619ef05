package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	CandidateURLField     = "URL"
	CandidateCompanyField = "Company"
)

type Candidates struct {
	Items []*Candidate `json:"items"`
}

type Candidate struct {
	ID               string `json:"id,omitempty" mapstructure:"id"`
	LinkedInURL      string `json:"linkedin_url" mapstructure:"linkedin_url"`
	InferredName     string `json:"inferred_name,omitempty" mapstructure:"inferred_name"`
	InferredTitle    string `json:"inferred_title,omitempty" mapstructure:"inferred_title"`
	InferredLocation string `json:"inferred_location,omitempty" mapstructure:"inferred_location"`
	InferredCompany  string `json:"inferred_company,omitempty" mapstructure:"inferred_company"`
	ResultSnippet    string `json:"result_snippet" mapstructure:"result_snippet"`
	Query            string `json:"query,omitempty" mapstructure:"query"`

	// Filled in after scoring.
	Persona        string          `json:"persona,omitempty" mapstructure:"persona"`
	Scores         *Scores         `json:"scores,omitempty" mapstructure:"scores"`
	Explainability *Explainability `json:"explainability,omitempty" mapstructure:"explainability"`
	AI             *AIAssessment   `json:"ai,omitempty" mapstructure:"ai"`
}

// Scores is the persisted form of a score vector.
type Scores struct {
	Semantic float64 `json:"semantic"`
	Role     float64 `json:"role"`
	Industry float64 `json:"industry"`
	Geo      float64 `json:"geo"`
	Final    float64 `json:"final"`
}

type Explainability struct {
	KeywordsMatched      []string           `json:"keywords_matched"`
	FeatureContributions map[string]float64 `json:"feature_contributions"`
}

// AIAssessment keeps the outcome of the optional AI review.
type AIAssessment struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Raw    string  `json:"raw,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// FinalScore returns the final score or -1 for unscored candidates.
func (c *Candidate) FinalScore() float64 {
	if c == nil || c.Scores == nil {
		return -1
	}
	return c.Scores.Final
}

func (c *Candidate) GetStringField(name string) string {
	switch name {
	case CandidateURLField:
		return c.LinkedInURL
	case CandidateCompanyField:
		return c.InferredCompany
	default:
		return ""
	}
}

// LoadCandidatesFromFile reads a JSON array of candidates.
func LoadCandidatesFromFile(path string) (*Candidates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := ValidateCandidatesJSON(data); err != nil {
		return nil, fmt.Errorf("candidates file %q: %w", path, err)
	}

	var items []*Candidate
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse candidates file %q: %w", path, err)
	}

	return &Candidates{Items: items}, nil
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByURL(url string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.LinkedInURL == url {
			return candidate
		}
	}
	return nil
}

func (c *Candidates) URLs() []string {
	urls := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		urls = append(urls, candidate.LinkedInURL)
	}
	return urls
}

// Exclude removes every candidate whose field equals one of targets (case-insensitive)
// and returns the URLs of the removed candidates.
func (c *Candidates) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	var excluded []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		value := strings.ToLower(strings.TrimSpace(candidate.GetStringField(name)))
		if _, ok := set[value]; ok && value != "" {
			excluded = append(excluded, candidate.LinkedInURL)
			continue
		}
		kept = append(kept, candidate)
	}
	c.Items = kept

	return excluded
}

// Append adds candidates from other, keeping the better scored entry when a URL repeats.
func (c *Candidates) Append(other *Candidates) {
	if other == nil {
		return
	}

	index := make(map[string]int, len(c.Items))
	for i, candidate := range c.Items {
		index[candidate.LinkedInURL] = i
	}

	for _, candidate := range other.Items {
		i, ok := index[candidate.LinkedInURL]
		if !ok {
			index[candidate.LinkedInURL] = len(c.Items)
			c.Items = append(c.Items, candidate)
			continue
		}
		if candidate.FinalScore() > c.Items[i].FinalScore() {
			c.Items[i] = candidate
		}
	}
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups candidates by inferred company.
func (c *Candidates) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, candidate := range c.Items {
		key := candidate.InferredCompany
		if key == "" {
			key = "unknown"
		}

		entry := map[string]string{
			"name":     candidate.InferredName,
			"title":    candidate.InferredTitle,
			"url":      candidate.LinkedInURL,
			"location": candidate.InferredLocation,
			"persona":  candidate.Persona,
		}
		if candidate.Scores != nil {
			entry["score"] = fmt.Sprintf("%.3f", candidate.Scores.Final)
		}
		if candidate.Explainability != nil && len(candidate.Explainability.KeywordsMatched) > 0 {
			matched := append([]string(nil), candidate.Explainability.KeywordsMatched...)
			sort.Strings(matched)
			entry["keywords"] = strings.Join(matched, ", ")
		}
		if candidate.AI != nil {
			if candidate.AI.Error != "" {
				entry["ai_error"] = candidate.AI.Error
			} else {
				entry["ai_fit"] = fmt.Sprintf("%t", candidate.AI.Fit)
				entry["ai_score"] = fmt.Sprintf("%.2f", candidate.AI.Score)
				entry["ai_reason"] = candidate.AI.Reason
			}
		}

		report[key] = append(report[key], entry)
	}
	return report
}
