package profile

import (
	"encoding/json"
	"os"
	"time"
)

const (
	ExcludeActorUser = "user"
	ExcludeActorAI   = "ai"
)

type ExcludedCandidates struct {
	Items []*ExcludedCandidate `json:"items"`
}

type ExcludedCandidate struct {
	URL        string    `json:"url"`
	Name       string    `json:"name,omitempty"`
	Company    string    `json:"company,omitempty"`
	Persona    string    `json:"persona,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedBy string    `json:"excluded_by,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

func (c *Candidates) ToExcluded(actor, reason string) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	for _, candidate := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			URL:        candidate.LinkedInURL,
			Name:       candidate.InferredName,
			Company:    candidate.InferredCompany,
			Persona:    candidate.Persona,
			Reason:     reason,
			ExcludedBy: actor,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedCandidatesFromFile loads the exclude list. A missing or empty file is an empty list.
func GetExcludedCandidatesFromFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedCandidates) URLs() []string {
	urls := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
