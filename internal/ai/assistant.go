// Package ai defines the optional LLM review of scored candidates.
package ai

import (
	"context"

	"github.com/spigell/profile-scout/internal/profile"
)

type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

// Matcher reviews one candidate against the persona and ICP it was scored for.
type Matcher interface {
	Evaluate(ctx context.Context, persona *profile.Persona, icp *profile.ICP, candidate *profile.Candidate) (*FitAssessment, error)
}
