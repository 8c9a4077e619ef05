// Package scoring ranks discovered candidates against a persona and an ICP.
//
// Every candidate gets four component scores in [0,1] (semantic, role,
// industry, geo) combined into a final score with a tunable weight set, and an
// explanation listing matched keywords and the contribution of each component.
// Scoring is deterministic and never fails: missing inputs fall back to
// neutral values.
package scoring

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/profile"
)

// Engine scores candidates with its current weight set.
// It is safe for concurrent use; weight updates are serialized against scoring.
type Engine struct {
	mu      sync.RWMutex
	weights WeightSet
	logger  *zap.Logger
}

// NewEngine creates an engine with the given weights.
func NewEngine(weights WeightSet, logger *zap.Logger) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{weights: weights, logger: logger}, nil
}

// NewDefaultEngine creates an engine with DefaultWeights.
func NewDefaultEngine(logger *zap.Logger) *Engine {
	engine, _ := NewEngine(DefaultWeights(), logger)
	return engine
}

// Weights returns a copy of the active weight set.
func (e *Engine) Weights() WeightSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// UpdateWeights merges the provided weights into the active set.
// The merged set must be valid, otherwise the update is rejected as a whole
// and the previous weights stay active.
func (e *Engine) UpdateWeights(update map[string]float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged, err := e.weights.Merge(update)
	if err != nil {
		e.logger.Warn("rejected scoring weights update", zap.Any("update", update), zap.Error(err))
		return err
	}

	if err := merged.Validate(); err != nil {
		e.logger.Warn("rejected scoring weights update", zap.Any("update", update), zap.Error(err))
		return err
	}

	e.weights = merged

	e.logger.Info("updated scoring weights",
		zap.Float64(Semantic, merged.Semantic),
		zap.Float64(Role, merged.Role),
		zap.Float64(Industry, merged.Industry),
		zap.Float64(Geo, merged.Geo),
	)

	return nil
}

// Score computes the score vector and explanation of one candidate.
// Nil persona or ICP are treated as empty.
func (e *Engine) Score(candidate *profile.Candidate, persona *profile.Persona, icp *profile.ICP) (profile.Scores, profile.Explainability) {
	if candidate == nil {
		candidate = &profile.Candidate{}
	}
	if persona == nil {
		persona = &profile.Persona{}
	}
	if icp == nil {
		icp = &profile.ICP{}
	}

	weights := e.Weights()

	components := map[string]float64{
		Semantic: semanticScore(candidate.ResultSnippet, persona),
		Role:     roleScore(candidate.InferredTitle, persona.Titles),
		Industry: industryScore(candidate, icp),
		Geo:      geoScore(candidate.InferredLocation, icp),
	}

	final := 0.0
	contributions := make(map[string]float64, len(Components))
	for _, component := range Components {
		weight, _ := weights.Get(component)
		contribution := weight * components[component]
		final += contribution
		contributions[component] = round3(contribution)
	}

	scores := profile.Scores{
		Semantic: round3(components[Semantic]),
		Role:     round3(components[Role]),
		Industry: round3(components[Industry]),
		Geo:      round3(components[Geo]),
		Final:    round3(final),
	}

	explainability := profile.Explainability{
		KeywordsMatched:      matchedKeywords(candidate.ResultSnippet, persona),
		FeatureContributions: contributions,
	}

	return scores, explainability
}

// Apply scores the candidate in place, recording the persona it was scored against.
func (e *Engine) Apply(candidate *profile.Candidate, persona *profile.Persona, icp *profile.ICP) {
	scores, explainability := e.Score(candidate, persona, icp)
	candidate.Scores = &scores
	candidate.Explainability = &explainability
	if persona != nil {
		candidate.Persona = persona.Name
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
