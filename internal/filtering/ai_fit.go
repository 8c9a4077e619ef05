package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/logger"
	"github.com/spigell/profile-scout/internal/profile"
)

type aiFitFilter struct {
	disabled    bool
	reason      string
	config      *AIConfig
	excludeFile string
}

// NewAIFit creates the AI-based filtering step.
func NewAIFit() Filter {
	return &aiFitFilter{}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return !f.disabled }

func (f *aiFitFilter) Validate(cfg *Config) error {
	f.config = nil
	f.excludeFile = ""
	if cfg != nil {
		f.config = cfg.AI
		f.excludeFile = strings.TrimSpace(cfg.ExcludeFile)
	}
	if !f.IsEnabled() {
		return nil
	}
	if cfg == nil || cfg.AI == nil {
		return errors.New("ai configuration is required when ai filter is enabled")
	}
	if cfg.AI.Gemini == nil {
		return errors.New("gemini configuration is required when ai filter is enabled")
	}
	if strings.TrimSpace(cfg.AI.Gemini.Model) == "" {
		return errors.New("gemini model is required when ai filter is enabled")
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, c *profile.Candidates) (*profile.Candidates, Step, error) {
	initial := c.Len()
	if deps.Matcher == nil {
		deps.Logger.Info("ai matcher is not configured; skipping ai_fit filter")
		return c, unchanged(c), nil
	}

	rejected := &profile.ExcludedCandidates{}
	approved := make([]*profile.Candidate, 0, initial)

	for _, candidate := range c.Items {
		if err := ctx.Err(); err != nil {
			return c, Step{}, err
		}

		log := logger.WithFields(deps.Logger, logger.CandidateFields(candidate)...)

		persona := deps.Personas.FindByName(candidate.Persona)
		if persona == nil {
			log.Warn("candidate persona is unknown; skipping AI evaluation")
			candidate.AI = &profile.AIAssessment{Error: fmt.Sprintf("persona %q is not configured", candidate.Persona)}
			approved = append(approved, candidate)
			continue
		}

		assessment, err := deps.Matcher.Evaluate(ctx, persona, deps.ICP, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return c, Step{}, ctx.Err()
			}
			log.Warn("AI evaluation failed", zap.Error(err))
			candidate.AI = &profile.AIAssessment{Error: err.Error()}
			approved = append(approved, candidate)
			continue
		}

		candidate.AI = &profile.AIAssessment{
			Fit:    assessment.Fit,
			Score:  assessment.Score,
			Reason: assessment.Reason,
			Raw:    assessment.Raw,
		}

		if !assessment.Fit {
			log.Info("candidate rejected by AI provider",
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			single := &profile.Candidates{Items: []*profile.Candidate{candidate}}
			rejected.Append(single.ToExcluded(profile.ExcludeActorAI, assessment.Reason))
			continue
		}

		log.Info("candidate approved by AI", zap.Float64("ai_score", assessment.Score))
		approved = append(approved, candidate)
	}

	c.Items = approved

	if err := f.persistRejected(rejected); err != nil {
		return c, Step{}, err
	}

	deps.Logger.Info("AI filtering completed",
		zap.Int("initial_candidates", initial),
		zap.Int("approved_candidates", len(approved)),
	)

	return c, Step{Initial: initial, Dropped: initial - len(approved), Left: len(approved)}, nil
}

func (f *aiFitFilter) persistRejected(rejected *profile.ExcludedCandidates) error {
	if f.excludeFile == "" || len(rejected.Items) == 0 {
		return nil
	}

	existing, err := profile.GetExcludedCandidatesFromFile(f.excludeFile)
	if err != nil {
		return fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	existing.Append(rejected)
	if err := existing.ToFile(f.excludeFile); err != nil {
		return fmt.Errorf("saving AI rejections to exclude file: %w", err)
	}
	return nil
}

func (f *aiFitFilter) Status() Status {
	status := Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
	if f.config == nil {
		return status
	}

	details := map[string]string{
		"provider": f.config.Provider,
	}
	if f.config.MinimumFitScore > 0 {
		details["minimum_fit_score"] = strconv.FormatFloat(f.config.MinimumFitScore, 'f', -1, 64)
	}
	if f.config.Gemini != nil {
		details["model"] = f.config.Gemini.Model
	}
	status.Details = details
	return status
}
