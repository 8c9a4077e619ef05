package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/ai"
	"github.com/spigell/profile-scout/internal/ai/gemini"
	"github.com/spigell/profile-scout/internal/filtering"
	"github.com/spigell/profile-scout/internal/logger"
	"github.com/spigell/profile-scout/internal/profile"
	"github.com/spigell/profile-scout/internal/scoring"
	"github.com/spigell/profile-scout/internal/secrets"
)

// session carries what every scoring command needs.
type session struct {
	config *Config
	logger *zap.Logger
	engine *scoring.Engine
}

func newSession(cmd *cobra.Command) *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the profile-scout", zap.String("version", version), zap.String("command", cmd.Name()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	engine, err := newEngine(config.Scoring, logger.Named("scoring"))
	if err != nil {
		logger.Fatal("configuring scoring weights", zap.Error(err))
	}

	return &session{config: config, logger: logger, engine: engine}
}

// newEngine applies configured weights over the defaults.
func newEngine(cfg *ScoringConfig, logger *zap.Logger) (*scoring.Engine, error) {
	engine := scoring.NewDefaultEngine(logger)
	if cfg == nil || len(cfg.Weights) == 0 {
		return engine, nil
	}

	if err := engine.UpdateWeights(cfg.Weights); err != nil {
		return nil, err
	}
	return engine, nil
}

// selectPersonas returns the persona named by the flag or every configured persona.
func (s *session) selectPersonas(name string) (profile.Personas, error) {
	if len(s.config.Personas) == 0 {
		return nil, errors.New("no personas configured")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return s.config.Personas, nil
	}

	persona := s.config.Personas.FindByName(name)
	if persona == nil {
		return nil, fmt.Errorf("persona %q not found, configured: %s", name, strings.Join(s.config.Personas.Names(), ", "))
	}
	return profile.Personas{persona}, nil
}

func (s *session) score(ctx context.Context, persona *profile.Persona, candidates *profile.Candidates) error {
	return scoring.ScoreAll(ctx, s.engine, persona, s.config.ICP, candidates, s.config.Scoring.Workers)
}

// rescore applies the current weights to candidates again, each against its own persona.
func (s *session) rescore(candidates *profile.Candidates) {
	for _, candidate := range candidates.Items {
		persona := s.config.Personas.FindByName(candidate.Persona)
		if persona == nil {
			continue
		}
		s.engine.Apply(candidate, persona, s.config.ICP)
	}
	scoring.Rank(candidates)
}

func (s *session) filter(ctx context.Context, personas profile.Personas, candidates *profile.Candidates) (*profile.Candidates, error) {
	steps := filtering.Default()

	matcher, err := s.prepareMatcher(ctx)
	if err != nil {
		s.logger.Warn("skipping AI filter", zap.Error(err))
		filtering.DisableByName(steps, "ai_fit", err.Error())
	} else if matcher == nil {
		filtering.DisableByName(steps, "ai_fit", "ai is disabled in config")
	}

	deps := filtering.Deps{
		Logger:   s.logger.Named("filtering"),
		Personas: personas,
		ICP:      s.config.ICP,
		Matcher:  matcher,
	}

	filtered, err := filtering.Run(ctx, s.filtersConfig(), deps, steps, candidates)
	if err != nil {
		return nil, err
	}

	for _, status := range filtering.Describe(steps) {
		s.logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return filtered, nil
}

func (s *session) filtersConfig() *filtering.Config {
	cfg := &filtering.Config{
		MinScore:         s.config.Filters.MinScore,
		MaxScore:         s.config.Filters.MaxScore,
		Location:         s.config.Filters.Location,
		ExcludeCompanies: s.config.Filters.ExcludeCompanies,
		TitlePattern:     s.config.Filters.TitlePattern,
		ExcludeFile:      viper.GetString("exclude-file"),
	}

	if s.config.AI != nil {
		cfg.AI = &filtering.AIConfig{
			Enabled:         s.config.AI.Enabled,
			Provider:        s.config.AI.Provider,
			MinimumFitScore: s.config.AI.MinimumFitScore,
		}
		if s.config.AI.Gemini != nil {
			model := s.config.AI.Gemini.Model
			if strings.TrimSpace(model) == "" {
				model = gemini.DefaultModel
			}
			cfg.AI.Gemini = &filtering.GeminiConfig{
				Model:        model,
				MaxRetries:   s.config.AI.Gemini.MaxRetries,
				MaxLogLength: s.config.AI.Gemini.MaxLogLength,
			}
		}
	}

	return cfg
}

// prepareMatcher returns nil without error when AI review is disabled.
func (s *session) prepareMatcher(ctx context.Context) (ai.Matcher, error) {
	cfg := s.config.AI
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai filter is enabled")
	}

	matcher, err := newAIMatcher(ctx, cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}
	return matcher, nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, base *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithFields(base.Named("gemini"), logger.CommonFields("gemini", cfg.Gemini.Model)...).
		With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.WithFields(base.Named("gemini"), logger.CommonFields("gemini", generator.Model())...).
		With(zap.Float64("minimum_fit_score", minScore))

	return gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger), nil
}

// finish filters, ranks and hands the candidates over to review.
func (s *session) finish(cmd *cobra.Command, personas profile.Personas, candidates *profile.Candidates) {
	ctx := cmd.Context()

	if candidates.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	filtered, err := s.filter(ctx, personas, candidates)
	if err != nil {
		s.logger.Fatal("filtering failed", zap.Error(err))
	}

	if filtered.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	scoring.Rank(filtered)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if err := review(s, filtered, autoApprove); err != nil {
		s.logger.Fatal("exiting", zap.Error(err))
	}
}
