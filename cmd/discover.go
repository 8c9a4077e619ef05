package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/discovery"
	"github.com/spigell/profile-scout/internal/profile"
	"github.com/spigell/profile-scout/internal/secrets"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search public profiles for the configured personas, score and rank them",
	Run: func(cmd *cobra.Command, _ []string) {
		discover(cmd)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringP("persona", "p", "", "search only for the persona with this name")
	discoverCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking without asking what to do next")
	discoverCmd.Flags().IntP("limit", "l", 0, "maximum number of profiles per persona (overrides search.limit)")
	discoverCmd.Flags().String("location", "", "location added to search queries (overrides search.location)")
}

func discover(cmd *cobra.Command) {
	s := newSession(cmd)
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("persona")
	personas, err := s.selectPersonas(name)
	if err != nil {
		s.logger.Fatal("selecting personas", zap.Error(err))
	}

	client := newSearchClient(cmd, s)
	params := searchParams(cmd, s.config.Search)

	all := &profile.Candidates{}
	for _, persona := range personas {
		s.logger.Info("starting the search", zap.String("persona", persona.Name), zap.Strings("titles", persona.Titles))

		found, err := client.SearchProfiles(persona, params)
		if err != nil {
			s.logger.Fatal("searching profiles", zap.String("persona", persona.Name), zap.Error(err))
		}

		if err := s.score(ctx, persona, found); err != nil {
			s.logger.Fatal("scoring candidates", zap.Error(err))
		}

		s.logger.Info("getting candidates", zap.String("persona", persona.Name), zap.Int("count", found.Len()))
		all.Append(found)
	}

	s.finish(cmd, personas, all)
}

func newSearchClient(cmd *cobra.Command, s *session) *discovery.Client {
	cfg := s.config.Search

	apiKey, err := secrets.Load(secrets.Source{
		Name: "google api key",
		File: cfg.APIKeyFile,
		Env:  "GOOGLE_API_KEY",
	})
	if err != nil {
		s.logger.Warn("loading google api key",
			zap.Error(err),
			zap.String("hint", "set GOOGLE_API_KEY_FILE environment variable or the 'search.api-key-file' key in the configuration file"),
		)
	}

	client := discovery.New(cmd.Context(), s.logger.Named("discovery"), apiKey, strings.TrimSpace(cfg.CSEID))
	if cfg.Endpoint != "" {
		client.APIURL = cfg.Endpoint
	}
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return client
}

func searchParams(cmd *cobra.Command, cfg *SearchConfig) *discovery.SearchParams {
	params := &discovery.SearchParams{Location: cfg.Location, Limit: cfg.Limit}

	if cmd.Flags().Changed("limit") {
		params.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Changed("location") {
		params.Location, _ = cmd.Flags().GetString("location")
	}

	return params
}
