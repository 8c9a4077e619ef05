package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/profile-scout/internal/profile"
)

const (
	app = "profile-scout"
)

type Config struct {
	ICP         *profile.ICP     `mapstructure:"icp"`
	Personas    profile.Personas `mapstructure:"personas" validate:"omitempty,dive"`
	Scoring     *ScoringConfig   `mapstructure:"scoring"`
	Search      *SearchConfig    `mapstructure:"search"`
	Filters     *FiltersConfig   `mapstructure:"filters"`
	ExcludeFile string           `mapstructure:"exclude-file"`
	AI          *AIConfig        `mapstructure:"ai"`
}

type ScoringConfig struct {
	// Weights may name only the components to override.
	Weights map[string]float64 `mapstructure:"weights"`
	Workers int                `mapstructure:"workers" validate:"gte=0"`
}

type SearchConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	CSEID      string `mapstructure:"cse-id"`
	Location   string `mapstructure:"location"`
	Limit      int    `mapstructure:"limit" validate:"gte=0,lte=100"`
	Endpoint   string `mapstructure:"endpoint"`
	UserAgent  string `mapstructure:"user-agent"`
}

type FiltersConfig struct {
	MinScore         float64  `mapstructure:"min-score" validate:"gte=0,lte=1"`
	MaxScore         float64  `mapstructure:"max-score" validate:"gte=0,lte=1"`
	Location         string   `mapstructure:"location"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	TitlePattern     string   `mapstructure:"title-pattern"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score" validate:"gte=0,lte=1"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "profile-scout finds, scores and ranks public profiles matching your buyer personas",
	}
)

// Execute executes the root command. Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	envs := map[string]string{
		"search.api-key-file":    "GOOGLE_API_KEY_FILE",
		"search.cse-id":          "GOOGLE_CSE_ID",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is profile-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("exclude-file", rootCmd.PersistentFlags().Lookup("exclude-file"))
}

func initConfig() {
	// Only the scoring commands need a config. Help and version work without it.
	if discoverCmd.CalledAs() == "" && scoreCmd.CalledAs() == "" && weightsCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks value ranges and required persona fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
