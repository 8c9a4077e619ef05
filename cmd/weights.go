package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Validate and print the effective scoring weights",
	Run: func(cmd *cobra.Command, _ []string) {
		weights(cmd)
	},
}

func init() {
	rootCmd.AddCommand(weightsCmd)

	weightsCmd.Flags().StringToStringP("set", "s", nil, "override weights on top of the config, e.g. --set semantic=0.6,role=0.15")
}

func weights(cmd *cobra.Command) {
	s := newSession(cmd)

	overrides, _ := cmd.Flags().GetStringToString("set")
	if len(overrides) > 0 {
		update, err := parseWeights(overrides)
		if err != nil {
			s.logger.Fatal("parsing weights", zap.Error(err))
		}
		if err := s.engine.UpdateWeights(update); err != nil {
			s.logger.Fatal("updating weights", zap.Error(err))
		}
	}

	active := s.engine.Weights()
	pretty, _ := json.MarshalIndent(map[string]any{
		"weights": active.Map(),
		"sum":     strconv.FormatFloat(active.Sum(), 'f', 3, 64),
	}, "", "  ")

	fmt.Println(string(pretty))
}

func parseWeights(raw map[string]string) (map[string]float64, error) {
	update := make(map[string]float64, len(raw))
	for key, value := range raw {
		weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", key, err)
		}
		update[key] = weight
	}
	return update, nil
}
