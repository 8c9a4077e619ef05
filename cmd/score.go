package cmd

import (
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/profile"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank candidates from a JSON file",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("candidates", "c", "", "JSON file with an array of candidates")
	scoreCmd.Flags().StringP("persona", "p", "", "score every candidate against the persona with this name")
	scoreCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking without asking what to do next")

	scoreCmd.MarkFlagRequired("candidates")
}

func score(cmd *cobra.Command) {
	s := newSession(cmd)
	ctx := cmd.Context()

	path, _ := cmd.Flags().GetString("candidates")
	candidates, err := profile.LoadCandidatesFromFile(path)
	if err != nil {
		s.logger.Fatal("loading candidates", zap.String("path", path), zap.Error(err))
	}

	s.logger.Info("getting candidates", zap.String("path", path), zap.Int("count", candidates.Len()))

	name, _ := cmd.Flags().GetString("persona")
	personas, err := s.selectPersonas(name)
	if err != nil {
		s.logger.Fatal("selecting personas", zap.Error(err))
	}

	force := name != ""
	groups, unassigned := groupByPersona(personas, candidates, force)

	scored := &profile.Candidates{}
	for i, persona := range personas {
		if err := s.score(ctx, persona, groups[i]); err != nil {
			s.logger.Fatal("scoring candidates", zap.Error(err))
		}
		scored.Append(groups[i])
	}

	// Candidates without a known persona keep their best match.
	if unassigned.Len() > 0 {
		s.logger.Info("scoring candidates against every persona", zap.Int("count", unassigned.Len()))
	}
	for _, persona := range personas {
		clones := cloneCandidates(unassigned)
		if err := s.score(ctx, persona, clones); err != nil {
			s.logger.Fatal("scoring candidates", zap.Error(err))
		}
		scored.Append(clones)
	}

	s.finish(cmd, personas, scored)
}

// groupByPersona splits candidates by the persona they name. With force set
// every candidate goes to the first persona.
func groupByPersona(personas profile.Personas, candidates *profile.Candidates, force bool) ([]*profile.Candidates, *profile.Candidates) {
	groups := make([]*profile.Candidates, len(personas))
	for i := range groups {
		groups[i] = &profile.Candidates{}
	}
	unassigned := &profile.Candidates{}

	for _, candidate := range candidates.Items {
		if force {
			groups[0].Items = append(groups[0].Items, candidate)
			continue
		}

		idx := -1
		if found := personas.FindByName(candidate.Persona); found != nil {
			idx = slices.Index(personas, found)
		}

		if idx == -1 {
			unassigned.Items = append(unassigned.Items, candidate)
			continue
		}
		groups[idx].Items = append(groups[idx].Items, candidate)
	}

	return groups, unassigned
}

func cloneCandidates(c *profile.Candidates) *profile.Candidates {
	clones := &profile.Candidates{Items: make([]*profile.Candidate, 0, c.Len())}
	for _, candidate := range c.Items {
		clone := *candidate
		clones.Items = append(clones.Items, &clone)
	}
	return clones
}
