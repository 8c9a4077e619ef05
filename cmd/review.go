package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profile-scout/internal/profile"
	"github.com/spigell/profile-scout/internal/scoring"
)

const (
	PromptShowRanking         = "Show ranking"
	PromptReportByCompanies   = "Report by companies"
	PromptCandidatesToFile    = "Dump candidates to file"
	PromptAppendToExcludeFile = "Append all candidates to exclude file"
	PromptTuneWeights         = "Tune scoring weights"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowRanking, PromptReportByCompanies, PromptCandidatesToFile, PromptAppendToExcludeFile, PromptTuneWeights, PromptExit},
}

// review prints the ranking or runs the interactive loop until exit.
func review(s *session, candidates *profile.Candidates, autoApprove bool) error {
	if autoApprove {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates.Items)
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		s.logger.Info("current list of candidates", zap.Int("count", candidates.Len()))

		if err := handleAction(action, s, candidates); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func handleAction(action string, s *session, candidates *profile.Candidates) error {
	switch action {
	case PromptShowRanking:
		return printRanking(os.Stdout, candidates)
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(candidates.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("candidates count", candidates.Len()))
		return nil
	case PromptCandidatesToFile:
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(s.logger, viper.GetString("exclude-file"), candidates)
	case PromptTuneWeights:
		return tuneWeights(s, candidates)
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printRanking(w io.Writer, candidates *profile.Candidates) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tNAME\tTITLE\tCOMPANY\tPERSONA\tURL")
	for i, candidate := range candidates.Items {
		score := "-"
		if candidate.Scores != nil {
			score = strconv.FormatFloat(candidate.Scores.Final, 'f', 3, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, score,
			candidate.InferredName, candidate.InferredTitle, candidate.InferredCompany,
			candidate.Persona, candidate.LinkedInURL,
		)
	}
	return tw.Flush()
}

func appendToExcludeFile(logger *zap.Logger, excludeFile string, candidates *profile.Candidates) error {
	if strings.TrimSpace(excludeFile) == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "set --exclude-file or the 'exclude-file' key in the configuration file"))
		return nil
	}

	excluded, err := profile.GetExcludedCandidatesFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(candidates.ToExcluded(profile.ExcludeActorUser, "reviewed"))

	if err = excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", candidates.Len()))

	candidates.Exclude(profile.CandidateURLField, excluded.URLs())
	return nil
}

// tuneWeights asks for every component weight. A rejected set keeps the previous ranking.
func tuneWeights(s *session, candidates *profile.Candidates) error {
	current := s.engine.Weights()
	update := make(map[string]float64, len(scoring.Components))

	for _, component := range scoring.Components {
		value, _ := current.Get(component)

		weightPrompt := promptui.Prompt{
			Label:    component + " weight",
			Default:  strconv.FormatFloat(value, 'f', -1, 64),
			Validate: validateWeightInput,
		}

		input, err := weightPrompt.Run()
		if err != nil {
			return err
		}

		update[component], _ = strconv.ParseFloat(strings.TrimSpace(input), 64)
	}

	if err := s.engine.UpdateWeights(update); err != nil {
		s.logger.Warn("weights are not applied, keeping the previous ranking", zap.Error(err))
		return nil
	}

	s.rescore(candidates)
	return printRanking(os.Stdout, candidates)
}

func validateWeightInput(input string) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return errors.New("weight must be a number")
	}
	if value < 0 || value > 1 {
		return errors.New("weight must be between 0 and 1")
	}
	return nil
}
