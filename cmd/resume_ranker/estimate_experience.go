package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/observability"
)

var estimateExperienceCmd = &cobra.Command{
	Use:   "estimate-experience [resume file]",
	Short: "Estimate years of experience from a resume",
	Long:  "Sum the employment date ranges found in a resume file or --text and print months, years and seniority level as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEstimateExperience,
}

var (
	estimateText      string
	estimateReference string
	estimateVerbose   bool
)

func init() {
	estimateExperienceCmd.Flags().StringVarP(&estimateText, "text", "t", "", "Resume text to scan instead of a file")
	estimateExperienceCmd.Flags().StringVarP(&estimateReference, "reference-date", "r", "", "Date (YYYY-MM-DD) that \"Present\" resolves to; defaults to today")
	estimateExperienceCmd.Flags().BoolVarP(&estimateVerbose, "verbose", "v", false, "Print the counted date ranges to stderr")
	rootCmd.AddCommand(estimateExperienceCmd)
}

func runEstimateExperience(cmd *cobra.Command, args []string) error {
	text := estimateText
	switch {
	case len(args) == 1 && text != "":
		return fmt.Errorf("provide either a file or --text, not both")
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		extracted, err := ingestion.ExtractText(args[0], data)
		if err != nil {
			return err
		}
		text = extracted
	case text == "":
		return fmt.Errorf("either a resume file or --text must be provided")
	}

	ref := time.Now()
	if estimateReference != "" {
		parsed, err := time.Parse(time.DateOnly, estimateReference)
		if err != nil {
			return fmt.Errorf("invalid --reference-date %q: expected YYYY-MM-DD", estimateReference)
		}
		ref = parsed
	}

	est := experience.NewEstimator().EstimateAt(text, ref)
	if estimateVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintEstimate(est)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}
