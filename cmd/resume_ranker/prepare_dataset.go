package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ranker/internal/classifier"
	"github.com/jonathan/resume-ranker/internal/dataset"
	"github.com/jonathan/resume-ranker/internal/logging"
)

var prepareDatasetCmd = &cobra.Command{
	Use:   "prepare-dataset",
	Short: "Label a resume dataset and fit classifier preprocessing artifacts",
	Long: `Read a JSON array of {text, domain} records, label each with its estimated
experience, and write the labeled dataset, tokenizer and label encoders the
domain and experience classifiers are trained and served with.`,
	RunE: runPrepareDataset,
}

var (
	prepareInput     string
	prepareOut       string
	prepareNumWords  int
	prepareOOVToken  string
	prepareReference string
)

func init() {
	prepareDatasetCmd.Flags().StringVarP(&prepareInput, "input", "i", "", "Path to the resume dataset JSON (required)")
	prepareDatasetCmd.Flags().StringVarP(&prepareOut, "out", "o", "", "Output directory (required)")
	prepareDatasetCmd.Flags().IntVar(&prepareNumWords, "num-words", classifier.DefaultNumWords, "Tokenizer vocabulary size")
	prepareDatasetCmd.Flags().StringVar(&prepareOOVToken, "oov-token", classifier.DefaultOOVToken, "Token for out-of-vocabulary words")
	prepareDatasetCmd.Flags().StringVar(&prepareReference, "reference-date", "", "Date (YYYY-MM-DD) that \"Present\" resolves to; defaults to today")

	prepareDatasetCmd.MarkFlagRequired("input") //nolint:errcheck
	prepareDatasetCmd.MarkFlagRequired("out")   //nolint:errcheck

	rootCmd.AddCommand(prepareDatasetCmd)
}

func runPrepareDataset(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logJSON, logDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	var ref time.Time
	if prepareReference != "" {
		ref, err = time.Parse(time.DateOnly, prepareReference)
		if err != nil {
			return fmt.Errorf("invalid --reference-date %q: expected YYYY-MM-DD", prepareReference)
		}
	}

	records, err := dataset.Load(prepareInput)
	if err != nil {
		return err
	}

	summary, err := dataset.Prepare(records, dataset.Options{
		OutDir:    prepareOut,
		NumWords:  prepareNumWords,
		OOVToken:  prepareOOVToken,
		Reference: ref,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
