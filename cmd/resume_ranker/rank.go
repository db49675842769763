package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/app"
	"github.com/jonathan/resume-ranker/internal/export"
	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/observability"
	"github.com/jonathan/resume-ranker/internal/ranking"
	"github.com/jonathan/resume-ranker/internal/store"
	"github.com/jonathan/resume-ranker/internal/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank [resume files...]",
	Short: "Rank resume files against a job description",
	Long:  "Score each resume file against a job description read from a file or URL and print the ranking as JSON, highest final score first.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

var (
	rankJDFile   string
	rankJDURL    string
	rankXLSX     string
	rankSave     bool
	rankVerbose  bool
	rankProgress bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankJDFile, "jd", "j", "", "Path to the job description (pdf, txt or html)")
	rankCmd.Flags().StringVarP(&rankJDURL, "jd-url", "u", "", "URL of the job posting")
	rankCmd.Flags().StringVarP(&rankXLSX, "xlsx", "x", "", "Also write the ranking to this xlsx file")
	rankCmd.Flags().BoolVar(&rankSave, "save", false, "Store the job description and ranking as the service's current results")
	rankCmd.Flags().BoolVarP(&rankVerbose, "verbose", "v", false, "Print a readable summary to stderr")
	rankCmd.Flags().BoolVar(&rankProgress, "progress", true, "Show a progress bar on stderr while scoring")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	if rankJDFile == "" && rankJDURL == "" {
		return fmt.Errorf("either --jd or --jd-url must be provided")
	}
	if rankJDFile != "" && rankJDURL != "" {
		return fmt.Errorf("--jd and --jd-url are mutually exclusive; provide only one")
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close() //nolint:errcheck

	jobDescription, err := readJobDescription(cmd, a)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if rankVerbose {
		printer.PrintJobDescription(rankJDFile+rankJDURL, jobDescription)
	}

	docs, err := readDocuments(args)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if rankProgress {
		bar = newProgressBar(cmd.ErrOrStderr(), len(docs))
	}
	result, err := a.Ranker.Rank(ctx, jobDescription, docs, func(event ranking.ProgressEvent) {
		logger.Debug("scored resume",
			zap.String("filename", event.Result.Filename),
			zap.Int("completed", event.Completed),
			zap.Int("total", event.Total))
		if bar != nil {
			if err := bar.Add(1); err != nil {
				logger.Warn("failed to update progress bar", zap.Error(err))
			}
		}
	})
	if err != nil {
		return err
	}
	store.SortResults(result.Results)
	if rankVerbose {
		printer.PrintRanking(result)
	}

	if rankSave {
		if err := a.Store.SaveJobDescription(ctx, jobDescription); err != nil {
			return err
		}
		if err := a.Store.SaveRanking(ctx, result); err != nil {
			return err
		}
	}

	if rankXLSX != "" {
		if err := writeWorkbook(rankXLSX, result); err != nil {
			return err
		}
		logger.Info("wrote workbook", zap.String("path", rankXLSX))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(types.UploadResumesResponse{
		Message: "Resumes processed and ranked successfully.",
		RunID:   result.RunID,
		Results: result.Results,
	})
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Scoring resumes...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w) //nolint:errcheck
		}),
	)
}

func readJobDescription(cmd *cobra.Command, a *app.App) (string, error) {
	if rankJDURL != "" {
		opts := serverConfig(a.Config).URL
		opts.Logger = a.Logger.Named("fetch")
		text, _, err := ingestion.FromURL(cmd.Context(), rankJDURL, opts)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		return text, nil
	}

	data, err := os.ReadFile(rankJDFile)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return ingestion.ExtractText(filepath.Base(rankJDFile), data)
}

func readDocuments(paths []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume: %w", err)
		}
		docs = append(docs, types.Document{Filename: filepath.Base(path), Data: data})
	}
	return docs, nil
}

func writeWorkbook(path string, result *store.Ranking) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	if err := export.WriteRanking(f, result, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
