// Package main provides the entry point for the resume ranking service and
// its offline tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/config"
	"github.com/jonathan/resume-ranker/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "resume_ranker",
	Short:        "Resume Ranker HTTP API Server",
	Long:         "Resume Ranker scores uploaded resumes against a job description and serves the ranked shortlist over a REST API.",
	SilenceUsage: true,
}

var (
	configPath string
	logJSON    bool
	logDebug   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "json", false, "Emit JSON logs")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")
}

// loadConfig layers defaults, the config file, the environment and the
// global logging flags, then builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	v, err := config.NewViper()
	if err != nil {
		return nil, nil, err
	}
	if logJSON {
		v.Set("log.json", true)
	}
	if logDebug {
		v.Set("log.debug", true)
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		v.Set("port", port)
	}
	if cmd.Flags().Changed("data-dir") {
		dir, _ := cmd.Flags().GetString("data-dir")
		v.Set("data-dir", dir)
	}

	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
