package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/app"
	"github.com/jonathan/resume-ranker/internal/config"
	"github.com/jonathan/resume-ranker/internal/fetch"
	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/server"
	"github.com/jonathan/resume-ranker/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts a job description and resume uploads and serves the ranked results.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8000, "Port to listen on")
	serveCmd.Flags().String("data-dir", "data", "Directory for the file store when no database is configured")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release resources", zap.Error(err))
		}
	}()

	srv, err := server.New(serverConfig(cfg), serverDeps(a))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

// serverConfig maps the service configuration onto the HTTP server.
func serverConfig(cfg *config.Config) server.Config {
	rl := cfg.RateLimit
	fetchOpts := fetch.DefaultOptions()
	if cfg.Fetch.Timeout > 0 {
		fetchOpts.Timeout = cfg.Fetch.Timeout
	}
	return server.Config{
		Port:      cfg.Port,
		RateLimit: ratelimit.NewConfig(rl.Enabled, rl.Limit, rl.Window, rl.Whitelist, rl.Blacklist),
		URL: ingestion.URLOptions{
			UseBrowser:    cfg.Fetch.UseBrowser,
			RenderTimeout: cfg.Fetch.RenderTimeout,
			Fetch:         fetchOpts,
		},
	}
}

// serverDeps hands the loaded collaborators to the server. Optional ones are
// only set when present so the server sees a nil interface.
func serverDeps(a *app.App) server.Deps {
	deps := server.Deps{
		Store:      a.Store,
		Ranker:     a.Ranker,
		Similarity: a.Similarity,
		Estimator:  a.Estimator,
		Logger:     a.Logger.Named("server"),
	}
	if a.Domain != nil {
		deps.Domain = a.Domain
	}
	if a.Experience != nil {
		deps.Experience = a.Experience
	}
	if a.Config.Auth.Enabled() {
		deps.Tokens = server.NewTokenService(&a.Config.Auth)
	}
	return deps
}

