package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ranker/internal/server"
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue a bearer token for the upload endpoints",
	Long:  "Sign an operator token with the configured JWT secret. The server requires one on uploads whenever a secret is set.",
	RunE:  runIssueToken,
}

var tokenSubject string

func init() {
	issueTokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Operator name recorded in the token (required)")
	issueTokenCmd.MarkFlagRequired("subject") //nolint:errcheck
	rootCmd.AddCommand(issueTokenCmd)
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Auth.Enabled() {
		return fmt.Errorf("authentication is disabled; set JWT_SECRET to issue tokens")
	}

	token, err := server.NewTokenService(&cfg.Auth).GenerateToken(tokenSubject)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
