package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ranker/internal/schemas"
	schemafiles "github.com/jonathan/resume-ranker/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a schema",
	Long: `Validate a stored ranking or dataset file. --schema is either a path to a
JSON Schema file or the name of a bundled schema (` + schemafiles.RankedResults + `,
` + schemafiles.ResumeDataset + `, ` + schemafiles.LabeledDataset + `).`,
	RunE: runValidate,
}

var (
	validateSchema string
	validateInput  string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema file path or bundled schema name (required)")
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the JSON file (required)")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if _, statErr := os.Stat(validateSchema); statErr == nil {
		err = schemas.ValidateJSON(validateSchema, validateInput)
	} else if _, embErr := fs.Stat(schemafiles.FS, validateSchema); embErr == nil {
		data, readErr := os.ReadFile(validateInput)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", validateInput, readErr)
		}
		err = schemas.ValidateEmbedded(validateSchema, data)
	} else {
		return fmt.Errorf("schema %q is neither a file nor a bundled schema", validateSchema)
	}

	if err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s is invalid: %w", validateInput, err)
		}
		return fmt.Errorf("failed to validate %s: %w", validateInput, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", validateInput)
	return nil
}
