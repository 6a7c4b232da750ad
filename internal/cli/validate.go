package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chatterwise/chatcheck/internal/dsl"
)

// NewValidateCmd creates a new validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file_or_directory]",
		Short: "Validate scenario files against the JSON schema",
		Long: `Validate one or more scenario files against the JSON schema.
This command checks file syntax, structure, and configuration without executing scenarios.

Examples:
  chatcheck validate support-bot.yaml              # Validate a single file
  chatcheck validate ./scenarios/                  # Validate all YAML files in a directory
  chatcheck validate smoke.yaml regression.yaml    # Validate multiple files`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("please specify at least one file or directory to validate")
	}

	var files []string
	totalValid := 0
	totalInvalid := 0

	// Collect all files to validate
	for _, arg := range args {
		stat, err := os.Stat(arg)
		if err != nil {
			Logger.Error("failed to access path", "path", arg, "error", err)
			totalInvalid++
			continue
		}

		if stat.IsDir() {
			// Find all YAML files in directory
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && (filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml") {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				Logger.Error("failed to scan directory", "path", arg, "error", err)
				totalInvalid++
				continue
			}
		} else {
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no YAML files found to validate")
	}

	Logger.Info("validating files", "count", len(files))

	// Validate each file
	for _, file := range files {
		if err := validateFile(file); err != nil {
			Logger.Error("validation failed", "file", file, "error", err)
			totalInvalid++
		} else {
			Logger.Info("validation passed", "file", file)
			totalValid++
		}
	}

	fmt.Printf("\n%d valid, %d invalid\n", totalValid, totalInvalid)
	if totalInvalid > 0 {
		return fmt.Errorf("%d file(s) failed validation", totalInvalid)
	}
	return nil
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := dsl.ValidateYAMLWithSchema(data); err != nil {
		return err
	}

	// Schema validation alone misses semantic rules like duplicate case ids.
	if _, err := dsl.ParseYAML(data); err != nil {
		return err
	}
	return nil
}
