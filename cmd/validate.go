package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/sqlload/sqlload/internal/sqlvalidation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Parse every artifact without touching a database",
	Long: `Parse every artifact with the PostgreSQL parser without touching a
database. Reports syntax errors with line numbers, plus warnings for
statements that tend to break repeatable loads (explicit transaction
control, DROP TABLE/SCHEMA).`,
	Example: `  # Validate the configured artifacts directory
  sqlload validate

  # Validate an explicit directory
  sqlload validate ./sql

  # JSON findings for IDE integration
  sqlload validate --output-format json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

var validateOutputFormat string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateOutputFormat, "output-format", "text", "Output format: text (default) or json")
}

func runValidate(cmd *cobra.Command, args []string) {
	var artifactsDir string
	if len(args) > 0 {
		artifactsDir = args[0]
	} else {
		env, err := resolveEnvironment("")
		if err != nil {
			log.Fatalf("Failed to resolve environment: %v", err)
		}
		artifactsDir = env.ArtifactsDir
		if artifactsDir == "" {
			log.Fatalf("No artifacts directory: pass one as an argument or set artifacts_dir in sqlload.toml")
		}
	}

	result, err := sqlvalidation.ValidateArtifacts(artifactsDir)
	if err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	if validateOutputFormat == "json" {
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal result: %v", err)
		}
		fmt.Println(string(jsonBytes))
	} else {
		for _, issue := range result.Issues {
			fmt.Printf("%s:%d: %s: %s\n", issue.Artifact, issue.Line, issue.Severity, issue.Message)
		}
		if result.Valid {
			fmt.Println("All artifacts parse cleanly")
		}
	}

	if !result.Valid {
		os.Exit(1)
	}
}
