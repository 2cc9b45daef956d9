package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sqlload/sqlload/internal/executor"
	"github.com/sqlload/sqlload/internal/fixture"
	"github.com/spf13/cobra"
)

var loadCSVCmd = &cobra.Command{
	Use:   "load-csv [file]",
	Short: "Bulk load a CSV file into a table",
	Long: `Bulk load a CSV file into a table, one transaction for the whole file.

Column names come from the CSV header row unless --columns is given.`,
	Example: `  # Header row names the columns
  sqlload load-csv --table users users.csv

  # Headerless file with explicit columns
  sqlload load-csv --table users --no-header --columns id,name,email users.csv

  # Tab-separated input
  sqlload load-csv --table events --delimiter $'\t' events.tsv`,
	Args: cobra.ExactArgs(1),
	Run:  runLoadCSV,
}

var (
	loadCSVEnvironment string
	loadCSVDatabaseURL string
	loadCSVTable       string
	loadCSVColumns     string
	loadCSVNoHeader    bool
	loadCSVDelimiter   string
)

func init() {
	rootCmd.AddCommand(loadCSVCmd)

	loadCSVCmd.Flags().StringVar(&loadCSVEnvironment, "env", "", "Environment from sqlload.toml")
	loadCSVCmd.Flags().StringVar(&loadCSVDatabaseURL, "database-url", "", "Application database URL (overrides config)")
	loadCSVCmd.Flags().StringVar(&loadCSVTable, "table", "", "Target table (required)")
	loadCSVCmd.Flags().StringVar(&loadCSVColumns, "columns", "", "Comma-separated column names (overrides the header row)")
	loadCSVCmd.Flags().BoolVar(&loadCSVNoHeader, "no-header", false, "Treat the first row as data, not column names")
	loadCSVCmd.Flags().StringVar(&loadCSVDelimiter, "delimiter", ",", "Field delimiter")

	_ = loadCSVCmd.MarkFlagRequired("table")
}

func runLoadCSV(cmd *cobra.Command, args []string) {
	path := args[0]

	databaseURL := loadCSVDatabaseURL
	if databaseURL == "" {
		env, err := resolveEnvironment(loadCSVEnvironment)
		if err != nil {
			log.Fatalf("Failed to resolve environment: %v", err)
		}
		databaseURL = env.DatabaseURL
		if databaseURL == "" {
			printConfigNotFound()
			log.Fatalf("No database URL: pass --database-url or configure an environment")
		}
	}

	opts := fixture.Options{HasHeader: !loadCSVNoHeader}
	if loadCSVColumns != "" {
		for _, column := range strings.Split(loadCSVColumns, ",") {
			opts.Headers = append(opts.Headers, strings.TrimSpace(column))
		}
	}
	if loadCSVDelimiter != "" {
		runes := []rune(loadCSVDelimiter)
		if len(runes) != 1 {
			log.Fatalf("Delimiter must be a single character, got %q", loadCSVDelimiter)
		}
		opts.Delimiter = runes[0]
	}

	db, dialect, err := executor.Open(databaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := fixture.LoadCSV(context.Background(), db, dialect, path, loadCSVTable, opts)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}
	fmt.Printf("Loaded %d rows into %s\n", rows, loadCSVTable)
}
