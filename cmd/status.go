package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sqlload/sqlload/internal/catalog"
	"github.com/sqlload/sqlload/internal/executor"
	"github.com/sqlload/sqlload/internal/ledger"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which artifacts are applied, pending, or drifted",
	Long: `Show which artifacts are applied, pending, or drifted.

Compares the artifact directory against the ledger table without
applying anything. Drift means an applied artifact's file content no
longer matches the checksum recorded at apply time.`,
	Run: runStatus,
}

var (
	statusEnvironment  string
	statusDatabaseURL  string
	statusArtifactsDir string
	statusLedgerTable  string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusEnvironment, "env", "", "Environment from sqlload.toml")
	statusCmd.Flags().StringVar(&statusDatabaseURL, "database-url", "", "Application database URL (overrides config)")
	statusCmd.Flags().StringVar(&statusArtifactsDir, "artifacts", "", "Directory of ordered SQL artifacts (overrides config)")
	statusCmd.Flags().StringVar(&statusLedgerTable, "ledger-table", "", "Tracking table name (default: sqlload_artifacts)")
}

func runStatus(cmd *cobra.Command, args []string) {
	databaseURL := statusDatabaseURL
	artifactsDir := statusArtifactsDir

	if databaseURL == "" || artifactsDir == "" {
		env, err := resolveEnvironment(statusEnvironment)
		if err != nil {
			log.Fatalf("Failed to resolve environment: %v", err)
		}
		if !env.FromConfig && !env.FromDotenv {
			printConfigNotFound()
			os.Exit(1)
		}
		if databaseURL == "" {
			databaseURL = env.DatabaseURL
		}
		if artifactsDir == "" {
			artifactsDir = env.ArtifactsDir
		}
	}

	artifacts, err := catalog.Discover(artifactsDir)
	if err != nil {
		log.Fatalf("Failed to read artifacts: %v", err)
	}

	db, dialect, err := executor.Open(databaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	l := ledger.New(dialect)
	if statusLedgerTable != "" {
		l.Table = statusLedgerTable
	}
	if err := l.Ensure(ctx, db); err != nil {
		log.Fatalf("Failed to read ledger: %v", err)
	}
	entries, err := l.Entries(ctx, db)
	if err != nil {
		log.Fatalf("Failed to read ledger: %v", err)
	}

	applied := make(map[string]ledger.Entry, len(entries))
	for _, entry := range entries {
		applied[entry.Name] = entry
	}

	var pending, drifted int
	for _, artifact := range artifacts {
		entry, ok := applied[artifact.Name]
		switch {
		case !ok:
			fmt.Printf("  pending  %s\n", artifact.Name)
			pending++
		case entry.Checksum != artifact.Checksum:
			fmt.Printf("  DRIFT    %s (applied %s)\n", artifact.Name, entry.AppliedAt.Format("2006-01-02 15:04:05"))
			drifted++
		default:
			fmt.Printf("  applied  %s (%s)\n", artifact.Name, entry.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		delete(applied, artifact.Name)
	}

	// Ledger rows with no matching file: the artifact was applied and
	// later removed from the directory.
	for _, entry := range entries {
		if _, ok := applied[entry.Name]; ok {
			fmt.Printf("  orphan   %s (in ledger, not in %s)\n", entry.Name, artifactsDir)
		}
	}

	fmt.Printf("%d artifacts, %d pending, %d drifted\n", len(artifacts), pending, drifted)
	if drifted > 0 {
		os.Exit(1)
	}
}
