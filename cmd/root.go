package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqlload",
	Short: "Sqlload provisions databases and loads ordered SQL artifacts into them.",
	Long: `Sqlload provisions databases and loads ordered SQL artifacts into them.

It waits for the database server to come up, creates the target database
and owner role when they are missing, and applies a directory of SQL
artifacts exactly once each, tracked in a ledger table.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
