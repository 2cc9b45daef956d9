package wizard

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sqlload/sqlload/internal/database"
	"github.com/sqlload/sqlload/internal/executor"
)

// ValidateAnswers checks the wizard inputs before anything is written.
func ValidateAnswers(answers Answers) error {
	if strings.TrimSpace(answers.DatabaseURL) == "" {
		return fmt.Errorf("database URL is required")
	}
	if err := ValidateDatabaseURL(answers.DatabaseURL); err != nil {
		return err
	}
	if answers.AdminURL != "" {
		if err := ValidateDatabaseURL(answers.AdminURL); err != nil {
			return fmt.Errorf("admin URL: %w", err)
		}
	}
	if strings.TrimSpace(answers.ArtifactsDir) == "" {
		return fmt.Errorf("artifacts directory is required")
	}
	return nil
}

// ValidateDatabaseURL checks that a connection string is something we
// can open: a URL with a scheme we recognize, or a SQLite file path.
func ValidateDatabaseURL(connString string) error {
	if database.DetectDriver(connString) == "sqlite" {
		return nil
	}

	parsed, err := url.Parse(connString)
	if err != nil {
		return fmt.Errorf("invalid connection URL: %w", err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("connection URL has no scheme (expected postgres://, libsql://, or a sqlite path)")
	}
	if parsed.Host == "" {
		return fmt.Errorf("connection URL has no host")
	}
	return nil
}

// TestConnection opens the database and pings it.
func TestConnection(ctx context.Context, connString string) error {
	db, _, err := executor.Open(connString)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}
