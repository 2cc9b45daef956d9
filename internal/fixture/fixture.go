package fixture

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sqlload/sqlload/internal/database"
)

// Options controls how a CSV file maps onto a table
type Options struct {
	// Delimiter defaults to comma
	Delimiter rune

	// HasHeader treats the first row as column names. Ignored when
	// Headers is set.
	HasHeader bool

	// Headers overrides header detection with explicit column names
	Headers []string
}

// LoadCSV loads a CSV file into an existing table using quoted identifiers
// and parameterized inserts, all rows in one transaction. Returns the
// number of rows inserted.
//
// The header row is determined by Options.Headers if provided, otherwise by
// the file's first row when HasHeader is set.
func LoadCSV(ctx context.Context, db *sql.DB, dialect database.Dialect, path, table string, opts Options) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	headers := opts.Headers
	if len(headers) == 0 {
		if !opts.HasHeader {
			return 0, fmt.Errorf("headers must be present to insert into a table: set Headers or HasHeader")
		}
		row, err := reader.Read()
		if err != nil {
			return 0, fmt.Errorf("failed to read CSV header row: %w", err)
		}
		headers = row
	} else if opts.HasHeader {
		// Explicit headers win; discard the file's own header row
		if _, err := reader.Read(); err != nil {
			return 0, fmt.Errorf("failed to skip CSV header row: %w", err)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	query := insertStatement(dialect, table, headers)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		if len(row) != len(headers) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("row %d has %d fields, expected %d", i+1, len(row), len(headers))
		}
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(rows), nil
}

// insertStatement builds a parameterized INSERT with quoted identifiers
func insertStatement(dialect database.Dialect, table string, headers []string) string {
	quoted := make([]string, len(headers))
	placeholders := make([]string, len(headers))
	for i, h := range headers {
		quoted[i] = dialect.QuoteIdent(strings.TrimSpace(h))
		placeholders[i] = dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dialect.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
}
