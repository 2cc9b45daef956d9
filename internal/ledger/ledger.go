package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sqlload/sqlload/internal/database"
)

// DefaultTable is the tracking table created inside the target database
const DefaultTable = "sqlload_artifacts"

// Entry is one successful artifact application. Failed applications are
// never recorded; the table is the single source of truth for "already
// applied".
type Entry struct {
	Name      string
	Checksum  string
	AppliedAt time.Time
}

// Ledger reads and writes the applied-artifact tracking table
type Ledger struct {
	Table   string
	Dialect database.Dialect
}

// New creates a ledger over the default table name
func New(dialect database.Dialect) *Ledger {
	return &Ledger{Table: DefaultTable, Dialect: dialect}
}

// Ensure lazily creates the tracking table if absent. Safe to call on every
// run: a missing table just means zero artifacts applied.
func (l *Ledger) Ensure(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, l.Dialect.LedgerDDL(l.Table)); err != nil {
		return fmt.Errorf("failed to ensure ledger table %s: %w", l.Table, err)
	}
	return nil
}

// Applied returns the recorded checksum for an artifact identity, and
// whether a record exists. Works through either *sql.DB or *sql.Tx.
func (l *Ledger) Applied(ctx context.Context, q database.Querier, name string) (string, bool, error) {
	query := fmt.Sprintf(
		"SELECT checksum FROM %s WHERE name = %s",
		l.Dialect.QuoteIdent(l.Table), l.Dialect.Placeholder(1),
	)

	var checksum string
	err := q.QueryRowContext(ctx, query, name).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query ledger for %q: %w", name, err)
	}
	return checksum, true, nil
}

// Record inserts exactly one entry. It must run inside the same transaction
// as the artifact's own SQL so a crash between applying and recording cannot
// leave the two out of step. A unique violation here means a concurrent run
// applied the artifact first; callers detect that via the dialect.
func (l *Ledger) Record(ctx context.Context, tx *sql.Tx, name, checksum string, appliedAt time.Time) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (name, checksum, applied_at) VALUES (%s, %s, %s)",
		l.Dialect.QuoteIdent(l.Table),
		l.Dialect.Placeholder(1), l.Dialect.Placeholder(2), l.Dialect.Placeholder(3),
	)

	if _, err := tx.ExecContext(ctx, query, name, checksum, appliedAt.UTC()); err != nil {
		return fmt.Errorf("failed to record artifact %q in ledger: %w", name, err)
	}
	return nil
}

// Entries returns every recorded application ordered by name. Used by
// status reporting; never mutates.
func (l *Ledger) Entries(ctx context.Context, db *sql.DB) ([]Entry, error) {
	query := fmt.Sprintf(
		"SELECT name, checksum, applied_at FROM %s ORDER BY name",
		l.Dialect.QuoteIdent(l.Table),
	)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Checksum, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger entries: %w", err)
	}
	return entries, nil
}
