package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/sqlload/sqlload/internal/database"
)

// PostgreSQL error codes used to turn race losses into idempotent outcomes.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation   = "23505"
	codeDuplicateDatabase = "42P04"
	codeDuplicateObject   = "42710"
)

// Dialect implements database.Admin for PostgreSQL
type Dialect struct{}

// NewDialect creates a new PostgreSQL dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name
func (d *Dialect) Name() string {
	return "postgres"
}

// QuoteIdent quotes an identifier by doubling embedded double quotes
func (d *Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Placeholder returns the $N-style placeholder for a 1-based position
func (d *Dialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

// LedgerDDL returns the CREATE TABLE statement for the applied-artifact
// ledger. The primary key on name enforces at-most-once application.
func (d *Dialect) LedgerDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL
)`, d.QuoteIdent(table))
}

// IsUniqueViolation reports whether err is a unique_violation (23505)
func (d *Dialect) IsUniqueViolation(err error) bool {
	return hasErrorCode(err, codeUniqueViolation)
}

// DatabaseExists checks pg_database for a database by name. An explicit
// catalog lookup instead of create-then-catch keeps idempotency a checked
// branch rather than an error-text match.
func (d *Dialect) DatabaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// CreateDatabase creates a database with an optional owner. CREATE DATABASE
// cannot run inside a transaction block, so concurrent creators are resolved
// by IsDuplicateDatabase rather than transactional serialization.
func (d *Dialect) CreateDatabase(ctx context.Context, db *sql.DB, name, owner string) error {
	stmt := "CREATE DATABASE " + d.QuoteIdent(name)
	if owner != "" {
		stmt += " OWNER " + d.QuoteIdent(owner)
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}
	return nil
}

// IsDuplicateDatabase reports whether err is duplicate_database (42P04)
func (d *Dialect) IsDuplicateDatabase(err error) bool {
	return hasErrorCode(err, codeDuplicateDatabase)
}

// RoleExists checks pg_roles for a role by name
func (d *Dialect) RoleExists(ctx context.Context, db *sql.DB, role string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role existence: %w", err)
	}
	return exists, nil
}

// CreateRole creates a login role. Role DDL does not take bind parameters,
// so the password is escaped as a literal the same way the identifier is
// quoted: by doubling the delimiter.
func (d *Dialect) CreateRole(ctx context.Context, db *sql.DB, role, password string) error {
	stmt := "CREATE ROLE " + d.QuoteIdent(role) + " LOGIN"
	if password != "" {
		stmt += " PASSWORD " + escapeLiteral(password)
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create role %q: %w", role, err)
	}
	return nil
}

// IsDuplicateRole reports whether err is duplicate_object (42710)
func (d *Dialect) IsDuplicateRole(err error) bool {
	return hasErrorCode(err, codeDuplicateObject)
}

// escapeLiteral escapes a string value as a SQL literal
func escapeLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func hasErrorCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

// Ensure Dialect implements database.Admin
var _ database.Admin = (*Dialect)(nil)
