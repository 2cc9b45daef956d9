package database

import (
	"context"
	"database/sql"
)

// Dialect abstracts the database-specific pieces the loading engine needs:
// identifier quoting, parameter placeholders, and the ledger table DDL.
type Dialect interface {
	// Name returns the dialect name ("postgres", "sqlite")
	Name() string

	// QuoteIdent safely quotes a SQL identifier (table, column, role)
	QuoteIdent(ident string) string

	// Placeholder returns the parameter placeholder for a 1-based position
	// ($1 for PostgreSQL, ? for SQLite)
	Placeholder(position int) string

	// LedgerDDL returns the idempotent CREATE TABLE statement for the
	// applied-artifact ledger
	LedgerDDL(table string) string

	// IsUniqueViolation reports whether err is a unique-constraint violation
	IsUniqueViolation(err error) bool
}

// Admin extends Dialect with server-level administrative operations. Only
// server-backed dialects implement it; file-backed databases (SQLite, libSQL
// local files) have nothing to provision.
type Admin interface {
	Dialect

	// DatabaseExists checks the server catalog for a database by name
	DatabaseExists(ctx context.Context, db *sql.DB, name string) (bool, error)

	// CreateDatabase creates a database, optionally owned by owner (empty
	// string means the connected role)
	CreateDatabase(ctx context.Context, db *sql.DB, name, owner string) error

	// IsDuplicateDatabase reports whether err means the database already
	// exists (a concurrent run won the race)
	IsDuplicateDatabase(err error) bool

	// RoleExists checks the server catalog for a role by name
	RoleExists(ctx context.Context, db *sql.DB, role string) (bool, error)

	// CreateRole creates a login role with the given password
	CreateRole(ctx context.Context, db *sql.DB, role, password string) error

	// IsDuplicateRole reports whether err means the role already exists
	IsDuplicateRole(err error) bool
}

// Querier is the subset of *sql.DB and *sql.Tx the ledger reads through.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
