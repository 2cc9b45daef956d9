package sqlite

import (
	"fmt"
	"strings"

	"github.com/sqlload/sqlload/internal/database"
)

// Dialect implements database.Dialect for SQLite. libSQL connections speak
// the same dialect. SQLite databases are files, so there is no Admin side:
// opening the connection string is what provisions the database.
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name
func (d *Dialect) Name() string {
	return "sqlite"
}

// QuoteIdent quotes an identifier by doubling embedded double quotes
func (d *Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Placeholder returns the ?-style placeholder (position is ignored)
func (d *Dialect) Placeholder(position int) string {
	return "?"
}

// LedgerDDL returns the CREATE TABLE statement for the applied-artifact
// ledger. The primary key on name enforces at-most-once application.
func (d *Dialect) LedgerDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`, d.QuoteIdent(table))
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// modernc.org/sqlite and the libSQL client both surface the SQLite error
// message text, so this matches on it rather than a driver-specific type.
func (d *Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed") && strings.Contains(msg, "unique")
}

// Ensure Dialect implements database.Dialect
var _ database.Dialect = (*Dialect)(nil)
