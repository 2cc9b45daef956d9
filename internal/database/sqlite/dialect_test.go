package sqlite

import (
	"errors"
	"strings"
	"testing"
)

func TestQuoteIdent(t *testing.T) {
	d := NewDialect()
	if got := d.QuoteIdent("people"); got != `"people"` {
		t.Errorf("QuoteIdent = %s", got)
	}
	if got := d.QuoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("QuoteIdent with quote = %s", got)
	}
}

func TestPlaceholder(t *testing.T) {
	d := NewDialect()
	if got := d.Placeholder(1); got != "?" {
		t.Errorf("Placeholder(1) = %s, want ?", got)
	}
	if got := d.Placeholder(5); got != "?" {
		t.Errorf("Placeholder(5) = %s, want ?", got)
	}
}

func TestLedgerDDL(t *testing.T) {
	d := NewDialect()
	ddl := d.LedgerDDL("sqlload_artifacts")

	if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS") {
		t.Error("Ledger DDL must be idempotent (IF NOT EXISTS)")
	}
	if !strings.Contains(ddl, "name TEXT PRIMARY KEY") {
		t.Error("Ledger DDL must make name the primary key")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	d := NewDialect()

	if !d.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: sqlload_artifacts.name (1555)")) {
		t.Error("SQLite unique constraint message should be recognized")
	}
	if d.IsUniqueViolation(errors.New("no such table: people")) {
		t.Error("Unrelated errors are not unique violations")
	}
	if d.IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}
