package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/sqlload/sqlload/internal/dbtest"
)

func TestEnsure_Idempotent(t *testing.T) {
	tdb := dbtest.Setup(t, "sqlite")
	defer tdb.Close()

	ctx := context.Background()
	l := New(tdb.Dialect)

	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("First Ensure failed: %v", err)
	}
	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("Second Ensure failed: %v", err)
	}
}

func TestApplied_EmptyLedger(t *testing.T) {
	tdb := dbtest.Setup(t, "sqlite")
	defer tdb.Close()

	ctx := context.Background()
	l := New(tdb.Dialect)
	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	_, ok, err := l.Applied(ctx, tdb.DB, "01_schema")
	if err != nil {
		t.Fatalf("Applied failed: %v", err)
	}
	if ok {
		t.Error("Expected no record in an empty ledger")
	}
}

func TestRecordAndApplied(t *testing.T) {
	tdb := dbtest.Setup(t, "sqlite")
	defer tdb.Close()

	ctx := context.Background()
	l := New(tdb.Dialect)
	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	tx, err := tdb.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	appliedAt := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if err := l.Record(ctx, tx, "01_schema", "abc123", appliedAt); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	checksum, ok, err := l.Applied(ctx, tdb.DB, "01_schema")
	if err != nil {
		t.Fatalf("Applied failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected a record after commit")
	}
	if checksum != "abc123" {
		t.Errorf("Expected checksum abc123, got %s", checksum)
	}
}

func TestRecord_RollbackLeavesNoEntry(t *testing.T) {
	tdb := dbtest.Setup(t, "sqlite")
	defer tdb.Close()

	ctx := context.Background()
	l := New(tdb.Dialect)
	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	tx, err := tdb.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := l.Record(ctx, tx, "01_schema", "abc123", time.Now()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	_, ok, err := l.Applied(ctx, tdb.DB, "01_schema")
	if err != nil {
		t.Fatalf("Applied failed: %v", err)
	}
	if ok {
		t.Error("Expected no record after rollback")
	}
}

func TestRecord_DuplicateIsUniqueViolation(t *testing.T) {
	tdb := dbtest.Setup(t, "sqlite")
	defer tdb.Close()

	ctx := context.Background()
	l := New(tdb.Dialect)
	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	record := func() error {
		tx, err := tdb.DB.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		if err := l.Record(ctx, tx, "01_schema", "abc123", time.Now()); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	if err := record(); err != nil {
		t.Fatalf("First record failed: %v", err)
	}
	err := record()
	if err == nil {
		t.Fatal("Expected second insert of the same identity to fail")
	}
	if !tdb.Dialect.IsUniqueViolation(err) {
		t.Errorf("Expected a unique violation, got: %v", err)
	}
}

func TestEntries_OrderedByName(t *testing.T) {
	tdb := dbtest.Setup(t, "sqlite")
	defer tdb.Close()

	ctx := context.Background()
	l := New(tdb.Dialect)
	if err := l.Ensure(ctx, tdb.DB); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	for _, name := range []string{"02_b", "01_a"} {
		tx, err := tdb.DB.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		if err := l.Record(ctx, tx, name, "sum-"+name, time.Now()); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
	}

	entries, err := l.Entries(ctx, tdb.DB)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "01_a" || entries[1].Name != "02_b" {
		t.Errorf("Expected entries ordered by name, got [%s %s]", entries[0].Name, entries[1].Name)
	}
}
