package loader

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sqlload/sqlload/internal/catalog"
	"github.com/sqlload/sqlload/internal/database"
	"github.com/sqlload/sqlload/internal/ledger"
)

// DriftError means a previously-applied artifact's current content no
// longer matches its recorded checksum. Reapplying it could corrupt
// already-built state and ignoring it would hide an authoring error, so the
// run halts.
type DriftError struct {
	Name     string
	Recorded string
	Current  string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("artifact %q has drifted: recorded checksum %s, current %s",
		e.Name, e.Recorded, e.Current)
}

// ApplyError means a specific artifact's SQL failed. The run halts because
// ordering is assumed to encode dependency.
type ApplyError struct {
	Name string
	Err  error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("artifact %q failed: %v", e.Name, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ConflictError means a concurrent run recorded the same artifact first.
// The database's unique constraint on the ledger caught the race; state is
// consistent, the run just loses.
type ConflictError struct {
	Name string
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("artifact %q was applied by a concurrent run: %v", e.Name, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Loader applies not-yet-applied artifacts in sequence, one transaction per
// artifact covering both the artifact's SQL and its ledger record.
type Loader struct {
	DB      *sql.DB
	Dialect database.Dialect
	Ledger  *ledger.Ledger

	// Now is the applied_at clock; defaults to time.Now
	Now func() time.Time
}

// New creates a loader over the default ledger
func New(db *sql.DB, dialect database.Dialect) *Loader {
	return &Loader{
		DB:      db,
		Dialect: dialect,
		Ledger:  ledger.New(dialect),
	}
}

// Apply runs each artifact in order, consulting and updating the ledger.
// The returned report covers every artifact attempted; the error is the
// condition that halted the run, nil when the whole catalog was processed.
func (l *Loader) Apply(ctx context.Context, artifacts []catalog.Artifact) (*RunReport, error) {
	report := NewReport()

	if err := l.Ledger.Ensure(ctx, l.DB); err != nil {
		return report.Fail(StatusApplyFailed, err), err
	}

	for _, artifact := range artifacts {
		recorded, applied, err := l.Ledger.Applied(ctx, l.DB, artifact.Name)
		if err != nil {
			report.FirstFailure = artifact.Name
			return report.Fail(StatusApplyFailed, err), err
		}

		if applied {
			if recorded == artifact.Checksum {
				report.Results = append(report.Results, ArtifactResult{
					Name:     artifact.Name,
					Outcome:  OutcomeSkipped,
					Checksum: artifact.Checksum,
				})
				continue
			}

			driftErr := &DriftError{Name: artifact.Name, Recorded: recorded, Current: artifact.Checksum}
			report.Results = append(report.Results, ArtifactResult{
				Name:     artifact.Name,
				Outcome:  OutcomeDrift,
				Checksum: artifact.Checksum,
				Error:    driftErr.Error(),
			})
			report.FirstFailure = artifact.Name
			return report.Fail(StatusDriftDetected, driftErr), driftErr
		}

		if err := l.applyOne(ctx, artifact); err != nil {
			report.Results = append(report.Results, ArtifactResult{
				Name:     artifact.Name,
				Outcome:  OutcomeFailed,
				Checksum: artifact.Checksum,
				Error:    err.Error(),
			})
			report.FirstFailure = artifact.Name

			if conflict, ok := err.(*ConflictError); ok {
				return report.Fail(StatusConflict, conflict), conflict
			}
			return report.Fail(StatusApplyFailed, err), err
		}

		report.Results = append(report.Results, ArtifactResult{
			Name:     artifact.Name,
			Outcome:  OutcomeApplied,
			Checksum: artifact.Checksum,
		})
	}

	report.Completed = true
	return report.Finish(StatusSucceeded), nil
}

// applyOne executes one artifact's SQL and its ledger record in a single
// transaction. A crash anywhere inside leaves the ledger accurately
// reflecting what committed.
func (l *Loader) applyOne(ctx context.Context, artifact catalog.Artifact) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return &ApplyError{Name: artifact.Name, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}

	if _, err := tx.ExecContext(ctx, artifact.SQL); err != nil {
		_ = tx.Rollback()
		return &ApplyError{Name: artifact.Name, Err: err}
	}

	if err := l.Ledger.Record(ctx, tx, artifact.Name, artifact.Checksum, now()); err != nil {
		_ = tx.Rollback()
		if l.Dialect.IsUniqueViolation(err) {
			return &ConflictError{Name: artifact.Name, Err: err}
		}
		return &ApplyError{Name: artifact.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		if l.Dialect.IsUniqueViolation(err) {
			return &ConflictError{Name: artifact.Name, Err: err}
		}
		return &ApplyError{Name: artifact.Name, Err: fmt.Errorf("failed to commit: %w", err)}
	}

	return nil
}
