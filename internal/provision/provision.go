package provision

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlload/sqlload/internal/database"
)

// Outcome reports what an ensure operation did. Calling twice with the same
// arguments yields Created then AlreadyExists, never an error.
type Outcome string

const (
	Created       Outcome = "created"
	AlreadyExists Outcome = "already-exists"
)

// Error wraps an administrative DDL failure for a reason other than
// already-exists. Fatal for the run.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provisioning failed: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// EnsureDatabase makes sure a named database exists, creating it with the
// requested owner if absent. The existence check runs against the server
// catalog rather than a create-then-catch pattern; a concurrent creator is
// still tolerated by converting the duplicate-database response to
// AlreadyExists.
//
// File-backed dialects (SQLite, libSQL files) have no server catalog:
// opening the connection string is what creates the database, so the
// operation reports AlreadyExists.
func EnsureDatabase(ctx context.Context, db *sql.DB, dialect database.Dialect, name, owner string) (Outcome, error) {
	admin, ok := dialect.(database.Admin)
	if !ok {
		return AlreadyExists, nil
	}

	exists, err := admin.DatabaseExists(ctx, db, name)
	if err != nil {
		return "", &Error{Op: "check database", Name: name, Err: err}
	}
	if exists {
		return AlreadyExists, nil
	}

	if err := admin.CreateDatabase(ctx, db, name, owner); err != nil {
		if admin.IsDuplicateDatabase(err) {
			// A concurrent run created it between check and create
			return AlreadyExists, nil
		}
		return "", &Error{Op: "create database", Name: name, Err: err}
	}

	return Created, nil
}

// EnsureRole makes sure a login role exists, with the same check-then-create
// discipline as EnsureDatabase. Non-administrative dialects report
// AlreadyExists.
func EnsureRole(ctx context.Context, db *sql.DB, dialect database.Dialect, role, password string) (Outcome, error) {
	admin, ok := dialect.(database.Admin)
	if !ok {
		return AlreadyExists, nil
	}

	exists, err := admin.RoleExists(ctx, db, role)
	if err != nil {
		return "", &Error{Op: "check role", Name: role, Err: err}
	}
	if exists {
		return AlreadyExists, nil
	}

	if err := admin.CreateRole(ctx, db, role, password); err != nil {
		if admin.IsDuplicateRole(err) {
			return AlreadyExists, nil
		}
		return "", &Error{Op: "create role", Name: role, Err: err}
	}

	return Created, nil
}
