package executor

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sqlload/sqlload/internal/database"
	"github.com/sqlload/sqlload/internal/database/postgres"
	"github.com/sqlload/sqlload/internal/database/sqlite"
)

// NewDialect creates a database dialect based on the driver type. libSQL
// uses the SQLite dialect.
func NewDialect(driverType string) (database.Dialect, error) {
	switch database.SQLDriverName(driverType) {
	case "postgres":
		return postgres.NewDialect(), nil
	case "sqlite", "libsql":
		return sqlite.NewDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driverType)
	}
}

// Open detects the driver from a connection string, opens the connection,
// and returns it with the matching dialect. It does not ping; readiness is
// the prober's job.
func Open(connString string) (*sql.DB, database.Dialect, error) {
	driverType := database.DetectDriver(connString)

	dialect, err := NewDialect(driverType)
	if err != nil {
		return nil, nil, err
	}

	dsn := connString
	if driverType == "sqlite" {
		// modernc.org/sqlite takes plain file paths or file: DSNs
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sql.Open(database.SQLDriverName(driverType), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open connection: %w", err)
	}

	return db, dialect, nil
}
