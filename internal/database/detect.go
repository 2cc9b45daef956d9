package database

import "strings"

// DetectDriver determines the driver type from a connection string.
// Bare file paths default to sqlite, which covers local development
// databases like "course.db".
func DetectDriver(connString string) string {
	lower := strings.ToLower(strings.TrimSpace(connString))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "libsql://"):
		return "libsql"
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return "sqlite"
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	default:
		return "postgres"
	}
}

// SQLDriverName maps a detected driver type to the name registered with
// database/sql.
func SQLDriverName(driverType string) string {
	switch driverType {
	case "postgres", "postgresql":
		return "postgres"
	case "libsql":
		return "libsql"
	default:
		return "sqlite"
	}
}
