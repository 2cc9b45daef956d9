package runner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sqlload/sqlload/internal/catalog"
	"github.com/sqlload/sqlload/internal/database"
	"github.com/sqlload/sqlload/internal/executor"
	"github.com/sqlload/sqlload/internal/loader"
	"github.com/sqlload/sqlload/internal/probe"
	"github.com/sqlload/sqlload/internal/provision"
)

// Options configures one workflow run. There is no process-wide connection
// state; everything the run needs arrives here.
type Options struct {
	// DatabaseURL is the application target: the database artifacts are
	// applied to
	DatabaseURL string

	// AdminURL is the administrative target used for readiness probing and
	// create-database statements. Defaults to DatabaseURL pointed at the
	// server's bootstrap database. Ignored for file-backed databases.
	AdminURL string

	// Owner optionally names a role to provision and hand database
	// ownership to
	Owner string

	// OwnerPassword is the password for a newly created owner role
	OwnerPassword string

	// ArtifactsDir is the directory of ordered SQL artifacts
	ArtifactsDir string

	// LedgerTable overrides the default tracking table name
	LedgerTable string

	// MaxAttempts and ProbeInterval bound the readiness wait
	MaxAttempts   int
	ProbeInterval time.Duration

	// Sleep is injectable for tests; see probe.Prober
	Sleep func(ctx context.Context, d time.Duration) error
}

// Run composes the full workflow: discover artifacts, wait for server
// readiness, ensure the target database (and owner role) exist, then apply
// every not-yet-applied artifact. Any stage failure short-circuits the
// remaining stages; the report's status names the failing stage.
func Run(ctx context.Context, opts Options) (*loader.RunReport, error) {
	report := loader.NewReport()

	if opts.DatabaseURL == "" {
		err := errors.New("database URL is required")
		return report.Fail(loader.StatusProvisioningFailed, err), err
	}
	if opts.ArtifactsDir == "" {
		err := errors.New("artifacts directory is required")
		return report.Fail(loader.StatusCatalogFailed, err), err
	}

	// Discovery is a pure read, so it runs first: an ambiguous or
	// unreadable catalog fails the run before any database mutation.
	artifacts, err := catalog.Discover(opts.ArtifactsDir)
	if err != nil {
		return report.Fail(loader.StatusCatalogFailed, err), err
	}

	prober := &probe.Prober{
		MaxAttempts: opts.MaxAttempts,
		Interval:    opts.ProbeInterval,
		Sleep:       opts.Sleep,
	}

	driverType := database.DetectDriver(opts.DatabaseURL)
	if database.SQLDriverName(driverType) == "postgres" {
		if err := provisionPostgres(ctx, prober, opts); err != nil {
			var timeoutErr *probe.TimeoutError
			if errors.As(err, &timeoutErr) {
				return report.Fail(loader.StatusReadyTimeout, err), err
			}
			return report.Fail(loader.StatusProvisioningFailed, err), err
		}
	}

	// Reconnect as the application role against the now-existing database
	db, dialect, err := executor.Open(opts.DatabaseURL)
	if err != nil {
		return report.Fail(loader.StatusProvisioningFailed, err), err
	}
	defer func() { _ = db.Close() }()

	if database.SQLDriverName(driverType) != "postgres" {
		// File-backed targets have no admin endpoint; the readiness wait
		// runs against the target itself
		if err := prober.WaitUntilReady(ctx, db.PingContext); err != nil {
			return report.Fail(loader.StatusReadyTimeout, err), err
		}
	} else if err := db.PingContext(ctx); err != nil {
		err = fmt.Errorf("failed to connect to provisioned database: %w", err)
		return report.Fail(loader.StatusProvisioningFailed, err), err
	}

	l := loader.New(db, dialect)
	if opts.LedgerTable != "" {
		l.Ledger.Table = opts.LedgerTable
	}

	return l.Apply(ctx, artifacts)
}

// provisionPostgres waits for the server on the administrative target, then
// ensures the owner role and target database exist.
func provisionPostgres(ctx context.Context, prober *probe.Prober, opts Options) error {
	adminURL := opts.AdminURL
	if adminURL == "" {
		derived, err := deriveAdminURL(opts.DatabaseURL)
		if err != nil {
			return err
		}
		adminURL = derived
	}

	dbName, err := databaseName(opts.DatabaseURL)
	if err != nil {
		return err
	}

	adminDB, adminDialect, err := executor.Open(adminURL)
	if err != nil {
		return err
	}
	defer func() { _ = adminDB.Close() }()

	if err := prober.WaitUntilReady(ctx, adminDB.PingContext); err != nil {
		return err
	}

	if opts.Owner != "" {
		if _, err := provision.EnsureRole(ctx, adminDB, adminDialect, opts.Owner, opts.OwnerPassword); err != nil {
			return err
		}
	}

	if _, err := provision.EnsureDatabase(ctx, adminDB, adminDialect, dbName, opts.Owner); err != nil {
		return err
	}

	return nil
}

// deriveAdminURL points a connection string at the server's bootstrap
// database, preserving credentials and query parameters like sslmode.
func deriveAdminURL(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	u.Path = "/postgres"
	return u.String(), nil
}

// databaseName extracts the database name from a connection string
func databaseName(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("database URL %q does not name a database", databaseURL)
	}
	return name, nil
}
