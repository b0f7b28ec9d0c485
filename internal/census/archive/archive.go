// Package archive persists census reports so occupancy history survives
// process restarts. Backends: embedded sqlite (default), PostgreSQL,
// and an in-memory archive for tests.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"wardcore/internal/census"
)

// Driver identifies a concrete archive implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Entry is one archived report.
type Entry struct {
	ID      int64         `json:"id"`
	TakenAt time.Time     `json:"taken_at"`
	Report  census.Report `json:"report"`
}

// Archive stores census reports in submission order.
type Archive interface {
	// Save appends a report and returns its identifier.
	Save(ctx context.Context, report census.Report) (int64, error)
	// Latest returns the most recently saved report.
	Latest(ctx context.Context) (Entry, error)
	// List returns up to limit entries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Entry, error)
	// Close releases backend resources.
	Close() error
}

// ErrEmpty indicates the archive holds no reports.
var ErrEmpty = errors.New("archive: no reports stored")

// Open selects an archive backend using environment variables.
// Defaults to sqlite when unset.
//
//	WARDCORE_ARCHIVE_DRIVER: memory|sqlite|postgres (default sqlite)
//	WARDCORE_ARCHIVE_SQLITE_PATH: path to sqlite file (default ./wardcensus.db)
//	WARDCORE_ARCHIVE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open(ctx context.Context) (Archive, error) {
	driver := os.Getenv("WARDCORE_ARCHIVE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv("WARDCORE_ARCHIVE_SQLITE_PATH"))
	case DriverPostgres:
		return NewPostgres(ctx, os.Getenv("WARDCORE_ARCHIVE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}
