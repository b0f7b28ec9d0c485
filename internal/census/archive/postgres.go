package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"wardcore/internal/census"
)

const (
	postgresDriver = "pgx"
	// Default DSN mirrors the sqlite default of working out of the box
	// locally while allowing overrides via env.
	defaultPostgresDSN = "postgres://localhost/wardcensus?sslmode=disable"
)

// PostgresArchive stores reports as JSONB rows in a PostgreSQL table.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgres opens a Postgres-backed archive using the provided DSN
// (falls back to a local default) and ensures the reports table exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresArchive, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS census_reports (
		id BIGSERIAL PRIMARY KEY,
		taken_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create census_reports table: %w", err)
	}
	return &PostgresArchive{db: db}, nil
}

func (a *PostgresArchive) Save(ctx context.Context, report census.Report) (int64, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("encode report: %w", err)
	}
	var id int64
	err = a.db.QueryRowContext(ctx,
		`INSERT INTO census_reports (taken_at, payload) VALUES ($1, $2) RETURNING id`,
		report.TakenAt.UTC(), payload).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return id, nil
}

func (a *PostgresArchive) Latest(ctx context.Context) (Entry, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, payload FROM census_reports ORDER BY id DESC LIMIT 1`)
	var (
		id      int64
		payload []byte
	)
	if err := row.Scan(&id, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEmpty
		}
		return Entry{}, fmt.Errorf("scan: %w", err)
	}
	return decodeEntry(id, payload)
}

func (a *PostgresArchive) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, payload FROM census_reports ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			id      int64
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entry, err := decodeEntry(id, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (a *PostgresArchive) Close() error { return a.db.Close() }
