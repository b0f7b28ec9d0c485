package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"wardcore/internal/census"
)

// SQLiteArchive stores reports as JSON rows in a single sqlite table.
type SQLiteArchive struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (and if needed creates) a sqlite-backed archive at path.
func NewSQLite(path string) (*SQLiteArchive, error) {
	if path == "" {
		path = "wardcensus.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS census_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create census_reports table: %w", err)
	}
	return &SQLiteArchive{db: db, path: path}, nil
}

func (a *SQLiteArchive) Save(ctx context.Context, report census.Report) (int64, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("encode report: %w", err)
	}
	res, err := a.db.ExecContext(ctx,
		`INSERT INTO census_reports (taken_at, payload) VALUES (?, ?)`,
		report.TakenAt.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (a *SQLiteArchive) Latest(ctx context.Context) (Entry, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, payload FROM census_reports ORDER BY id DESC LIMIT 1`)
	return scanEntry(row)
}

func (a *SQLiteArchive) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, payload FROM census_reports ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
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

func (a *SQLiteArchive) Close() error { return a.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
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

func decodeEntry(id int64, payload []byte) (Entry, error) {
	var report census.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return Entry{}, fmt.Errorf("decode report %d: %w", id, err)
	}
	return Entry{ID: id, TakenAt: report.TakenAt, Report: report}, nil
}
