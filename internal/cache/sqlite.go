// Package cache keeps fetched OpenAlex works in a local SQLite database so
// that re-processing a vault does not refetch every reference.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

// DB wraps the cache database.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Path   string    `json:"path"`
	Works  int       `json:"works"`
	Bytes  int64     `json:"bytes"`
	Oldest time.Time `json:"oldest,omitempty"`
	Newest time.Time `json:"newest,omitempty"`
}

// Open opens or creates the cache database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			doi TEXT,
			payload TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_works_doi ON works(doi) WHERE doi IS NOT NULL AND doi != '';
	`
	_, err := db.Exec(schema)
	return err
}

// Put stores or refreshes a work.
func (d *DB) Put(ctx context.Context, w *openalex.Work) error {
	if w == nil || w.ID == "" {
		return nil
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding work %s: %w", w.ID, err)
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO works (id, doi, payload, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doi = excluded.doi, payload = excluded.payload, fetched_at = excluded.fetched_at`,
		openalex.ShortID(w.ID), w.BareDOI(), string(payload), d.now().Unix())
	if err != nil {
		return fmt.Errorf("caching work %s: %w", w.ID, err)
	}
	return nil
}

// Get returns the cached work for an OpenAlex id if it is younger than
// maxAge (any age when maxAge <= 0).
func (d *DB) Get(ctx context.Context, id string, maxAge time.Duration) (*openalex.Work, bool, error) {
	return d.lookup(ctx, "id", openalex.ShortID(id), maxAge)
}

// GetByDOI is Get keyed by DOI.
func (d *DB) GetByDOI(ctx context.Context, doi string, maxAge time.Duration) (*openalex.Work, bool, error) {
	doi = openalex.NormalizeDOI(doi)
	if doi == "" {
		return nil, false, nil
	}
	return d.lookup(ctx, "doi", doi, maxAge)
}

func (d *DB) lookup(ctx context.Context, column, key string, maxAge time.Duration) (*openalex.Work, bool, error) {
	var payload string
	var fetchedAt int64
	query := "SELECT payload, fetched_at FROM works WHERE " + column + " = ? ORDER BY fetched_at DESC LIMIT 1"
	err := d.db.QueryRowContext(ctx, query, key).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	if maxAge > 0 && d.now().Sub(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}

	var w openalex.Work
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, false, fmt.Errorf("decoding cached work %s: %w", key, err)
	}
	return &w, true, nil
}

// Stats reports the number and age of cached works.
func (d *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var oldest, newest sql.NullInt64
	var size sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0), MIN(fetched_at), MAX(fetched_at) FROM works",
	).Scan(&s.Works, &size, &oldest, &newest)
	if err != nil {
		return s, fmt.Errorf("reading cache stats: %w", err)
	}
	s.Bytes = size.Int64
	if oldest.Valid {
		s.Oldest = time.Unix(oldest.Int64, 0).UTC()
	}
	if newest.Valid {
		s.Newest = time.Unix(newest.Int64, 0).UTC()
	}
	return s, nil
}

// Clear removes every cached work and returns how many were removed.
func (d *DB) Clear(ctx context.Context) (int64, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM works")
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}
