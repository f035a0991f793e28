// Package sqlite archives raw source payloads in a SQLite database,
// gzip-compressed and deduplicated by content hash per source.
package sqlite

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// ErrNotFound is returned by Get for an unknown payload id.
var ErrNotFound = errors.New("payload not found")

const schema = `
CREATE TABLE IF NOT EXISTS raw_payloads (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	fetched_at         TIMESTAMP NOT NULL,
	source             TEXT NOT NULL,
	payload_compressed BLOB NOT NULL,
	payload_hash       TEXT NOT NULL,
	size_bytes         INTEGER NOT NULL,
	UNIQUE(source, payload_hash)
);
CREATE INDEX IF NOT EXISTS idx_raw_payloads_source ON raw_payloads(source, fetched_at);
`

// Archive stores raw payloads. It implements pipeline.Archiver.
type Archive struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Open opens (creating if needed) the archive database at path and applies
// the schema.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	a := New(db)
	if err := a.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// New wraps an existing database handle. Call Migrate before use.
func New(db *sql.DB) *Archive {
	return &Archive{db: db, clock: clockwork.NewRealClock()}
}

// SetClock replaces the clock used for fetched_at.
func (a *Archive) SetClock(c clockwork.Clock) { a.clock = c }

// Migrate creates the archive schema if missing.
func (a *Archive) Migrate(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	return nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Store compresses and inserts payload. A payload whose hash is already
// archived for the same source is not inserted again; its existing id is
// returned with inserted=false.
func (a *Archive) Store(ctx context.Context, source string, payload []byte) (int64, bool, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return 0, false, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, false, fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)
	hashHex := hex.EncodeToString(hash[:])

	result, err := a.db.ExecContext(ctx, `
		INSERT INTO raw_payloads (fetched_at, source, payload_compressed, payload_hash, size_bytes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source, payload_hash) DO NOTHING
	`, a.clock.Now().UTC(), source, buf.Bytes(), hashHex, len(payload))
	if err != nil {
		return 0, false, fmt.Errorf("insert raw payload: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		var id int64
		if err := a.db.QueryRowContext(ctx, `SELECT id FROM raw_payloads WHERE source = ? AND payload_hash = ?`, source, hashHex).Scan(&id); err != nil {
			return 0, false, fmt.Errorf("lookup duplicate payload: %w", err)
		}
		return id, false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Get retrieves and decompresses a stored payload by id.
func (a *Archive) Get(ctx context.Context, id int64) ([]byte, error) {
	var compressed []byte
	err := a.db.QueryRowContext(ctx, `SELECT payload_compressed FROM raw_payloads WHERE id = ?`, id).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// Stats summarizes the archive contents.
type Stats struct {
	TotalCount    int
	CountBySource map[string]int
	Newest        time.Time
}

// Stats returns payload counts per source and the newest fetch time.
func (a *Archive) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{CountBySource: make(map[string]int)}

	rows, err := a.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM raw_payloads GROUP BY source`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return stats, err
		}
		stats.CountBySource[source] = count
		stats.TotalCount += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	// Selecting the column itself keeps its TIMESTAMP type; MAX() would not.
	err = a.db.QueryRowContext(ctx, `SELECT fetched_at FROM raw_payloads ORDER BY fetched_at DESC LIMIT 1`).Scan(&stats.Newest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, err
	}
	return stats, nil
}

// Prune deletes payloads fetched before cutoff and returns how many were removed.
func (a *Archive) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := a.db.ExecContext(ctx, `DELETE FROM raw_payloads WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
