package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS recordings (
	id              TEXT PRIMARY KEY,
	app_name        TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	size            INTEGER NOT NULL,
	total_events    INTEGER NOT NULL,
	total_snapshots INTEGER NOT NULL,
	duration_ns     INTEGER NOT NULL,
	document        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recordings_created ON recordings(created_at DESC);
`

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// SQLiteStore keeps recordings in a single table of a local database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path. ":memory:"
// opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	for _, p := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, entry Entry, data []byte) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO recordings (id, app_name, created_at, size, total_events, total_snapshots, duration_ns, document)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	app_name = excluded.app_name,
	created_at = excluded.created_at,
	size = excluded.size,
	total_events = excluded.total_events,
	total_snapshots = excluded.total_snapshots,
	duration_ns = excluded.duration_ns,
	document = excluded.document`,
		entry.ID, entry.AppName, entry.CreatedAt.UnixNano(), entry.Size,
		entry.Stats.TotalEvents, entry.Stats.TotalSnapshots, int64(entry.Stats.Duration), data)
	if err != nil {
		return fmt.Errorf("saving recording %s: %w", entry.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner, extra ...any) (Entry, error) {
	var (
		e        Entry
		created  int64
		duration int64
	)
	dest := append([]any{&e.ID, &e.AppName, &created, &e.Size, &e.Stats.TotalEvents, &e.Stats.TotalSnapshots, &duration}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	e.Stats.Duration = time.Duration(duration)
	return e, nil
}

const entryColumns = `id, app_name, created_at, size, total_events, total_snapshots, duration_ns`

func (s *SQLiteStore) Load(ctx context.Context, id string) (Entry, []byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+`, document FROM recordings WHERE id = ?`, id)
	var data []byte
	entry, err := scanEntry(row, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, nil, ErrNotFound
	}
	if err != nil {
		return Entry{}, nil, fmt.Errorf("loading recording %s: %w", id, err)
	}
	return entry, data, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM recordings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("listing recordings: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting recording %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting recording %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
