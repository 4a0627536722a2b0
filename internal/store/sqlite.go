package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seantiz/switchyard/internal/model"

	_ "modernc.org/sqlite"
)

const createLogEntriesTable = `
CREATE TABLE IF NOT EXISTS log_entries (
    id         TEXT PRIMARY KEY,
    seq        INTEGER NOT NULL,
    message    TEXT NOT NULL,
    created_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createLogEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create log_entries table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendLog inserts one diagnostic entry.
func (s *SQLiteStore) AppendLog(ctx context.Context, e model.LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO log_entries (id, seq, message, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Seq, e.Message, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// ListLogEntries returns a page of entries in append order (ULIDs sort by
// creation time), along with the total count.
func (s *SQLiteStore) ListLogEntries(ctx context.Context, limit, offset int) ([]model.LogEntry, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM log_entries").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count log entries: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, seq, message, created_at
		FROM log_entries ORDER BY id ASC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.Seq, &e.Message, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate log entries: %w", err)
	}

	return entries, total, nil
}
