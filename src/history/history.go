// Package history keeps an optional SQLite journal of saved captures.
package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"screen-region-capture/src/capture"
	"screen-region-capture/src/screenshot"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS captures (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taken_at INTEGER NOT NULL,        -- UnixNano
    session TEXT NOT NULL,
    path TEXT NOT NULL,
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_captures_session ON captures(session, taken_at);
`

// Entry is one journaled capture.
type Entry struct {
	ID      int64
	TakenAt time.Time
	Session string
	Path    string
	Region  screenshot.Region
	Size    int
}

// Journal records saved captures. It implements capture.Sink.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	log.Printf("HISTORY: Journal opened at %s", path)
	return &Journal{db: db}, nil
}

func (j *Journal) Saved(rec capture.Record) error {
	_, err := j.db.Exec(
		`INSERT INTO captures (taken_at, session, path, x, y, width, height, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TakenAt.UnixNano(), rec.Session, rec.Path,
		rec.Region.X, rec.Region.Y, rec.Region.Width, rec.Region.Height, len(rec.PNG),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty session matches all.
func (j *Journal) Recent(session string, limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, taken_at, session, path, x, y, width, height, size
		 FROM captures
		 WHERE ? = '' OR session = ?
		 ORDER BY taken_at DESC, id DESC
		 LIMIT ?`,
		session, session, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var takenAt int64
		if err := rows.Scan(&e.ID, &takenAt, &e.Session, &e.Path,
			&e.Region.X, &e.Region.Y, &e.Region.Width, &e.Region.Height, &e.Size); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.TakenAt = time.Unix(0, takenAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error { return j.db.Close() }
