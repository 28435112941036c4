package session

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const indexPath = ".gloop/sessions.db"

const indexSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// openIndex opens the session index database, mirroring
// sacenox-symb/internal/store.Open's pragma setup (WAL journaling plus a
// busy timeout so a concurrent subagent process doesn't fail outright on
// a locked index). Opened and closed per call rather than held open for
// the process lifetime: session saves are infrequent, and a held-open
// handle would pin the index to whatever working directory was current
// the first time it was touched.
func openIndex() (*sql.DB, error) {
	if err := ensureSessionsDir(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", indexPath)
	if err != nil {
		return nil, fmt.Errorf("open session index: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session index schema: %w", err)
	}
	return db, nil
}

// recordIndex upserts a session's id and timestamps into the index so
// ListSessions can return them without a directory scan.
func recordIndex(id string, created, updated time.Time) error {
	db, err := openIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		id, created.Unix(), updated.Unix(),
	)
	return err
}

// indexedIDs returns every session id in the index, oldest first.
func indexedIDs() ([]string, error) {
	db, err := openIndex()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT id FROM sessions ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
