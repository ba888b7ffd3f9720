package persist

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// OutputCache is a durable record of task outputs produced by past
// sessions, one row per (session, task key) pair. Grounded in
// blueman82-conductor's internal/learning.Store: an embedded schema
// applied on open, database/sql on top of mattn/go-sqlite3.
type OutputCache struct {
	db *sql.DB
}

// OpenOutputCache opens (creating if necessary) the SQLite database at
// path and applies the embedded schema. path may be ":memory:".
func OpenOutputCache(path string) (*OutputCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open output cache %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: init output cache schema: %w", err)
	}
	return &OutputCache{db: db}, nil
}

// Close releases the underlying database connection.
func (c *OutputCache) Close() error { return c.db.Close() }

// Put records output as the current value for (session, taskKey),
// overwriting any prior record for the same pair.
func (c *OutputCache) Put(session uuid.UUID, taskKey string, output []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO task_outputs (session_id, task_key, output, recorded_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id, task_key) DO UPDATE SET output = excluded.output, recorded_at = excluded.recorded_at`,
		session.String(), taskKey, output,
	)
	if err != nil {
		return fmt.Errorf("persist: record output for %s/%s: %w", session, taskKey, err)
	}
	return nil
}

// Get returns the output recorded for (session, taskKey), and whether a
// record exists at all.
func (c *OutputCache) Get(session uuid.UUID, taskKey string) ([]byte, bool, error) {
	var output []byte
	err := c.db.QueryRow(
		`SELECT output FROM task_outputs WHERE session_id = ? AND task_key = ?`,
		session.String(), taskKey,
	).Scan(&output)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("persist: query output for %s/%s: %w", session, taskKey, err)
	}
	return output, true, nil
}

// Sessions returns every distinct session recorded in the cache, most
// recently touched first.
func (c *OutputCache) Sessions() ([]uuid.UUID, error) {
	rows, err := c.db.Query(`SELECT session_id FROM task_outputs GROUP BY session_id ORDER BY MAX(recorded_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("persist: query sessions: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("persist: scan session id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("persist: malformed session id %q: %w", raw, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
