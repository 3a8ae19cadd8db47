// Package state tracks which threads have already been analyzed so
// incremental runs can exclude them. The store is local SQLite; the
// pipeline itself only ever receives an explicit exclusion set.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed (
	thread_id      TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT '',
	processed_at   TEXT NOT NULL,
	run_id         TEXT NOT NULL DEFAULT '',
	issues_created INTEGER NOT NULL DEFAULT 0,
	ticket_ids     TEXT NOT NULL DEFAULT '[]',
	ticket_urls    TEXT NOT NULL DEFAULT '[]',
	error_message  TEXT NOT NULL DEFAULT ''
);
`

// Record is one processed-thread entry.
type Record struct {
	ThreadID      string
	Name          string
	Status        string // success, error, skipped
	ProcessedAt   time.Time
	RunID         string
	IssuesCreated int
	TicketIDs     []string
	TicketURLs    []string
	ErrorMessage  string
}

// Stats summarizes the store contents.
type Stats struct {
	TotalProcessed int
	Successful     int
	Errors         int
	IssuesCreated  int
	LastProcessed  time.Time
}

// Store is the processed-thread database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Processed returns the set of already-processed thread IDs, shaped as
// the exclusion set the batch runner accepts.
func (s *Store) Processed() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT thread_id FROM processed`)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan processed: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// Record upserts one processed-thread entry.
func (s *Store) Record(rec Record) error {
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}
	ids, err := json.Marshal(emptyIfNil(rec.TicketIDs))
	if err != nil {
		return fmt.Errorf("marshal ticket ids: %w", err)
	}
	urls, err := json.Marshal(emptyIfNil(rec.TicketURLs))
	if err != nil {
		return fmt.Errorf("marshal ticket urls: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO processed
			(thread_id, name, status, processed_at, run_id, issues_created, ticket_ids, ticket_urls, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			processed_at = excluded.processed_at,
			run_id = excluded.run_id,
			issues_created = excluded.issues_created,
			ticket_ids = excluded.ticket_ids,
			ticket_urls = excluded.ticket_urls,
			error_message = excluded.error_message`,
		rec.ThreadID, rec.Name, rec.Status, rec.ProcessedAt.Format(time.RFC3339),
		rec.RunID, rec.IssuesCreated, string(ids), string(urls), rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("record thread %s: %w", rec.ThreadID, err)
	}
	return nil
}

// History returns processed entries, most recent first. limit <= 0
// returns everything.
func (s *Store) History(limit int) ([]Record, error) {
	q := `SELECT thread_id, name, status, processed_at, run_id, issues_created, ticket_ids, ticket_urls, error_message
		FROM processed ORDER BY processed_at DESC, thread_id`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var at, ids, urls string
		if err := rows.Scan(&rec.ThreadID, &rec.Name, &rec.Status, &at, &rec.RunID,
			&rec.IssuesCreated, &ids, &urls, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.ProcessedAt, _ = time.Parse(time.RFC3339, at)
		if err := json.Unmarshal([]byte(ids), &rec.TicketIDs); err != nil {
			rec.TicketIDs = nil
		}
		if err := json.Unmarshal([]byte(urls), &rec.TicketURLs); err != nil {
			rec.TicketURLs = nil
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats summarizes processing history.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	var last sql.NullString
	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(issues_created), 0),
			MAX(processed_at)
		FROM processed`).Scan(&st.TotalProcessed, &st.Successful, &st.Errors, &st.IssuesCreated, &last)
	if err != nil {
		return st, fmt.Errorf("query stats: %w", err)
	}
	if last.Valid {
		st.LastProcessed, _ = time.Parse(time.RFC3339, last.String)
	}
	return st, nil
}

// Clear removes all processing state.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM processed`); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
