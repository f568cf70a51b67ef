// Package journal provides an append-only SQLite-backed audit log of
// maintenance pipeline runs. It is an operational history, not the system
// of record: notes and links always live in the corpus's .md files.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kittclouds/notegraph/pkg/maintenance"
)

// schema defines the single runs table. No foreign keys: this log never
// needs to join back against note identity, only report history.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	phase_reports_json TEXT NOT NULL
);
`

// Journal is the SQLite-backed run history.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at dsn and ensures
// the schema exists. Use ":memory:" for an ephemeral journal.
func Open(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: creating schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RunRecord is one row of run history.
type RunRecord struct {
	ID           string
	StartedAt    int64
	FinishedAt   int64
	PhaseReports maintenance.Report
}

// RecordRun inserts one completed run's report into the journal.
func (j *Journal) RecordRun(id string, startedAt, finishedAt int64, report *maintenance.Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("journal: marshalling report: %w", err)
	}

	_, err = j.db.Exec(
		`INSERT INTO runs (id, started_at, finished_at, phase_reports_json) VALUES (?, ?, ?, ?)`,
		id, startedAt, finishedAt, string(data),
	)
	if err != nil {
		return fmt.Errorf("journal: inserting run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (j *Journal) RecentRuns(limit int) ([]RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, started_at, finished_at, phase_reports_json FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var reportJSON string
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &reportJSON); err != nil {
			return nil, fmt.Errorf("journal: scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(reportJSON), &rec.PhaseReports); err != nil {
			return nil, fmt.Errorf("journal: unmarshalling report for run %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
