// Package store provides SQLite-backed storage of analysis runs.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/setevik/rfkpi/internal/kpi"
)

// Run is one recorded analysis of a log export.
type Run struct {
	ID             string
	InstanceID     string
	Timestamp      time.Time
	Source         string
	LineCount      int
	MalformedCount int
	SampleCount    int
	AttemptCount   int
	Passed         bool
	Verdicts       []kpi.Verdict
}

// NewRun builds a Run record from an evaluation report.
func NewRun(instanceID, source string, rep *kpi.Report) *Run {
	return &Run{
		ID:             uuid.NewString(),
		InstanceID:     instanceID,
		Timestamp:      time.Now(),
		Source:         source,
		LineCount:      rep.LineCount,
		MalformedCount: rep.MalformedCount,
		SampleCount:    rep.SampleCount,
		AttemptCount:   rep.AttemptCount,
		Passed:         !rep.Failed(),
		Verdicts:       rep.Verdicts,
	}
}

// DB wraps an SQLite connection for run storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Insert stores a new run in the database.
func (d *DB) Insert(run *Run) error {
	verdictJSON, err := json.Marshal(run.Verdicts)
	if err != nil {
		verdictJSON = []byte("[]")
	}

	_, err = d.db.Exec(`
		INSERT INTO runs (id, instance_id, timestamp, source, line_count, malformed_count, sample_count, attempt_count, passed, verdicts_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.InstanceID,
		run.Timestamp.UTC().Format(time.RFC3339Nano),
		run.Source,
		run.LineCount,
		run.MalformedCount,
		run.SampleCount,
		run.AttemptCount,
		run.Passed,
		string(verdictJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// QueryFilter controls which runs are returned by Query.
type QueryFilter struct {
	Since      time.Time
	Until      time.Time
	InstanceID string
	OnlyFailed bool
	Limit      int
}

// Query returns runs matching the filter, ordered by timestamp descending.
func (d *DB) Query(f QueryFilter) ([]*Run, error) {
	query := `SELECT id, instance_id, timestamp, source, line_count, malformed_count, sample_count, attempt_count, passed, verdicts_json
		FROM runs WHERE 1=1`
	var args []interface{}

	if !f.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if !f.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339Nano))
	}
	if f.InstanceID != "" {
		query += " AND instance_id = ?"
		args = append(args, f.InstanceID)
	}
	if f.OnlyFailed {
		query += " AND passed = FALSE"
	}

	query += " ORDER BY timestamp DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Purge deletes runs older than the given retention duration.
func (d *DB) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	result, err := d.db.Exec(`DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging old runs: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the total number of stored runs.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var run Run
	var tsStr, verdictJSON string
	var source sql.NullString

	err := rows.Scan(
		&run.ID,
		&run.InstanceID,
		&tsStr,
		&source,
		&run.LineCount,
		&run.MalformedCount,
		&run.SampleCount,
		&run.AttemptCount,
		&run.Passed,
		&verdictJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning run row: %w", err)
	}

	run.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
	run.Source = source.String
	if verdictJSON != "" {
		_ = json.Unmarshal([]byte(verdictJSON), &run.Verdicts)
	}

	return &run, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			instance_id     TEXT NOT NULL,
			timestamp       TEXT NOT NULL,
			source          TEXT,
			line_count      INTEGER NOT NULL,
			malformed_count INTEGER NOT NULL,
			sample_count    INTEGER NOT NULL,
			attempt_count   INTEGER NOT NULL,
			passed          BOOLEAN NOT NULL,
			verdicts_json   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_instance_ts ON runs(instance_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_passed ON runs(passed, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("database schema up to date")
	return nil
}
