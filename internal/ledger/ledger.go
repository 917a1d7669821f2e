// Package ledger records schema and seed runs in a local SQLite database so
// `agrigraph status` can show recent activity without touching the graph.
package ledger

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	agerrors "github.com/agrigpt/agrigraph/internal/errors"
)

const dbFileName = "runs.db"

// Run is one recorded command execution.
type Run struct {
	ID         int64
	Command    string
	StartedAt  time.Time
	FinishedAt time.Time
	Detail     string
	Error      string
}

// Ledger is the local run history store.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database under dataDir.
func Open(dataDir string) (*Ledger, error) {
	dsn := filepath.Join(dataDir, dbFileName) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, agerrors.New(agerrors.ErrCodeStoreUnavailable, "open run ledger", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		command TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	return nil
}

// Record appends one run. A nil runErr records a clean run.
func (l *Ledger) Record(command string, startedAt, finishedAt time.Time, detail string, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := l.db.Exec(`
		INSERT INTO runs (command, started_at, finished_at, detail, error)
		VALUES (?, ?, ?, ?, ?)
	`, command, startedAt.UTC(), finishedAt.UTC(), detail, errText)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (l *Ledger) Recent(limit int) ([]Run, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := l.db.Query(`
		SELECT id, command, started_at, finished_at, detail, error
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.StartedAt, &r.FinishedAt, &r.Detail, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
