// Package journal persists a history of reproduction runs in a SQLite
// database under the .dvc directory.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/databill86/dvc/internal/logging"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusChanged  = "changed"
	StatusUpToDate = "up-to-date"
	StatusFailed   = "failed"
)

// Run is one recorded reproduction run.
type Run struct {
	ID         string
	Project    string
	Targets    []string
	Status     string
	Changed    int
	ErrorCode  string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Journal provides persistence for reproduction runs. All methods are
// best effort from the caller's point of view: a broken journal must
// never fail a reproduction.
type Journal struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the journal database at <dvcDir>/journal.db
func Open(dvcDir string, logger *logging.Logger) (*Journal, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	if err := os.MkdirAll(dvcDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dvcDir, err)
	}

	dbPath := filepath.Join(dvcDir, "journal.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	j := &Journal{conn: conn, logger: logger, dbPath: dbPath}
	if err := j.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return j, nil
}

func (j *Journal) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			project TEXT NOT NULL DEFAULT '',
			targets TEXT NOT NULL,
			status TEXT NOT NULL,
			changed INTEGER NOT NULL DEFAULT 0,
			error_code TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// StartRun records the beginning of a reproduction run and returns its id.
func (j *Journal) StartRun(project string, targets []string) (string, error) {
	id := uuid.New().String()
	_, err := j.conn.Exec(
		`INSERT INTO runs (id, project, targets, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, project, strings.Join(targets, " "), StatusRunning,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run started with StartRun.
func (j *Journal) FinishRun(id string, status string, changed int, errorCode string) error {
	_, err := j.conn.Exec(
		`UPDATE runs SET status = ?, changed = ?, error_code = ?, finished_at = ? WHERE id = ?`,
		status, changed, errorCode, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (j *Journal) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.conn.Query(
		`SELECT id, project, targets, status, changed, error_code, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var targets, started, finished string
		if err := rows.Scan(&r.ID, &r.Project, &targets, &r.Status, &r.Changed, &r.ErrorCode, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if targets != "" {
			r.Targets = strings.Fields(targets)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.conn.Close()
}
