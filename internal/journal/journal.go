// Package journal keeps a SQLite history of produced operation results.
//
// Only results are journaled. The service status is process state and is
// never persisted.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
)

const defaultListLimit = 50

// Entry is one journaled result.
type Entry struct {
	ID         string
	Operation  operation.Kind
	Path       operation.Path
	Confidence float64
	Content    string
	Details    operation.Details
	CreatedAt  time.Time
}

// Journal appends results and lists them newest first.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeJournalWriteFailed, "cannot create journal directory", apperrors.KindInternal)
		}
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeJournalWriteFailed, "cannot open journal", apperrors.KindInternal)
	}

	j := &Journal{db: db}
	if err := j.init(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeJournalWriteFailed, "cannot initialize journal schema", apperrors.KindInternal)
	}
	return j, nil
}

// openDB opens a single SQLite database with optimal settings.
func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// ============================================================
// SCHEMA
// ============================================================

func (j *Journal) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS results (
		id              TEXT PRIMARY KEY,
		operation       TEXT NOT NULL,
		path            TEXT NOT NULL,
		confidence      REAL NOT NULL DEFAULT 0,
		content         TEXT NOT NULL,
		details_json    TEXT,
		created_at      INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_results_operation ON results(operation, created_at DESC);

	INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (1, 'results journal');
	`

	_, err := j.db.Exec(schema)
	return err
}

// ============================================================
// WRITE / READ
// ============================================================

// Record appends a produced result.
func (j *Journal) Record(ctx context.Context, op operation.Kind, path operation.Path, r operation.Result) error {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeJournalWriteFailed, "cannot encode result details", apperrors.KindInternal)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO results (id, operation, path, confidence, content, details_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(op), string(path), r.Confidence, r.Content, string(details), r.CreatedAt.UnixMilli())
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeJournalWriteFailed, "cannot write journal entry", apperrors.KindInternal)
	}
	return nil
}

// List returns up to limit entries, newest first, optionally filtered by
// operation. A limit <= 0 uses the default.
func (j *Journal) List(ctx context.Context, op operation.Kind, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, operation, path, confidence, content, details_json, created_at FROM results`
	args := []any{}
	if op != "" {
		query += ` WHERE operation = ?`
		args = append(args, string(op))
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeJournalReadFailed, "cannot read journal", apperrors.KindInternal)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			opName    string
			pathName  string
			details   sql.NullString
			createdMs int64
		)
		if err := rows.Scan(&e.ID, &opName, &pathName, &e.Confidence, &e.Content, &details, &createdMs); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeJournalReadFailed, "cannot scan journal entry", apperrors.KindInternal)
		}
		e.Operation = operation.Kind(opName)
		e.Path = operation.Path(pathName)
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		if details.Valid && details.String != "" {
			// Old rows with broken details still list their content.
			_ = json.Unmarshal([]byte(details.String), &e.Details)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeJournalReadFailed, "cannot read journal", apperrors.KindInternal)
	}
	return entries, nil
}

// Count returns the number of journaled results.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeJournalReadFailed, "cannot count journal entries", apperrors.KindInternal)
	}
	return n, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}
