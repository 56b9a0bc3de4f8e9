package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL UNIQUE,
	taken_at     TEXT NOT NULL,
	entity_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS canonical_entities (
	position      INTEGER PRIMARY KEY,
	run_id        TEXT NOT NULL,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	department    TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	researcher_id TEXT NOT NULL DEFAULT '',
	sources       TEXT NOT NULL DEFAULT '',
	contributing  TEXT NOT NULL DEFAULT '[]'
);`

// SQLiteStore keeps snapshots in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	logger.Info("repository.sqlite.opened", "path", path)
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces canonical_entities with snap and records the run. Last write wins.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) (err error) {
	rows, err := toRows(snap.Entities)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin snapshot tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	runID := snap.RunID.String()
	if _, err = tx.ExecContext(ctx, `DELETE FROM canonical_entities`); err != nil {
		return common.WrapError(err, "clear canonical_entities")
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (run_id, taken_at, entity_count) VALUES (?, ?, ?)`,
		runID, snap.TakenAt.UTC().Format(time.RFC3339Nano), len(rows)); err != nil {
		return common.WrapError(err, "insert snapshot")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO canonical_entities
		(position, run_id, name, category, department, email, phone, researcher_id, sources, contributing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return common.WrapError(err, "prepare entity insert")
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx, r.position, runID, r.name, r.category, r.department,
			r.email, r.phone, r.researcherID, r.sources, string(r.contributing)); err != nil {
			return common.WrapError(err, fmt.Sprintf("insert entity %q", r.name))
		}
	}

	if err = tx.Commit(); err != nil {
		return common.WrapError(err, "commit snapshot")
	}
	s.logger.Info("repository.sqlite.saved", "path", s.path, "run_id", runID, "entities", len(rows))
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var runID, takenAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, taken_at FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&runID, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, common.ErrNotFound
	}
	if err != nil {
		return snap, common.WrapError(err, "query latest snapshot")
	}
	if snap.RunID, err = uuid.Parse(runID); err != nil {
		return snap, fmt.Errorf("parse run id: %w", err)
	}
	if snap.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
		return snap, fmt.Errorf("parse taken_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT position, name, category, department, email, phone,
		researcher_id, sources, contributing FROM canonical_entities ORDER BY position`)
	if err != nil {
		return snap, common.WrapError(err, "query canonical_entities")
	}
	defer rows.Close()
	for rows.Next() {
		var r entityRow
		var contrib string
		if err := rows.Scan(&r.position, &r.name, &r.category, &r.department, &r.email, &r.phone,
			&r.researcherID, &r.sources, &contrib); err != nil {
			return snap, common.WrapError(err, "scan canonical entity")
		}
		r.contributing = []byte(contrib)
		e, err := r.entity()
		if err != nil {
			return snap, err
		}
		snap.Entities = append(snap.Entities, e)
	}
	return snap, rows.Err()
}
