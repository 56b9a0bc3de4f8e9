package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           BIGSERIAL PRIMARY KEY,
	run_id       UUID NOT NULL UNIQUE,
	taken_at     TIMESTAMPTZ NOT NULL,
	entity_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS canonical_entities (
	position      INTEGER PRIMARY KEY,
	run_id        UUID NOT NULL,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	department    TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	researcher_id TEXT NOT NULL DEFAULT '',
	sources       TEXT NOT NULL DEFAULT '',
	contributing  JSONB NOT NULL DEFAULT '[]'
);`

// PostgresStore keeps snapshots in Postgres.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool, checks it and ensures the snapshot tables exist.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, common.ConfigError("parse database dsn: %v", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "faculty-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.WrapError(err, "connect database")
	}
	if err := HealthCheck(dialCtx, pool, 0, logger); err != nil {
		pool.Close()
		return nil, common.WrapError(err, "ping database")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.WrapError(err, "create snapshot schema")
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Close closes the database connections gracefully
func (s *PostgresStore) Close() error {
	s.logger.Info("closing database connections")
	s.pool.Close()
	return nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// Save replaces canonical_entities with snap in one transaction, sent as a single batch.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	rows, err := toRows(snap.Entities)
	if err != nil {
		return err
	}

	b := &pgx.Batch{}
	b.Queue(`DELETE FROM canonical_entities`)
	b.Queue(`INSERT INTO snapshots (run_id, taken_at, entity_count) VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO UPDATE SET taken_at = EXCLUDED.taken_at, entity_count = EXCLUDED.entity_count`,
		snap.RunID, snap.TakenAt.UTC(), len(rows))
	for _, r := range rows {
		b.Queue(`INSERT INTO canonical_entities
			(position, run_id, name, category, department, email, phone, researcher_id, sources, contributing)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			r.position, snap.RunID, r.name, r.category, r.department, r.email, r.phone,
			r.researcherID, r.sources, string(r.contributing))
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, b)
		for k := 0; k < b.Len(); k++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return err
			}
		}
		return br.Close()
	})
	if err != nil {
		return common.WrapError(err, "save snapshot")
	}
	s.logger.Info("repository.postgres.saved", "run_id", snap.RunID.String(), "entities", len(rows))
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT run_id, taken_at FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&snap.RunID, &snap.TakenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, common.ErrNotFound
	}
	if err != nil {
		return snap, common.WrapError(err, "query latest snapshot")
	}

	rows, err := s.pool.Query(ctx, `SELECT position, name, category, department, email, phone,
		researcher_id, sources, contributing::text FROM canonical_entities ORDER BY position`)
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
