package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/export"
	"github.com/joseph-ayodele/faculty-tracker/internal/repository"
)

// fileBase is the stem of every snapshot file written to the output dir.
const fileBase = "faculty"

// WriteOutputs writes res to every configured file format and snapshot store.
// It returns the files and stores written; the first failure stops it.
func WriteOutputs(ctx context.Context, cfg *common.Config, res Result, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var written []string

	if len(cfg.Output.Formats) > 0 {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return written, fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, format := range cfg.Output.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		path := filepath.Join(cfg.Output.Dir, fileBase+"."+format)
		if err := writeFile(path, format, res.Entities, cfg.Output.Provenance, logger); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	snap := repository.Snapshot{RunID: res.Summary.RunID, TakenAt: time.Now(), Entities: res.Entities}
	if p := cfg.Database.SQLitePath; p != "" {
		store, err := repository.OpenSQLite(ctx, p, logger)
		if err != nil {
			return written, err
		}
		if err := saveAndClose(ctx, store, snap); err != nil {
			return written, err
		}
		written = append(written, "sqlite:"+p)
	}
	if dsn := cfg.Database.DSN; dsn != "" {
		store, err := repository.OpenPostgres(ctx, repository.Config{
			DSN:              dsn,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime.Duration,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime.Duration,
			DialTimeout:      cfg.Database.DialTimeout.Duration,
			StatementTimeout: cfg.Database.StatementTimeout.Duration,
		}, logger)
		if err != nil {
			return written, err
		}
		if err := saveAndClose(ctx, store, snap); err != nil {
			return written, err
		}
		written = append(written, "postgres")
	}
	return written, nil
}

func saveAndClose(ctx context.Context, store repository.SnapshotStore, snap repository.Snapshot) error {
	err := store.Save(ctx, snap)
	if cerr := store.Close(); err == nil && cerr != nil {
		err = cerr
	}
	return err
}

func writeFile(path, format string, entities []entity.CanonicalEntity, provenance bool, logger *slog.Logger) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	switch format {
	case "csv":
		err = export.WriteCSV(f, entities, provenance)
	case "json":
		err = export.WriteJSON(f, entities, provenance)
	case "xlsx":
		err = export.WriteXLSX(f, entities, provenance, logger)
	default:
		err = common.ConfigError("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("pipeline.output.written", "path", path, "rows", len(entities))
	return nil
}
