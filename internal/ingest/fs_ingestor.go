package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// FSScanner reads PDFs from the local filesystem.
type FSScanner struct {
	logger *slog.Logger
}

func NewFSScanner(logger *slog.Logger) *FSScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSScanner{logger: logger}
}

// HashPath returns the document for a single file.
func (s *FSScanner) HashPath(ctx context.Context, path string) (entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return entity.Document{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return entity.Document{}, fmt.Errorf("abs path: %w", err)
	}
	if !constants.IsAllowedExt(filepath.Ext(abs)) {
		return entity.Document{}, fmt.Errorf("unsupported extension %q", filepath.Ext(abs))
	}

	f, err := os.Open(abs)
	if err != nil {
		return entity.Document{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("ingest.close_failed", "path", abs, "error", err)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return entity.Document{}, fmt.Errorf("hash: %w", err)
	}
	return entity.Document{Path: abs, SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}

// Scan walks each root, skips hidden entries if requested, and hashes every PDF.
// Files whose content was already seen in this scan are reported as deduplicated
// and left out of the returned documents.
func (s *FSScanner) Scan(ctx context.Context, roots []string, skipHidden bool) ([]entity.Document, DirStats, error) {
	var docs []entity.Document
	var total DirStats
	seen := make(map[string]string)

	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			return docs, total, common.ConfigError("document root is empty")
		}
		if _, err := os.Stat(root); err != nil {
			return docs, total, common.ConfigError("document root %q: %v", root, err)
		}

		results, stats, err := s.scanRoot(ctx, root, skipHidden, seen)
		total.add(stats)
		for _, r := range results {
			switch {
			case r.Err != "":
				s.logger.Warn("ingest.file_failed", "path", r.Path, "error", r.Err)
			case r.Deduplicated:
				s.logger.Debug("ingest.file_duplicate", "path", r.Path, "same_as", seen[r.HashHex])
			default:
				docs = append(docs, entity.Document{Path: r.Path, SHA256: r.HashHex, Size: r.Size})
			}
		}
		if err != nil {
			return docs, total, err
		}
	}

	s.logger.Info("ingest.scan.done",
		"roots", len(roots), "scanned", total.Scanned, "matched", total.Matched,
		"documents", len(docs), "deduplicated", total.Deduplicated, "failed", total.Failed)
	return docs, total, nil
}

func (s *FSScanner) scanRoot(ctx context.Context, root string, skipHidden bool, seen map[string]string) ([]ScanResult, DirStats, error) {
	var results []ScanResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, ScanResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, err := s.HashPath(ctx, path)
		if err != nil {
			results = append(results, ScanResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		r := ScanResult{Path: doc.Path, HashHex: doc.SHA256, Size: doc.Size}
		if _, dup := seen[doc.SHA256]; dup {
			r.Deduplicated = true
			stats.Deduplicated++
		} else {
			seen[doc.SHA256] = doc.Path
		}
		results = append(results, r)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return results, stats, nil
}
