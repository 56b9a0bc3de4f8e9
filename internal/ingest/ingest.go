// Package ingest discovers the PDF documents a run extracts from.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// ScanResult is the per-file discovery outcome.
type ScanResult struct {
	Path         string
	HashHex      string
	Size         int64
	Deduplicated bool // same content as an earlier file of the scan
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

func (s *DirStats) add(o DirStats) {
	s.Scanned += o.Scanned
	s.Matched += o.Matched
	s.Succeeded += o.Succeeded
	s.Deduplicated += o.Deduplicated
	s.Failed += o.Failed
}

// Scanner is the behavior the pipeline depends on.
type Scanner interface {
	// Scan walks every root and returns one document per distinct file content.
	Scan(ctx context.Context, roots []string, skipHidden bool) ([]entity.Document, DirStats, error)
}
