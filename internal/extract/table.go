package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/ocr"
)

// PositionalTableStrategy detects tables from raw glyph coordinates: glyphs are
// clustered into lines by baseline and into cells by horizontal gaps.
type PositionalTableStrategy struct {
	maxPages int
}

func NewPositionalTableStrategy(maxPages int) *PositionalTableStrategy {
	return &PositionalTableStrategy{maxPages: maxPages}
}

func (s *PositionalTableStrategy) Name() constants.Strategy { return constants.StrategyTableEngineA }

func (s *PositionalTableStrategy) Extract(ctx context.Context, doc entity.Document) (Payload, error) {
	f, r, err := openPDF(doc.Path)
	if err != nil {
		return Payload{}, err
	}
	defer func() { _ = f.Close() }()

	var out Payload
	pageErrs, err := eachPage(ctx, r, s.maxPages, func(n int, p pdf.Page) error {
		texts, err := pageGlyphs(p)
		if err != nil {
			return err
		}
		lines := groupLines(texts, lineTolerance)
		grid := make([][]string, 0, len(lines))
		for _, l := range lines {
			grid = append(grid, splitCells(l.glyphs))
		}
		out.Tables = append(out.Tables, detectTables(n, grid)...)
		return nil
	})
	if err != nil {
		return out, err
	}
	if out.empty() && len(pageErrs) > 0 {
		return out, errors.Join(pageErrs...)
	}
	return out, nil
}

// LayoutTableStrategy detects tables in pdftotext's fixed-width layout output,
// treating runs of two or more spaces as column separators.
type LayoutTableStrategy struct {
	engine *ocr.Engine
}

func NewLayoutTableStrategy(engine *ocr.Engine) *LayoutTableStrategy {
	return &LayoutTableStrategy{engine: engine}
}

func (s *LayoutTableStrategy) Name() constants.Strategy { return constants.StrategyTableEngineB }

func (s *LayoutTableStrategy) Extract(ctx context.Context, doc entity.Document) (Payload, error) {
	pages, err := s.engine.LayoutText(ctx, doc.Path)
	if err != nil {
		return Payload{}, err
	}
	var out Payload
	for i, page := range pages {
		lines := strings.Split(page, "\n")
		grid := make([][]string, 0, len(lines))
		for _, l := range lines {
			grid = append(grid, splitLayoutLine(l))
		}
		out.Tables = append(out.Tables, detectTables(i+1, grid)...)
	}
	return out, nil
}
