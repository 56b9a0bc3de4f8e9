package extract

import (
	"context"
	"errors"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// LayoutStrategy rebuilds page text from glyph positions: one line per baseline,
// column gaps kept as double spaces.
type LayoutStrategy struct {
	maxPages int
}

func NewLayoutStrategy(maxPages int) *LayoutStrategy {
	return &LayoutStrategy{maxPages: maxPages}
}

func (s *LayoutStrategy) Name() constants.Strategy { return constants.StrategyLayoutText }

func (s *LayoutStrategy) Extract(ctx context.Context, doc entity.Document) (Payload, error) {
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
		out.Pages = append(out.Pages, entity.PageText{Page: n, Text: glyphText(texts, "  ")})
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
