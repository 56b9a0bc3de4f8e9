package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// TextStrategy reads the plain text stream of every page.
// The stream only breaks lines on T* and quote operators, so a page that comes
// back as a single line is rebuilt from glyph baselines instead.
type TextStrategy struct {
	maxPages int
}

func NewTextStrategy(maxPages int) *TextStrategy {
	return &TextStrategy{maxPages: maxPages}
}

func (s *TextStrategy) Name() constants.Strategy { return constants.StrategyText }

func (s *TextStrategy) Extract(ctx context.Context, doc entity.Document) (Payload, error) {
	f, r, err := openPDF(doc.Path)
	if err != nil {
		return Payload{}, err
	}
	defer func() { _ = f.Close() }()

	var out Payload
	pageErrs, err := eachPage(ctx, r, s.maxPages, func(n int, p pdf.Page) error {
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return err
		}
		if !strings.Contains(strings.TrimSpace(txt), "\n") {
			txt = splitBaselines(p, txt)
		}
		out.Pages = append(out.Pages, entity.PageText{Page: n, Text: txt})
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

// splitBaselines returns the page text with a line break wherever the baseline
// changes, or plain unchanged when the glyphs sit on one line or cannot be read.
func splitBaselines(p pdf.Page, plain string) string {
	texts, err := pageGlyphs(p)
	if err != nil {
		return plain
	}
	if rebuilt := glyphText(texts, " "); strings.Contains(rebuilt, "\n") {
		return rebuilt
	}
	return plain
}
