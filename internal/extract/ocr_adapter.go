package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/ocr"
)

// OCRStrategy adapts the OCR engine's scanned-PDF path to the ensemble.
type OCRStrategy struct {
	engine *ocr.Engine
	logger *slog.Logger
}

func NewOCRStrategy(engine *ocr.Engine, logger *slog.Logger) *OCRStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStrategy{engine: engine, logger: logger}
}

func (s *OCRStrategy) Name() constants.Strategy { return constants.StrategyOCR }

func (s *OCRStrategy) Extract(ctx context.Context, doc entity.Document) (Payload, error) {
	pages, warns, err := s.engine.RecognizePDF(ctx, doc.Path)
	for _, w := range warns {
		s.logger.Warn("extract.ocr.page_failed", "path", doc.Path, "detail", w)
	}
	if err != nil {
		return Payload{}, err
	}

	var out Payload
	var sum float32
	for _, p := range pages {
		out.Pages = append(out.Pages, entity.PageText{Page: p.Page, Text: p.Text})
		sum += ocr.Confidence(p.Text)
	}
	if len(pages) > 0 {
		out.Confidence = sum / float32(len(pages))
	}
	return out, nil
}
