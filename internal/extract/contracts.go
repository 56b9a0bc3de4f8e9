// Package extract runs several independent text and table extraction strategies over
// one PDF and keeps every outcome, successful or not, for the recognizer.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// ErrNoContent is the failure recorded for a strategy that ran cleanly but found nothing.
var ErrNoContent = errors.New("no content")

// Strategy is one member of the ensemble: file -> pages and/or tables.
type Strategy interface {
	Name() constants.Strategy
	Extract(ctx context.Context, doc entity.Document) (Payload, error)
}

// Payload is what a strategy recovered from a document.
type Payload struct {
	Pages      []entity.PageText
	Tables     []entity.Table
	Confidence float32
}

func (p Payload) empty() bool {
	for _, pg := range p.Pages {
		if strings.TrimSpace(pg.Text) != "" {
			return false
		}
	}
	return len(p.Tables) == 0
}

// Run executes s and folds its result, error or panic into a tagged outcome.
func Run(ctx context.Context, s Strategy, doc entity.Document) (out entity.ExtractionOutcome) {
	start := time.Now()
	out.Strategy = s.Name()
	defer func() {
		if r := recover(); r != nil {
			out.Status = constants.OutcomeFailed
			out.Pages, out.Tables, out.Confidence = nil, nil, 0
			out.ErrorDetail = fmt.Sprintf("panic: %v", r)
		}
		out.Duration = time.Since(start)
	}()

	p, err := s.Extract(ctx, doc)
	if err == nil && p.empty() {
		err = ErrNoContent
	}
	if err != nil {
		out.Status = constants.OutcomeFailed
		out.ErrorDetail = err.Error()
		return out
	}

	out.Status = constants.OutcomeSuccess
	for _, pg := range p.Pages {
		if strings.TrimSpace(pg.Text) != "" {
			out.Pages = append(out.Pages, pg)
		}
	}
	out.Tables = p.Tables
	out.Confidence = p.Confidence
	return out
}
