// Package async runs document extraction on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to extract. Seq orders the collected reports.
type Job struct {
	Seq         int
	Document    entity.Document
	SubmittedAt time.Time
}

// Extractor is what a worker runs per document; extract.Ensemble satisfies it.
type Extractor interface {
	Run(ctx context.Context, doc entity.Document) entity.ExtractionReport
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}
