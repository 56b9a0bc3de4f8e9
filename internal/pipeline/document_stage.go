package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/internal/async"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/extract"
)

type documentStage struct {
	p        *Processor
	queue    *async.DocumentQueue
	enqueued chan int
	start    time.Time
	log      *slog.Logger
}

// startDocuments puts every document on the worker queue. Once ctx is done no
// further document is submitted; queued ones still run and fail fast.
func (p *Processor) startDocuments(ctx context.Context, docs []entity.Document, log *slog.Logger) *documentStage {
	st := &documentStage{p: p, enqueued: make(chan int, 1), start: time.Now(), log: log}
	if len(docs) == 0 {
		st.enqueued <- 0
		return st
	}

	qc := p.cfg.Queue
	st.queue = async.NewDocumentQueue(ctx, p.deps.Extractor, log,
		async.WithWorkers(qc.Workers),
		async.WithQueueSize(qc.Size),
		async.WithProcessTimeout(qc.ProcessTimeout.Duration),
	)
	go func() {
		n := 0
		for i, d := range docs {
			if ctx.Err() != nil {
				log.Warn("pipeline.documents.cancelled", "submitted", n, "skipped", len(docs)-n)
				break
			}
			if err := st.queue.Enqueue(ctx, async.Job{Seq: i, Document: d}); err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					log.Error("pipeline.documents.enqueue_failed", "path", d.Path, "error", err)
				}
				continue
			}
			n++
		}
		st.enqueued <- n
	}()
	return st
}

// wait drains the queue and turns every report into candidates, in input order.
func (st *documentStage) wait(sum *Summary) ([]entity.ExtractionReport, []entity.CandidateRecord) {
	submitted := <-st.enqueued
	if st.queue == nil {
		return nil, nil
	}
	if err := st.queue.Shutdown(context.Background()); err != nil {
		st.log.Warn("pipeline.documents.shutdown", "error", err)
	}

	var reports []entity.ExtractionReport
	var records []entity.CandidateRecord
	for _, c := range st.queue.Reports() {
		recs := extract.Candidates(c.Report, st.p.rec)
		reports = append(reports, c.Report)
		records = append(records, recs...)
		sum.addDocument(c.Job.Document.Path, c.Report, len(recs), c.Duration)
	}
	sum.Durations.Documents = time.Since(st.start)
	st.log.Info("pipeline.documents.done", "submitted", submitted, "reports", len(reports), "candidates", len(records))
	return reports, records
}
