package profile

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// CollectStats counts detail-page outcomes.
type CollectStats struct {
	Attempted int `json:"attempted"`
	Collected int `json:"collected"`
	Failed    int `json:"failed"`
}

// Collector fetches the detail page of every accepted probe on a bounded pool.
type Collector struct {
	fetcher   Fetcher
	extractor *Extractor
	workers   int
	timeout   time.Duration
	logger    *slog.Logger
}

func NewCollector(fetcher Fetcher, extractor *Extractor, workers int, timeout time.Duration, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 10
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Collector{fetcher: fetcher, extractor: extractor, workers: workers, timeout: timeout, logger: logger}
}

// Collect returns one htmlProfile record per profile that could be fetched and
// parsed, in probe order. Failures are logged and counted, never returned.
func (c *Collector) Collect(ctx context.Context, probes []entity.ProbeResult) ([]entity.CandidateRecord, CollectStats) {
	slots := make([]*entity.CandidateRecord, len(probes))

	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for i, p := range probes {
		i, p := i, p
		if !p.Exists || p.SourceURL == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			body, err := c.fetcher.FetchBytes(ctx, p.SourceURL, c.timeout)
			if err != nil {
				c.logger.Debug("profile.fetch.failed", "id", p.NumericID, "url", p.SourceURL, "error", err)
				return nil
			}
			f, err := c.extractor.Extract(ctx, p.SourceURL, body)
			if err != nil {
				c.logger.Debug("profile.parse.failed", "id", p.NumericID, "error", err)
				return nil
			}
			if p.DisplayName != "" {
				f.Set(constants.FieldName, p.DisplayName)
			}
			rec := entity.NewCandidate(f, constants.SourceHTMLProfile, p.SourceURL)
			slots[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	var stats CollectStats
	var out []entity.CandidateRecord
	for i, p := range probes {
		if !p.Exists || p.SourceURL == "" {
			continue
		}
		stats.Attempted++
		if slots[i] == nil {
			stats.Failed++
			continue
		}
		stats.Collected++
		out = append(out, *slots[i])
	}
	c.logger.Info("profile.collect.done",
		"attempted", stats.Attempted, "collected", stats.Collected, "failed", stats.Failed)
	return out, stats
}
