package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/probe"
	"github.com/joseph-ayodele/faculty-tracker/internal/profile"
)

// runProbe discovers profiles and, when enabled, reads each profile page.
// Profile records follow the probe records so a richer page wins over the bare name.
func (p *Processor) runProbe(ctx context.Context, intervals []probe.Interval, sum *Summary, log *slog.Logger) []entity.CandidateRecord {
	pc := p.cfg.Probe
	prober := probe.NewProber(p.deps.Fetcher, p.rec, probe.Config{
		BaseURL:      p.cfg.Fetch.BaseURL,
		PathTemplate: pc.PathTemplate,
		Workers:      pc.Workers,
		BatchSize:    pc.BatchSize,
		BatchPause:   pc.BatchPause.Duration,
		MinBodyBytes: pc.MinBodyBytes,
		MinTextChars: pc.MinTextChars,
		Timeout:      p.cfg.Fetch.Timeout.Duration,
	}, log)

	t := time.Now()
	rep, err := prober.Probe(ctx, intervals)
	sum.Durations.Probe = time.Since(t)
	if err != nil {
		// intervals were validated up front
		log.Error("pipeline.probe.failed", "error", err)
		return nil
	}
	sum.Intervals = rep.Stats
	records := rep.Records()

	if !pc.FetchProfiles || len(rep.Results) == 0 || ctx.Err() != nil {
		return records
	}

	t = time.Now()
	extractor := profile.NewExtractor(p.rec, p.deps.Fetcher, p.deps.Images, log)
	collector := profile.NewCollector(p.deps.Fetcher, extractor, pc.Workers, p.cfg.Fetch.DetailTimeout.Duration, log)
	profiles, stats := collector.Collect(ctx, rep.Results)
	sum.Durations.Profiles = time.Since(t)
	sum.Profiles = stats

	return append(records, profiles...)
}
