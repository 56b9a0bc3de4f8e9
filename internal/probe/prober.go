// Package probe discovers which identifiers of a numeric directory space
// resolve to real profile pages.
package probe

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
)

// Fetcher is the slice of the fetch client the prober needs. Any error means
// the identifier does not exist.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

type Config struct {
	BaseURL      string
	PathTemplate string // must contain {id}; absolute templates ignore BaseURL
	Workers      int
	BatchSize    int
	BatchPause   time.Duration
	MinBodyBytes int
	MinTextChars int
	Timeout      time.Duration // per request; 0 uses the fetcher default
}

func DefaultConfig() Config {
	return Config{
		PathTemplate: "/previewPerfil.php?id={id}",
		Workers:      10,
		BatchSize:    50,
		BatchPause:   time.Second,
		MinBodyBytes: 500,
		MinTextChars: 100,
	}
}

// IntervalStats summarizes one interval of a probe run.
type IntervalStats struct {
	Interval  Interval          `json:"interval"`
	Probed    int               `json:"probed"`
	Found     int               `json:"found"`
	Errors    int               `json:"errors"`
	Rejected  map[Rejection]int `json:"rejected,omitempty"`
	Cancelled int               `json:"cancelled"`
}

// Report is the outcome of a probe run: accepted profiles sorted by identifier.
type Report struct {
	Results []entity.ProbeResult `json:"results"`
	Stats   []IntervalStats      `json:"stats"`
}

// Records converts the accepted results into candidate records.
func (r Report) Records() []entity.CandidateRecord {
	out := make([]entity.CandidateRecord, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Record())
	}
	return out
}

type Prober struct {
	fetcher Fetcher
	rec     *recognize.Recognizer
	cfg     Config
	logger  *slog.Logger
}

func NewProber(fetcher Fetcher, rec *recognize.Recognizer, cfg Config, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = recognize.New(recognize.DefaultConfig())
	}
	def := DefaultConfig()
	if cfg.PathTemplate == "" {
		cfg.PathTemplate = def.PathTemplate
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = 0
	}
	return &Prober{fetcher: fetcher, rec: rec, cfg: cfg, logger: logger}
}

// URL is the profile address for id.
func (p *Prober) URL(id int64) string {
	path := strings.ReplaceAll(p.cfg.PathTemplate, "{id}", strconv.FormatInt(id, 10))
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(p.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

type verdict struct {
	result    entity.ProbeResult
	fetchErr  bool
	rejection Rejection
}

// Probe checks every identifier of intervals. Batches run one after another with
// BatchPause between them; within a batch at most Workers requests are in flight.
// Once ctx is done no further batch starts; requests already sent finish or time out.
func (p *Prober) Probe(ctx context.Context, intervals []Interval) (Report, error) {
	if err := ValidateIntervals(intervals); err != nil {
		return Report{}, err
	}

	seen := make(map[int64]bool)
	var rep Report
	first := true
	for _, iv := range intervals {
		st := IntervalStats{Interval: iv, Rejected: map[Rejection]int{}}
		for lo := iv.Start; ; lo += int64(p.cfg.BatchSize) {
			hi := lo + int64(p.cfg.BatchSize) - 1
			if hi > iv.End || hi < lo {
				hi = iv.End
			}
			if !first && !p.pause(ctx) || ctx.Err() != nil {
				st.Cancelled += int(iv.End - lo + 1)
				break
			}
			first = false

			for _, v := range p.runBatch(ctx, lo, hi) {
				st.Probed++
				switch {
				case v.fetchErr:
					st.Errors++
				case v.rejection != Accepted:
					st.Rejected[v.rejection]++
				case !seen[v.result.NumericID]:
					seen[v.result.NumericID] = true
					st.Found++
					rep.Results = append(rep.Results, v.result)
				}
			}
			p.logger.Debug("probe.batch.done", "interval", iv.String(), "from", lo, "to", hi, "found", st.Found)
			if hi == iv.End {
				break
			}
		}
		p.logger.Info("probe.interval.done",
			"interval", iv.String(), "probed", st.Probed, "found", st.Found,
			"errors", st.Errors, "cancelled", st.Cancelled)
		rep.Stats = append(rep.Stats, st)
	}

	sort.Slice(rep.Results, func(i, j int) bool { return rep.Results[i].NumericID < rep.Results[j].NumericID })
	return rep, nil
}

func (p *Prober) pause(ctx context.Context) bool {
	if p.cfg.BatchPause <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(p.cfg.BatchPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// runBatch probes [lo, hi]. Each task writes only its own slot.
func (p *Prober) runBatch(ctx context.Context, lo, hi int64) []verdict {
	slots := make([]verdict, hi-lo+1)
	// in-flight requests are not cut short by cancellation
	reqCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.Workers)
	for i := range slots {
		i := i
		id := lo + int64(i)
		g.Go(func() error {
			url := p.URL(id)
			v := verdict{result: entity.ProbeResult{NumericID: id, SourceURL: url}}
			body, err := p.fetcher.FetchBytes(reqCtx, url, p.cfg.Timeout)
			if err != nil {
				v.fetchErr = true
			} else if name, why := p.assess(body); why != Accepted {
				v.rejection = why
			} else {
				v.result.Exists = true
				v.result.DisplayName = name
			}
			slots[i] = v
			return nil
		})
	}
	_ = g.Wait()
	return slots
}
