package extract

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/ocr"
)

// Ensemble runs every configured strategy on a document concurrently.
type Ensemble struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*Ensemble)

// WithStrategyTimeout bounds each strategy individually.
func WithStrategyTimeout(d time.Duration) Option {
	return func(e *Ensemble) { e.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Ensemble) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEnsemble(strategies []Strategy, opts ...Option) *Ensemble {
	e := &Ensemble{strategies: strategies, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultStrategies returns the five strategies in reporting order.
func DefaultStrategies(engine *ocr.Engine, logger *slog.Logger) []Strategy {
	maxPages := engine.Config().MaxPages
	return []Strategy{
		NewTextStrategy(maxPages),
		NewLayoutStrategy(maxPages),
		NewPositionalTableStrategy(maxPages),
		NewLayoutTableStrategy(engine),
		NewOCRStrategy(engine, logger),
	}
}

// Strategies lists the configured strategy names in order.
func (e *Ensemble) Strategies() []constants.Strategy {
	out := make([]constants.Strategy, len(e.strategies))
	for i, s := range e.strategies {
		out[i] = s.Name()
	}
	return out
}

// Run always returns exactly one outcome per strategy, in configured order.
// Strategy failures are recorded in the outcomes and never abort the others.
func (e *Ensemble) Run(ctx context.Context, doc entity.Document) entity.ExtractionReport {
	outcomes := make([]entity.ExtractionOutcome, len(e.strategies))
	var meta entity.DocumentMetadata
	log := e.logger
	if id := common.RunIDFromContext(ctx); id != "" {
		log = log.With("run_id", id)
	}

	var g errgroup.Group
	for i, s := range e.strategies {
		i, s := i, s
		g.Go(func() error {
			sctx := ctx
			if e.timeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(ctx, e.timeout)
				defer cancel()
			}
			o := Run(sctx, s, doc)
			outcomes[i] = o
			if o.Succeeded() {
				log.Debug("extract.strategy.ok",
					"path", doc.Path, "strategy", o.Strategy,
					"pages", len(o.Pages), "tables", len(o.Tables),
					"duration_ms", o.Duration.Milliseconds())
			} else {
				log.Info("extract.strategy.failed",
					"path", doc.Path, "strategy", o.Strategy, "error", o.ErrorDetail)
			}
			return nil
		})
	}
	g.Go(func() error {
		meta = ReadMetadata(doc)
		return nil
	})
	_ = g.Wait()

	return entity.ExtractionReport{Metadata: meta, Outcomes: outcomes}
}
