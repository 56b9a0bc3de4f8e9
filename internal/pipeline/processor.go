// Package pipeline wires discovery, extraction and reconciliation into one run.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/faculty-tracker/internal/async"
	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/extract"
	"github.com/joseph-ayodele/faculty-tracker/internal/fetch"
	"github.com/joseph-ayodele/faculty-tracker/internal/ocr"
	"github.com/joseph-ayodele/faculty-tracker/internal/probe"
	"github.com/joseph-ayodele/faculty-tracker/internal/profile"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
	"github.com/joseph-ayodele/faculty-tracker/internal/reconcile"
)

// Fetcher is what the probe and profile stages share.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// Deps are the collaborators a Processor drives. Tests replace them with stubs.
type Deps struct {
	Fetcher   Fetcher
	Extractor async.Extractor
	Images    profile.ImageReader
}

// NewDeps builds the production collaborators from cfg.
func NewDeps(cfg *common.Config, logger *slog.Logger) Deps {
	client := fetch.NewClient(fetch.Config{
		UserAgent:          cfg.Fetch.UserAgent,
		Timeout:            cfg.Fetch.Timeout.Duration,
		Delay:              cfg.Fetch.Delay.Duration,
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
		MaxBodyBytes:       cfg.Fetch.MaxBodyBytes,
	}, logger)
	engine := NewOCREngine(cfg, logger)
	ensemble := extract.NewEnsemble(extract.DefaultStrategies(engine, logger), extract.WithLogger(logger))
	return Deps{Fetcher: client, Extractor: ensemble, Images: engine}
}

// NewOCREngine maps the OCR section of cfg onto an engine.
func NewOCREngine(cfg *common.Config, logger *slog.Logger) *ocr.Engine {
	return ocr.NewEngine(ocr.Config{
		Pdftotext:   cfg.OCR.Pdftotext,
		Pdftoppm:    cfg.OCR.Pdftoppm,
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		DPI:         cfg.OCR.DPI,
		MaxPages:    cfg.OCR.MaxPages,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
	}, logger)
}

// Input is what one run works on.
type Input struct {
	Intervals []probe.Interval
	Documents []entity.Document
}

// Result is a finished run. A degraded run still has a Summary.
type Result struct {
	Entities []entity.CanonicalEntity
	Reports  []entity.ExtractionReport
	Summary  Summary
}

// Processor coordinates probe, profile, document and reconcile stages.
type Processor struct {
	cfg        *common.Config
	deps       Deps
	rec        *recognize.Recognizer
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

func NewProcessor(cfg *common.Config, deps Deps, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = common.DefaultConfig()
	}
	return &Processor{
		cfg:  cfg,
		deps: deps,
		rec: recognize.New(recognize.Config{
			NameMinLength:        cfg.Recognize.NameMinLength,
			NameMaxLength:        cfg.Recognize.NameMaxLength,
			NameColumnSample:     cfg.Recognize.NameColumnSample,
			NameColumnMinHits:    cfg.Recognize.NameColumnMinHits,
			PreferredEmailDomain: cfg.Recognize.PreferredEmailDomain,
		}),
		reconciler: reconcile.New(reconcile.Config{
			MergeThreshold: cfg.Reconcile.MergeThreshold,
			MinNameLength:  cfg.Reconcile.MinNameLength,
		}, logger),
		logger: logger,
	}
}

// validate is the only place a run can fail; it runs before any pool starts.
func (p *Processor) validate(in Input) error {
	c := *p.cfg
	c.Input.Documents = make([]string, 0, len(in.Documents))
	for _, d := range in.Documents {
		c.Input.Documents = append(c.Input.Documents, d.Path)
	}
	c.Probe.Ranges = make([]string, 0, len(in.Intervals))
	for _, iv := range in.Intervals {
		c.Probe.Ranges = append(c.Probe.Ranges, iv.String())
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if len(in.Intervals) > 0 {
		if p.deps.Fetcher == nil {
			return common.ConfigError("probe intervals given but no fetcher configured")
		}
		if err := probe.ValidateIntervals(in.Intervals); err != nil {
			return err
		}
	}
	if len(in.Documents) > 0 && p.deps.Extractor == nil {
		return common.ConfigError("documents given but no extractor configured")
	}
	return nil
}

// Run executes one full pass. Only configuration errors are returned; every
// other failure shrinks the result and shows up in the summary.
func (p *Processor) Run(ctx context.Context, in Input) (Result, error) {
	if err := p.validate(in); err != nil {
		p.logger.Error("pipeline.config.invalid", "error", err)
		return Result{}, err
	}

	start := time.Now()
	sum := newSummary(uuid.New(), start)
	ctx = common.WithLogger(common.WithRunID(ctx, sum.RunID.String()), p.logger)
	log := common.LoggerFromContext(ctx)
	log.Info("pipeline.run.start", "intervals", len(in.Intervals), "documents", len(in.Documents))

	// documents extract while the network stages run
	docs := p.startDocuments(ctx, in.Documents, log)

	var candidates []entity.CandidateRecord
	if len(in.Intervals) > 0 {
		candidates = append(candidates, p.runProbe(ctx, in.Intervals, &sum, log)...)
	}

	reports, docRecords := docs.wait(&sum)
	candidates = append(candidates, docRecords...)

	t := time.Now()
	rec := p.reconciler.Reconcile(candidates)
	sum.Durations.Reconcile = time.Since(t)

	sum.finish(candidates, rec)
	log.Info("pipeline.run.done",
		"candidates", len(candidates), "dropped", rec.Dropped, "entities", len(rec.Entities),
		"elapsed_ms", sum.Durations.Total.Milliseconds())

	return Result{Entities: rec.Entities, Reports: reports, Summary: sum}, nil
}
