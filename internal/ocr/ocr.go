// Package ocr drives the external text tools (poppler's pdftotext/pdftoppm and
// tesseract) and the raster clean-up applied before recognition.
package ocr

import (
	"log/slog"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // default "por+eng"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit

	TessdataDir string

	PSM int // page segmentation mode, default 6 (uniform block of text)
	OEM int // 1 = LSTM; leave 0 to use default
}

// Engine runs the OCR toolchain. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return NewEngineWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewEngineWithRunner is NewEngine with a custom command runner (tests stub it).
func NewEngineWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "por+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }
