package ocr

import (
	"log/slog"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language hint, default "guj+eng"
	DPI      int    // rasterization DPI, default 200
	MaxPages int    // 0 = no limit

	TessdataDir string

	PSM int // page segmentation mode, default 6 (uniform block of text)
	OEM int // engine mode, default 3 (legacy + LSTM, whichever is available)
}

// Recognition is the result of recognizing one page image.
type Recognition struct {
	Text             string
	TokenConfidences []float64 // 0..100 per word, -1 when tesseract reports none
}

// Confidence is the mean token confidence in [0,1].
func (r Recognition) Confidence() float64 {
	return MeanConfidence(r.TokenConfidences)
}

// Engine drives poppler's pdftoppm and tesseract as external processes.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Engine)

// WithRunner swaps the command runner (tests).
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "guj+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.OEM <= 0 {
		cfg.OEM = 3
	}
	e := &Engine{cfg: cfg, logger: logger}
	for _, o := range opts {
		o(e)
	}
	if e.runner == nil {
		e.runner = NewExecRunner(logger)
	}
	return e
}

// Lang returns the configured recognition language hint.
func (e *Engine) Lang() string { return e.cfg.Lang }
