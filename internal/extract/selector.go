package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// DefaultMinTextChars is the aggregate text length below which a document is
// treated as likely scanned.
const DefaultMinTextChars = 100

// Selector runs direct extraction and falls back to OCR when the text layer is thin.
type Selector struct {
	direct   Strategy
	fallback Strategy
	minChars int
	validate func(path string) error
	logger   *slog.Logger
}

type SelectorOption func(*Selector)

func WithMinTextChars(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.minChars = n
		}
	}
}

// WithValidator replaces the pre-flight PDF check. nil disables it.
func WithValidator(fn func(path string) error) SelectorOption {
	return func(s *Selector) { s.validate = fn }
}

// NewSelector builds a selector over a direct strategy and an optional fallback.
func NewSelector(direct, fallback Strategy, logger *slog.Logger, opts ...SelectorOption) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Selector{
		direct:   direct,
		fallback: fallback,
		minChars: DefaultMinTextChars,
		validate: ValidatePDF,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Extract returns the best result across strategies. It fails with an extraction
// error when the input is not a PDF or no strategy produced any text.
func (s *Selector) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	if s.validate != nil {
		if err := s.validate(path); err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				return ExtractionResult{Error: err.Error()}, err
			}
			return ExtractionResult{Error: err.Error()}, common.NewExtractionError(CodeInvalidPDF, "source is not a valid PDF", err)
		}
	}

	var lastErr error
	direct, derr := s.run(ctx, s.direct, path)
	if derr != nil {
		lastErr = derr
		s.logger.Warn("extract.direct.failed", "path", path, "error", derr)
	}
	directChars := direct.TotalChars()

	if derr == nil && directChars >= s.minChars {
		direct.Method = MethodDirect
		direct.Success = true
		direct.Duration = time.Since(start)
		s.logger.Info("extract.selected", "method", direct.Method, "pages", len(direct.Pages), "chars", directChars)
		return direct, nil
	}
	if err := ctx.Err(); err != nil {
		return ExtractionResult{Error: err.Error()}, err
	}

	var fb ExtractionResult
	var ferr error
	if s.fallback != nil {
		s.logger.Info("extract.fallback", "path", path, "direct_chars", directChars, "threshold", s.minChars)
		fb, ferr = s.run(ctx, s.fallback, path)
		if ferr != nil {
			lastErr = ferr
			s.logger.Warn("extract.fallback.failed", "method", s.fallback.Name(), "error", ferr)
		}
	}
	fbChars := fb.TotalChars()

	var out ExtractionResult
	switch {
	case directChars == 0 && fbChars == 0:
		msg := "no extraction strategy produced text"
		if lastErr == nil {
			lastErr = errors.New("document contains no recognizable text")
		}
		return ExtractionResult{
			Method:     MethodDirect,
			TotalPages: max(direct.TotalPages, fb.TotalPages),
			Error:      lastErr.Error(),
			Duration:   time.Since(start),
		}, common.NewExtractionError(CodeNoText, msg, lastErr)
	case fbChars > directChars:
		out = fb
		out.Method = MethodOCR
	default:
		// ties go to the text layer
		out = direct
		out.Method = MethodDirectSparse
		if ferr != nil {
			out.Error = ferr.Error()
		}
	}
	out.Success = true
	out.Duration = time.Since(start)
	s.logger.Info("extract.selected", "method", out.Method, "pages", len(out.Pages), "chars", out.TotalChars(), "direct_chars", directChars, "fallback_chars", fbChars)
	return out, nil
}

func (s *Selector) run(ctx context.Context, st Strategy, path string) (ExtractionResult, error) {
	if st == nil {
		return ExtractionResult{}, errors.New("strategy not configured")
	}
	res, err := st.Extract(ctx, path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("%s: %w", st.Name(), err)
	}
	return res, nil
}
