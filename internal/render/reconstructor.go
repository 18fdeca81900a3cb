package render

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// Reconstructor lays translated text out as HTML and prints it to PDF.
type Reconstructor struct {
	renderer Renderer
	validate func([]byte) error
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Reconstructor)

// WithValidator replaces the output check. nil disables it.
func WithValidator(fn func([]byte) error) Option {
	return func(r *Reconstructor) { r.validate = fn }
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconstructor) {
		if now != nil {
			r.now = now
		}
	}
}

func NewReconstructor(renderer Renderer, logger *slog.Logger, opts ...Option) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconstructor{renderer: renderer, validate: ValidatePDF, now: time.Now, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ValidatePDF checks rendered bytes with pdfcpu.
func ValidatePDF(b []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(b), conf)
}

// HTML renders the document markup without printing it.
func (r *Reconstructor) HTML(doc Document) (string, error) {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = "Translated Document"
	}
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = r.now()
	}
	view := documentView{
		Lang:       doc.TargetLang,
		Title:      title,
		SourceName: languageLabel(doc.SourceLang),
		TargetName: languageLabel(doc.TargetLang),
		Generated:  generated.Format(dateLayout),
		Blocks:     Blocks(doc.Body(), doc.TargetLang),
		Disclaimer: Disclaimer,
	}
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, view); err != nil {
		return "", common.NewRenderError("execute template", err)
	}
	return buf.String(), nil
}

// Build returns the PDF for doc.
func (r *Reconstructor) Build(ctx context.Context, doc Document) ([]byte, error) {
	markup, err := r.HTML(doc)
	if err != nil {
		return nil, err
	}
	return r.print(ctx, markup, "document")
}

// ComparisonHTML renders source and translation paragraphs row by row.
func (r *Reconstructor) ComparisonHTML(cmp Comparison) (string, error) {
	title := strings.TrimSpace(cmp.Title)
	if title == "" {
		title = "Translation Comparison"
	}
	generated := cmp.GeneratedAt
	if generated.IsZero() {
		generated = r.now()
	}
	orig := strings.Split(cmp.Original, "\n\n")
	trans := strings.Split(cmp.Translated, "\n\n")
	rows := make([]comparisonRow, 0, max(len(orig), len(trans)))
	for i := 0; i < max(len(orig), len(trans)); i++ {
		var row comparisonRow
		if i < len(orig) {
			row.Original = strings.TrimSpace(orig[i])
		}
		if i < len(trans) {
			row.Translated = strings.TrimSpace(trans[i])
		}
		if row.Original == "" && row.Translated == "" {
			continue
		}
		rows = append(rows, row)
	}
	view := comparisonView{
		Lang:       cmp.TargetLang,
		Title:      title,
		SourceName: languageLabel(cmp.SourceLang),
		TargetName: languageLabel(cmp.TargetLang),
		Generated:  generated.Format(dateLayout),
		Rows:       rows,
		Disclaimer: Disclaimer,
	}
	var buf bytes.Buffer
	if err := comparisonTmpl.Execute(&buf, view); err != nil {
		return "", common.NewRenderError("execute template", err)
	}
	return buf.String(), nil
}

func (r *Reconstructor) BuildComparison(ctx context.Context, cmp Comparison) ([]byte, error) {
	markup, err := r.ComparisonHTML(cmp)
	if err != nil {
		return nil, err
	}
	return r.print(ctx, markup, "comparison")
}

func (r *Reconstructor) print(ctx context.Context, markup, kind string) ([]byte, error) {
	if r.renderer == nil {
		return nil, common.NewRenderError("no renderer configured", nil)
	}
	start := time.Now()
	out, err := r.renderer.Render(ctx, markup)
	if err != nil {
		return nil, common.NewRenderError("render "+kind, err)
	}
	if len(out) == 0 {
		return nil, common.NewRenderError("renderer returned no bytes", nil)
	}
	if r.validate != nil {
		if err := r.validate(out); err != nil {
			return nil, common.NewRenderError("rendered output is not a valid PDF", err)
		}
	}
	r.logger.Info("render.ok", "kind", kind, "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
