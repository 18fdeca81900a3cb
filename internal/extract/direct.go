package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/legal-translator/internal/ocr"
)

// DirectExtractor pulls the selectable text layer of digitally authored PDFs.
type DirectExtractor struct {
	logger *slog.Logger
}

func NewDirectExtractor(logger *slog.Logger) *DirectExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectExtractor{logger: logger}
}

func (d *DirectExtractor) Name() Method { return MethodDirect }

func (d *DirectExtractor) Extract(ctx context.Context, path string) (res ExtractionResult, err error) {
	start := time.Now()
	res.Method = MethodDirect
	defer func() {
		// ledongthuc/pdf panics on some malformed streams
		if r := recover(); r != nil {
			err = fmt.Errorf("direct extraction panicked: %v", r)
			res.Success = false
		}
		res.Duration = time.Since(start)
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return res, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			d.logger.Warn("extract.direct.close_error", "path", path, "error", cerr)
		}
	}()

	total := r.NumPage()
	res.TotalPages = total
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page := r.Page(n)
		if page.V.IsNull() {
			res.Pages = append(res.Pages, PageText{Number: n})
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", n, perr))
			text = ""
		}
		pt := newPage(n, ocr.Normalize(text))
		pt.Width, pt.Height = mediaBox(page.V)
		res.Pages = append(res.Pages, pt)
	}
	res.Success = true

	d.logger.Debug("extract.direct.ok", "path", path, "pages", total, "chars", res.TotalChars())
	return res, nil
}

// mediaBox returns page width and height, following inherited boxes up the page tree.
func mediaBox(v pdf.Value) (float64, float64) {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() >= 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w < 0 {
				w = -w
			}
			if h < 0 {
				h = -h
			}
			return w, h
		}
		v = v.Key("Parent")
	}
	return 0, 0
}
