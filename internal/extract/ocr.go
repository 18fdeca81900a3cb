package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/legal-translator/internal/ocr"
)

// Rasterizer renders PDF pages to images inside outDir, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Recognizer is the OCR engine: image + language hint -> text and token confidences.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath, lang string) (ocr.Recognition, error)
}

// OCRExtractor recognizes text from rendered page images.
type OCRExtractor struct {
	raster Rasterizer
	recog  Recognizer
	lang   string
	logger *slog.Logger
}

func NewOCRExtractor(raster Rasterizer, recog Recognizer, lang string, logger *slog.Logger) *OCRExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRExtractor{raster: raster, recog: recog, lang: lang, logger: logger}
}

func (o *OCRExtractor) Name() Method { return MethodOCR }

// Extract renders every page and recognizes it. A page that fails recognition is kept
// as an empty page with a warning; the call fails only when no page was recognized.
func (o *OCRExtractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	res := ExtractionResult{Method: MethodOCR}

	tmpDir, err := os.MkdirTemp("", "lt-ocr-*")
	if err != nil {
		return res, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			o.logger.Warn("extract.ocr.cleanup_error", "dir", dir, "error", err)
		}
	}(tmpDir)

	images, err := o.raster.Rasterize(ctx, path, tmpDir)
	if err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("rasterize: %w", err)
	}

	var lastErr error
	recognized := 0
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := i + 1
		rec, err := o.recog.Recognize(ctx, img, o.lang)
		if err != nil {
			lastErr = err
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", n, err))
			res.Pages = append(res.Pages, PageText{Number: n, OCR: true})
			continue
		}
		recognized++
		conf := rec.Confidence()
		pt := newPage(n, rec.Text)
		pt.OCR = true
		pt.Confidence = &conf
		res.Pages = append(res.Pages, pt)
	}
	res.TotalPages = len(images)
	res.Duration = time.Since(start)
	if recognized == 0 {
		return res, fmt.Errorf("ocr recognized no pages: %w", lastErr)
	}
	res.Success = true

	o.logger.Debug("extract.ocr.ok", "path", path, "pages", res.TotalPages, "chars", res.TotalChars(), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}
