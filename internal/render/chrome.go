package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer turns a complete HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer prints HTML through a headless Chrome.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewChromeRenderer(execPath string, timeout time.Duration, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromeRenderer{execPath: execPath, timeout: timeout, logger: logger}
}

// A4 in inches
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 0.8
)

func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	start := time.Now()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var out []byte
	err := chromedp.Run(bctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div style="font-size:9px;width:100%;text-align:center;color:#666">Translated Legal Document</div>`).
				WithFooterTemplate(`<div style="font-size:9px;width:100%;text-align:center;color:#666">Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			out = buf
			return nil
		}),
	)
	if err != nil {
		r.logger.Error("render.chrome.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	r.logger.Debug("render.chrome.ok", "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
