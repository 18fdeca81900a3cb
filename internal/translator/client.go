// Package translator talks to the remote translation provider: one request per
// chunk, strictly in order, with rate limiting and bounded retries.
package translator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/legal-translator/internal/chunk"
	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// TranslatedChunk mirrors a chunk.TextChunk; Index is the same ordinal.
type TranslatedChunk struct {
	Index      int           `json:"index"`
	Source     string        `json:"source"`
	Translated string        `json:"translated"`
	SourceLang string        `json:"source_lang"`
	TargetLang string        `json:"target_lang"`
	Duration   time.Duration `json:"duration"`
	Attempts   int           `json:"attempts"`
	Cached     bool          `json:"cached"`
	Confidence *float64      `json:"confidence,omitempty"`
	Structural bool          `json:"structural,omitempty"`
}

// Recorder receives request outcomes (metrics).
type Recorder interface {
	ObserveRequest(outcome string, elapsed time.Duration)
	ObserveRetry()
	ObserveCache(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, time.Duration) {}
func (nopRecorder) ObserveRetry()                        {}
func (nopRecorder) ObserveCache(bool)                    {}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   Cache
	sleep   Sleeper
	metrics Recorder
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithSleeper replaces the backoff sleep (tests).
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.metrics = r
		}
	}
}

func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	limit := rate.Inf
	if cfg.RateLimitDelay > 0 {
		limit = rate.Every(cfg.RateLimitDelay)
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		sleep:   sleepCtx,
		metrics: nopRecorder{},
		now:     time.Now,
		logger:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Translate sends every chunk in ordinal order. The first chunk that fails stops
// the run; no partial result is returned alongside an error.
func (c *Client) Translate(ctx context.Context, chunks []chunk.TextChunk, src, tgt string, sink ProgressSink) ([]TranslatedChunk, error) {
	if sink == nil {
		sink = NopSink
	}
	total := len(chunks)
	out := make([]TranslatedChunk, 0, total)
	for i, ch := range chunks {
		tc, err := c.translateChunk(ctx, ch, src, tgt)
		if err != nil {
			var te *common.TranslationError
			if errors.As(err, &te) {
				te.ChunkIndex = ch.Index
			}
			c.logger.Error("translator.chunk.failed", "chunk", ch.Index, "total", total, "error", err)
			return nil, err
		}
		out = append(out, tc)
		sink.Report(i+1, total)
	}
	return out, nil
}

// TranslateText translates a single piece of text. Blank text is returned as is.
func (c *Client) TranslateText(ctx context.Context, text, src, tgt string) (string, error) {
	tc, err := c.translateChunk(ctx, chunk.TextChunk{Text: text}, src, tgt)
	if err != nil {
		return "", err
	}
	return tc.Translated, nil
}

func (c *Client) translateChunk(ctx context.Context, ch chunk.TextChunk, src, tgt string) (TranslatedChunk, error) {
	start := time.Now()
	tc := TranslatedChunk{Index: ch.Index, Source: ch.Text, SourceLang: src, TargetLang: tgt, Structural: ch.Structural}
	if strings.TrimSpace(ch.Text) == "" {
		tc.Translated = ch.Text
		return tc, nil
	}

	key := CacheKey(src, tgt, ch.Text)
	if c.cache != nil {
		v, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("translator.cache.get_error", "error", err)
		case ok:
			c.metrics.ObserveCache(true)
			tc.Translated = v
			tc.Cached = true
			tc.Duration = time.Since(start)
			return tc, nil
		default:
			c.metrics.ObserveCache(false)
		}
	}

	text, attempts, err := c.do(ctx, ch.Text, src, tgt)
	tc.Attempts = attempts
	tc.Duration = time.Since(start)
	if err != nil {
		return tc, err
	}
	tc.Translated = text

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text); err != nil {
			c.logger.Warn("translator.cache.set_error", "error", err)
		}
	}
	return tc, nil
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Formality      string `json:"formality,omitempty"`
	Model          string `json:"model,omitempty"`
}

// do runs the retry loop for one request. It returns the number of attempts made.
func (c *Client) do(ctx context.Context, text, src, tgt string) (string, int, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(c.cfg.Endpoint, "/")
	body := translateRequest{
		Text:           text,
		SourceLanguage: src,
		TargetLanguage: tgt,
		Formality:      c.cfg.Formality,
		Model:          c.cfg.Model,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", attempt - 1, &common.TranslationError{Message: "rate limiter wait", Attempts: attempt - 1, Cause: err}
		}

		start := time.Now()
		res, err := sendJSON(ctx, c.http, url, body, headers, c.logger)
		if err == nil {
			var translated string
			translated, err = decodeTranslation(res.Body)
			if err == nil {
				c.metrics.ObserveRequest("ok", time.Since(start))
				return translated, attempt, nil
			}
		}
		lastErr, lastStatus = err, res.Status

		if !retryable(res.Status, err) || ctx.Err() != nil {
			c.metrics.ObserveRequest("rejected", time.Since(start))
			c.logger.Error("translator.request.rejected", "status", res.Status, "attempt", attempt, "error", err)
			return "", attempt, &common.TranslationError{
				Message:    "provider rejected request",
				StatusCode: res.Status,
				Attempts:   attempt,
				Retryable:  false,
				Cause:      err,
			}
		}
		c.metrics.ObserveRequest("retryable", time.Since(start))
		if attempt == c.cfg.MaxAttempts {
			break
		}

		wait := backoff(c.cfg.BaseDelay, attempt)
		if ra, ok := retryAfter(res.Header, c.now()); ok {
			wait = min(ra, c.cfg.MaxRetryAfter)
		}
		c.metrics.ObserveRetry()
		c.logger.Warn("translator.request.retry", "status", res.Status, "attempt", attempt, "max_attempts", c.cfg.MaxAttempts, "wait_ms", wait.Milliseconds(), "error", err)
		if err := c.sleep(ctx, wait); err != nil {
			return "", attempt, &common.TranslationError{Message: "interrupted during backoff", StatusCode: lastStatus, Attempts: attempt, Cause: err}
		}
	}

	return "", c.cfg.MaxAttempts, &common.TranslationError{
		Message:    "retries exhausted",
		StatusCode: lastStatus,
		Attempts:   c.cfg.MaxAttempts,
		Retryable:  true,
		Cause:      lastErr,
	}
}
