// Package app builds the long-lived components both binaries share from the
// loaded configuration.
package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/legal-translator/internal/cache"
	"github.com/joseph-ayodele/legal-translator/internal/chunk"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/export"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
	"github.com/joseph-ayodele/legal-translator/internal/metrics"
	"github.com/joseph-ayodele/legal-translator/internal/ocr"
	"github.com/joseph-ayodele/legal-translator/internal/pipeline"
	"github.com/joseph-ayodele/legal-translator/internal/render"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
	"github.com/joseph-ayodele/legal-translator/internal/translator"
)

// NewLogger returns a text or JSON slog logger at the configured level.
func NewLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug/info/warn/error onto slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func OpenDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	return repository.Open(ctx, repository.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
}

// NewOCREngine wraps poppler and tesseract with the configured binaries.
func NewOCREngine(cfg common.OCRConfig, logger *slog.Logger, opts ...ocr.Option) *ocr.Engine {
	return ocr.NewEngine(ocr.Config{
		Pdftoppm:    cfg.Pdftoppm,
		Tesseract:   cfg.Tesseract,
		TessdataDir: cfg.TessdataDir,
		Lang:        cfg.Lang,
		DPI:         cfg.DPI,
		MaxPages:    cfg.MaxPages,
	}, logger, opts...)
}

// NewExtractor is direct extraction with OCR as the fallback.
func NewExtractor(cfg common.OCRConfig, logger *slog.Logger, opts ...ocr.Option) *extract.Selector {
	engine := NewOCREngine(cfg, logger, opts...)
	return extract.NewSelector(
		extract.NewDirectExtractor(logger),
		extract.NewOCRExtractor(engine, engine, engine.Lang(), logger),
		logger,
		extract.WithMinTextChars(cfg.MinTextChars),
	)
}

// NewClassifier samples the text layer to decide whether a document is scanned.
func NewClassifier(cfg common.OCRConfig, logger *slog.Logger) *extract.Classifier {
	return extract.NewClassifier(extract.NewDirectExtractor(logger), cfg.ScannedDensityRatio)
}

func NewChunker(cfg common.TranslateConfig) *chunk.Chunker {
	return chunk.New(cfg.MaxChars, chunk.Mode(cfg.ChunkMode))
}

// NewCache connects to Redis when an address is configured and falls back to an
// in-process cache otherwise. closeFn releases the Redis connection.
func NewCache(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (c translator.Cache, closeFn func(), err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisAddr == "" {
		logger.Info("translation cache", "backend", "memory")
		return translator.NewMemoryCache(), func() {}, nil
	}
	client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 3*time.Second)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("translation cache", "backend", "redis", "addr", cfg.RedisAddr)
	return cache.NewRedisCache(client, cfg.TTL), func() {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("close redis", "error", cerr)
		}
	}, nil
}

func NewTranslator(cfg common.TranslateConfig, c translator.Cache, rec translator.Recorder, logger *slog.Logger) *translator.Client {
	opts := []translator.Option{translator.WithMetrics(rec)}
	if c != nil {
		opts = append(opts, translator.WithCache(c))
	}
	return translator.NewClient(translator.Config{
		BaseURL:        cfg.APIURL,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.Timeout,
		MaxAttempts:    cfg.Retries,
		BaseDelay:      cfg.RetryDelay,
		RateLimitDelay: cfg.RateLimitDelay,
		Formality:      cfg.Formality,
		Model:          cfg.Model,
	}, logger, opts...)
}

func NewReconstructor(cfg common.RenderConfig, logger *slog.Logger) *render.Reconstructor {
	return render.NewReconstructor(render.NewChromeRenderer(cfg.ChromePath, cfg.Timeout, logger), logger)
}

// PipelineDeps wires the orchestrator against db and blobs. m may be nil.
func PipelineDeps(cfg *common.Config, db *repository.DB, blobs storage.BlobStore, c translator.Cache, m *metrics.Metrics, logger *slog.Logger) pipeline.Deps {
	var rec translator.Recorder
	var obs pipeline.Observer
	if m != nil {
		rec, obs = m, m
	}
	deps := pipeline.Deps{
		Jobs:      repository.NewJobRepository(db, logger),
		Files:     repository.NewFileRepository(db, logger),
		Blobs:     blobs,
		Extractor: NewExtractor(cfg.OCR, logger),
		Chunker:   NewChunker(cfg.Translate),
		Translate: NewTranslator(cfg.Translate, c, rec, logger),
		Builder:   NewReconstructor(cfg.Render, logger),
		Observer:  obs,
		Config: pipeline.Config{
			OutputsBucket:   cfg.Storage.OutputsBucket,
			StoreRetries:    cfg.Database.RetryAttempts,
			StoreRetryDelay: cfg.Database.RetryDelay,
		},
	}
	if cfg.Render.ReviewExport {
		deps.Review = export.NewService(logger)
	}
	return deps
}
