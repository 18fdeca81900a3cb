package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/legal-translator/internal/app"
	"github.com/joseph-ayodele/legal-translator/internal/async"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/metrics"
	"github.com/joseph-ayodele/legal-translator/internal/pipeline"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/server"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
)

func main() {
	cfg := common.LoadConfig()
	logger := app.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	signer, err := storage.NewSigner(cfg.Storage.SigningSecret)
	if err != nil {
		logger.Error("invalid signing secret", "error", err)
		os.Exit(2)
	}
	blobs, err := storage.NewFSStore(cfg.Storage.Root, cfg.Server.PublicBaseURL, signer, logger)
	if err != nil {
		logger.Error("failed to open blob store", "root", cfg.Storage.Root, "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	tcache, closeCache, err := app.NewCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to connect translation cache", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	deps := app.PipelineDeps(cfg, db, blobs, tcache, m, logger)
	orch, err := pipeline.NewOrchestrator(deps, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	queue := async.NewJobQueue(orch, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithJobTimeout(cfg.Queue.JobTimeout),
	)

	httpServer := server.NewHTTPServer(server.Deps{
		Jobs:     repository.NewJobRepository(db, logger),
		Files:    repository.NewFileRepository(db, logger),
		Pipeline: orch,
		Queue:    queue,
		Blobs:    blobs,
		Signer:   signer,
		Metrics:  m.Handler(),
		DBHealth: func(ctx context.Context) error {
			return db.HealthCheck(ctx, 2*time.Second, logger)
		},
		Storage:         cfg.Storage,
		TranslatorReady: cfg.Translate.APIKey != "",
		JobTimeout:      cfg.Queue.JobTimeout,
	}, logger)

	grpcServer := server.NewGRPCServer(orch, cfg.Queue.JobTimeout, logger)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()
	go func() {
		if err := httpServer.Start(cfg.Server.HTTPAddr); err != nil {
			logger.Error("HTTP serve error", "error", err)
			stop()
		}
	}()
	logger.Info("legal-translator listening", "http", cfg.Server.HTTPAddr, "grpc", cfg.Server.GRPCAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	grpcServer.Stop()
}
