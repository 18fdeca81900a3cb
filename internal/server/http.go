// Package server exposes the pipeline over HTTP (echo) and gRPC.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joseph-ayodele/legal-translator/internal/async"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
)

type Pipeline interface {
	Start(ctx context.Context, jobID uuid.UUID) (entity.JobSummary, error)
	GetStatus(ctx context.Context, jobID uuid.UUID) (entity.JobSummary, error)
}

// Deps wires the HTTP API. Queue, Metrics and DBHealth may be nil.
type Deps struct {
	Jobs     repository.JobRepository
	Files    repository.FileRepository
	Pipeline Pipeline
	Queue    async.Queue
	Blobs    storage.BlobStore
	Signer   *storage.Signer
	Metrics  http.Handler
	DBHealth func(ctx context.Context) error
	Storage  common.StorageConfig
	// TranslatorReady reports whether a provider key is configured.
	TranslatorReady bool
	// JobTimeout bounds a synchronous start; zero means unbounded.
	JobTimeout time.Duration
}

type HTTPServer struct {
	echo   *echo.Echo
	deps   Deps
	now    func() time.Time
	logger *slog.Logger
}

func NewHTTPServer(deps Deps, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPServer{echo: echo.New(), deps: deps, now: time.Now, logger: logger}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, rid string) {
			c.SetRequest(c.Request().WithContext(common.WithRequestID(c.Request().Context(), rid)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []any{"method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			s.logger.Log(c.Request().Context(), level, "http.request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	e := s.echo
	e.GET("/health", s.health)
	if s.deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.deps.Metrics))
	}

	api := e.Group("/api")
	api.POST("/upload/presigned-url", s.presignUpload)
	api.POST("/translate/start/:job_id", s.startJob)
	api.GET("/translate/status/:job_id", s.jobStatus)
	api.GET("/download/job/:job_id", s.downloadJob)

	e.PUT("/blobs/:bucket/*", s.putBlob)
	e.GET("/blobs/:bucket/*", s.getBlob)
}

// Handler is the echo instance as an http.Handler.
func (s *HTTPServer) Handler() http.Handler { return s.echo }

func (s *HTTPServer) Start(addr string) error {
	s.logger.Info("http serving", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) handleError(err error, c echo.Context) {
	code := statusFor(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("http.error", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]any{"error": msg})
}

func parseJobID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("job_id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewAppError("VALIDATION_ERROR", fmt.Sprintf("job_id %q must be a UUID", raw), common.ErrInvalidInput)
	}
	return id, nil
}
