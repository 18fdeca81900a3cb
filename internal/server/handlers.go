package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/async"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
)

type presignRequest struct {
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	SourceLang string `json:"src_lang"`
	TargetLang string `json:"tgt_lang"`
}

type presignResponse struct {
	JobID       uuid.UUID `json:"job_id"`
	FileID      uuid.UUID `json:"file_id"`
	UploadURL   string    `json:"upload_url"`
	StoragePath string    `json:"storage_path"`
	ExpiresIn   int       `json:"expires_in"`
	Bucket      string    `json:"bucket"`
}

type downloadResponse struct {
	DownloadURL string    `json:"download_url"`
	Filename    string    `json:"filename"`
	FileID      uuid.UUID `json:"file_id"`
	ExpiresIn   int       `json:"expires_in"`
	JobID       uuid.UUID `json:"job_id"`
}

// presignUpload registers the file and a pending job, and returns a short-lived upload URL.
func (s *HTTPServer) presignUpload(c echo.Context) error {
	var req presignRequest
	if err := c.Bind(&req); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "request body must be JSON", common.ErrInvalidInput)
	}
	v := common.NewValidator().
		Field("filename", req.Filename, common.Required, common.PDFFilename).
		Field("mime_type", req.MimeType, common.Required, common.PDFMimeType).
		Field("size_bytes", req.SizeBytes, common.SizeBetween(s.deps.Storage.MaxUploadBytes))
	if req.SourceLang != "" {
		v.Field("src_lang", req.SourceLang, common.LanguageCode)
	}
	if req.TargetLang != "" {
		v.Field("tgt_lang", req.TargetLang, common.LanguageCode)
	}
	if err := v.Error(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	bucket := s.deps.Storage.UploadsBucket
	path := storage.GenerateStoragePath(constants.UploadsPrefix, req.Filename, s.now())
	size := req.SizeBytes
	jf, err := s.deps.Jobs.CreateJobWithFile(ctx, repository.NewFile{
		OriginalName: req.Filename,
		Bucket:       bucket,
		StoragePath:  path,
		ContentType:  constants.ContentTypePDF,
		SizeBytes:    &size,
	}, req.SourceLang, req.TargetLang)
	if err != nil {
		return err
	}

	ttl := s.deps.Storage.UploadURLTTL
	url, err := s.deps.Blobs.CreateSignedURL(ctx, bucket, path, ttl, storage.ModeUpload, "")
	if err != nil {
		return err
	}
	s.logger.Info("upload.presigned", "job_id", jf.ID, "file_id", jf.File.ID, "path", path)
	return c.JSON(http.StatusOK, presignResponse{
		JobID:       jf.ID,
		FileID:      jf.File.ID,
		UploadURL:   url,
		StoragePath: path,
		ExpiresIn:   int(ttl.Seconds()),
		Bucket:      bucket,
	})
}

// startJob runs the pipeline inline, or hands the job to the queue with ?async=true.
func (s *HTTPServer) startJob(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if queued, _ := strconv.ParseBool(c.QueryParam("async")); queued && s.deps.Queue != nil {
		return s.enqueue(c, id)
	}

	runCtx, cancel := runContext(ctx, s.deps.JobTimeout)
	defer cancel()
	sum, err := s.deps.Pipeline.Start(runCtx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// runContext keeps a started run alive after its caller goes away. The run is
// bounded by timeout instead; timeout <= 0 leaves it unbounded.
func runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *HTTPServer) enqueue(c echo.Context, id uuid.UUID) error {
	ctx := c.Request().Context()
	sum, err := s.deps.Pipeline.GetStatus(ctx, id)
	if err != nil {
		return err
	}
	if !sum.Status.Runnable() {
		return common.NewInvalidStateError("job " + id.String() + " is " + string(sum.Status))
	}
	err = s.deps.Queue.Enqueue(ctx, async.Job{
		JobID:       id,
		SubmittedAt: s.now(),
		TraceID:     c.Response().Header().Get(echo.HeaderXRequestID),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, sum)
}

func (s *HTTPServer) jobStatus(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return err
	}
	sum, err := s.deps.Pipeline.GetStatus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// downloadJob signs a download URL for a finished job's output.
func (s *HTTPServer) downloadJob(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	jf, err := s.deps.Jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if jf.Status != constants.JobStatusDone {
		return common.NewInvalidStateError("job " + id.String() + " is " + string(jf.Status) + "; output is available once done")
	}
	if jf.OutputFileID == nil {
		return common.NewAppError("NOT_FOUND", "job "+id.String()+" has no output file", common.ErrNotFound)
	}
	out, err := s.deps.Files.Get(ctx, *jf.OutputFileID)
	if err != nil {
		return err
	}

	ttl := s.deps.Storage.DownloadURLTTL
	url, err := s.deps.Blobs.CreateSignedURL(ctx, out.Bucket, out.StoragePath, ttl, storage.ModeDownload, out.OriginalName)
	if err != nil {
		return err
	}
	if redirect, _ := strconv.ParseBool(c.QueryParam("redirect")); redirect {
		return c.Redirect(http.StatusFound, url)
	}
	return c.JSON(http.StatusOK, downloadResponse{
		DownloadURL: url,
		Filename:    out.OriginalName,
		FileID:      out.ID,
		ExpiresIn:   int(ttl.Seconds()),
		JobID:       id,
	})
}

type healthResponse struct {
	Status               string `json:"status"`
	Database             string `json:"database"`
	TranslatorConfigured bool   `json:"translator_configured"`
	Time                 string `json:"time"`
}

func (s *HTTPServer) health(c echo.Context) error {
	resp := healthResponse{
		Status:               "ok",
		Database:             "ok",
		TranslatorConfigured: s.deps.TranslatorReady,
		Time:                 s.now().UTC().Format(time.RFC3339),
	}
	if s.deps.DBHealth == nil {
		resp.Database = "unknown"
	} else {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := s.deps.DBHealth(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
		}
	}
	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
