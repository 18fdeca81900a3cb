package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/chunk"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
	"github.com/joseph-ayodele/legal-translator/internal/export"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
	"github.com/joseph-ayodele/legal-translator/internal/render"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
	"github.com/joseph-ayodele/legal-translator/internal/translator"
)

const (
	defaultOutputsBucket   = "outputs"
	defaultStoreRetries    = 3
	defaultStoreRetryDelay = 200 * time.Millisecond
)

// Orchestrator runs one job at a time per call; callers fan out across jobs.
type Orchestrator struct {
	deps   Deps
	now    func() time.Time
	logger *slog.Logger
}

func NewOrchestrator(deps Deps, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case deps.Jobs == nil:
		return nil, errors.New("pipeline: job store is required")
	case deps.Files == nil:
		return nil, errors.New("pipeline: file store is required")
	case deps.Blobs == nil:
		return nil, errors.New("pipeline: blob store is required")
	case deps.Extractor == nil, deps.Chunker == nil, deps.Translate == nil, deps.Builder == nil:
		return nil, errors.New("pipeline: extractor, chunker, translator and builder are required")
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Config.OutputsBucket == "" {
		deps.Config.OutputsBucket = defaultOutputsBucket
	}
	if deps.Config.StoreRetries <= 0 {
		deps.Config.StoreRetries = defaultStoreRetries
	}
	if deps.Config.StoreRetryDelay <= 0 {
		deps.Config.StoreRetryDelay = defaultStoreRetryDelay
	}
	return &Orchestrator{deps: deps, now: time.Now, logger: logger}, nil
}

// GetStatus reports the job's current status, progress and outcome.
func (o *Orchestrator) GetStatus(ctx context.Context, jobID uuid.UUID) (entity.JobSummary, error) {
	jf, err := o.deps.Jobs.Get(ctx, jobID)
	if err != nil {
		return entity.JobSummary{}, err
	}
	return jf.Summary(), nil
}

// Start runs the job to a terminal state and returns its summary. Pipeline
// failures are recorded on the job and reported through the summary; the error
// is non-nil only when the job is missing, cannot be read, or is not runnable.
func (o *Orchestrator) Start(ctx context.Context, jobID uuid.UUID) (entity.JobSummary, error) {
	jf, err := o.deps.Jobs.Get(ctx, jobID)
	if err != nil {
		return entity.JobSummary{}, err
	}
	if !jf.Status.Runnable() {
		return jf.Summary(), common.NewInvalidStateError(fmt.Sprintf("job %s is %s; only pending or processing jobs can start", jobID, jf.Status))
	}

	start := o.now()
	logger := common.LoggerFrom(ctx, o.logger)
	tr := newTracker(o.deps.Jobs, jobID, retryPolicy{o.deps.Config.StoreRetries, o.deps.Config.StoreRetryDelay}, o.logger)
	output, runErr := o.run(ctx, jf, tr)
	if runErr != nil {
		o.deps.Observer.ObserveJob("error", o.now().Sub(start))
		logger.Error("pipeline.failed", "job_id", jobID, "status", tr.status, "progress", tr.last, "error", runErr)
		if output.ID != uuid.Nil {
			// stored before the final write failed; nothing references it now
			logger.Warn("pipeline.output.orphaned", "job_id", jobID, "file_id", output.ID, "bucket", output.Bucket, "path", output.StoragePath)
		}
		return o.fail(ctx, jobID, tr, runErr), nil
	}

	o.deps.Observer.ObserveJob("ok", o.now().Sub(start))
	logger.Info("pipeline.done", "job_id", jobID, "output_file_id", output.ID, "elapsed", o.now().Sub(start))
	return entity.JobSummary{
		JobID:        jobID,
		Status:       constants.JobStatusDone,
		Progress:     constants.ProgressDone,
		OutputFileID: &output.ID,
	}, nil
}

// fail is the one place a run error becomes job state. Progress is left as is.
func (o *Orchestrator) fail(ctx context.Context, jobID uuid.UUID, tr *tracker, runErr error) entity.JobSummary {
	msg := strings.TrimSpace(runErr.Error())
	if msg == "" {
		msg = "pipeline failed"
	}
	status := constants.JobStatusError
	// the run context may already be done; the error still has to land
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := tr.update(wctx, entity.JobUpdate{Status: &status, ErrorMessage: &msg}); err != nil {
		o.logger.Error("pipeline.fail.update_failed", "job_id", jobID, "error", err)
	}
	return entity.JobSummary{JobID: jobID, Status: status, Progress: tr.last, ErrorMessage: &msg}
}

// stage times fn and logs its outcome under name.
func (o *Orchestrator) stage(jobID uuid.UUID, name string, fn func() error) error {
	start := o.now()
	err := fn()
	elapsed := o.now().Sub(start)
	if err != nil {
		o.deps.Observer.ObserveStage(name, "error", elapsed)
		o.logger.Warn("pipeline.stage.failed", "job_id", jobID, "stage", name, "elapsed", elapsed, "error", err)
		return err
	}
	o.deps.Observer.ObserveStage(name, "ok", elapsed)
	o.logger.Info("pipeline.stage.ok", "job_id", jobID, "stage", name, "elapsed", elapsed)
	return nil
}

// run returns the stored output file. A non-zero file comes back with an error
// only when the final job write failed after the output was stored.
func (o *Orchestrator) run(ctx context.Context, jf entity.JobWithFile, tr *tracker) (entity.File, error) {
	jobID := jf.ID
	if err := tr.enter(ctx, constants.JobStatusProcessing, constants.ProgressProcessing); err != nil {
		return entity.File{}, err
	}

	dir, err := os.MkdirTemp(o.deps.Config.TempDir, "lt-job-*")
	if err != nil {
		return entity.File{}, common.NewStorageError("create temp dir", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			o.logger.Warn("pipeline.cleanup.failed", "job_id", jobID, "dir", dir, "error", err)
		}
	}()

	var res extract.ExtractionResult
	err = o.stage(jobID, "extract", func() error {
		var err error
		res, err = o.extract(ctx, jf, dir, tr)
		return err
	})
	if err != nil {
		return entity.File{}, err
	}

	var translated []translator.TranslatedChunk
	err = o.stage(jobID, "translate", func() error {
		var err error
		translated, err = o.translate(ctx, jf, res, tr)
		return err
	})
	if err != nil {
		return entity.File{}, err
	}

	var output entity.File
	err = o.stage(jobID, "build", func() error {
		var err error
		output, err = o.build(ctx, jf, translated, dir, tr)
		return err
	})
	if err != nil {
		return entity.File{}, err
	}

	o.exportReview(ctx, jf, res, translated, output.ID)

	if err := tr.finish(ctx, output.ID); err != nil {
		return output, err
	}
	return output, nil
}

func (o *Orchestrator) extract(ctx context.Context, jf entity.JobWithFile, dir string, tr *tracker) (extract.ExtractionResult, error) {
	if err := tr.enter(ctx, constants.JobStatusExtracting, constants.ProgressDownloaded); err != nil {
		return extract.ExtractionResult{}, err
	}
	data, err := o.deps.Blobs.Download(ctx, jf.File.Bucket, jf.File.StoragePath)
	if err != nil {
		return extract.ExtractionResult{}, err
	}
	input, err := writeTemp(dir, "input_*.pdf", data)
	if err != nil {
		return extract.ExtractionResult{}, err
	}
	res, err := o.deps.Extractor.Extract(ctx, input)
	if err != nil {
		return extract.ExtractionResult{}, err
	}
	if res.IsEmpty() {
		return extract.ExtractionResult{}, common.NewExtractionError(extract.CodeNoText, "document has no extractable text", nil)
	}
	o.logger.Info("pipeline.extracted", "job_id", jf.ID, "method", res.Method, "pages", res.TotalPages, "chars", res.TotalChars())
	return res, tr.advance(ctx, constants.ProgressExtracted)
}

func (o *Orchestrator) translate(ctx context.Context, jf entity.JobWithFile, res extract.ExtractionResult, tr *tracker) ([]translator.TranslatedChunk, error) {
	if err := tr.enter(ctx, constants.JobStatusTranslating, constants.ProgressTranslateStart); err != nil {
		return nil, err
	}
	chunks, err := o.deps.Chunker.Chunk(res)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, common.NewChunkingError("no chunks produced from extracted text", nil)
	}

	sink := translator.ProgressFunc(func(current, total int) {
		// progress writes are best effort; the run goes on if one is lost
		if err := tr.advance(ctx, translateProgress(current, total)); err != nil {
			o.logger.Warn("pipeline.progress.write_failed", "job_id", jf.ID, "error", err)
		}
	})
	out, err := o.deps.Translate.Translate(ctx, chunks, jf.SourceLang, jf.TargetLang, sink)
	if err != nil {
		return nil, err
	}
	return out, tr.advance(ctx, constants.ProgressTranslateEnd)
}

// assemble joins translations back into plain text. Structural chunks are
// markup and are joined exactly before their text is pulled out.
func assemble(chunks []translator.TranslatedChunk, structural bool) (string, error) {
	if !structural {
		return translator.Join(chunks, "\n"), nil
	}
	markup := translator.Join(chunks, "")
	byPage, err := chunk.PageTexts(markup)
	if err != nil {
		return "", err
	}
	if len(byPage) == 0 {
		return chunk.HTMLText(markup)
	}
	parts := make([]string, 0, len(byPage))
	for _, n := range slices.Sorted(maps.Keys(byPage)) {
		if t := byPage[n]; t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (o *Orchestrator) build(ctx context.Context, jf entity.JobWithFile, translated []translator.TranslatedChunk, dir string, tr *tracker) (entity.File, error) {
	if err := tr.enter(ctx, constants.JobStatusBuilding, constants.ProgressBuildStart); err != nil {
		return entity.File{}, err
	}
	structural := len(translated) > 0 && translated[0].Structural
	text, err := assemble(translated, structural)
	if err != nil {
		return entity.File{}, common.NewRenderError("assemble translated markup", err)
	}
	doc := render.Document{
		Title:       documentTitle(jf.File.OriginalName),
		SourceLang:  jf.SourceLang,
		TargetLang:  jf.TargetLang,
		Text:        text,
		GeneratedAt: o.now(),
	}
	pdf, err := o.deps.Builder.Build(ctx, doc)
	if err != nil {
		return entity.File{}, err
	}
	outPath, err := writeTemp(dir, "output_*.pdf", pdf)
	if err != nil {
		return entity.File{}, err
	}
	if err := tr.advance(ctx, constants.ProgressBuilt); err != nil {
		return entity.File{}, err
	}

	// upload what landed on disk
	stored, err := os.ReadFile(outPath)
	if err != nil {
		return entity.File{}, common.NewStorageError("read output file", err)
	}
	path := storage.GenerateStoragePath(constants.OutputsPrefix, ".pdf", o.now())
	if err := o.deps.Blobs.Upload(ctx, o.deps.Config.OutputsBucket, path, stored, constants.ContentTypePDF); err != nil {
		return entity.File{}, err
	}
	size := int64(len(stored))
	return o.deps.Files.Create(ctx, repository.NewFile{
		OriginalName: constants.TranslatedName(jf.File.OriginalName),
		Bucket:       o.deps.Config.OutputsBucket,
		StoragePath:  path,
		ContentType:  constants.ContentTypePDF,
		SizeBytes:    &size,
	})
}

// exportReview stores the bilingual workbook next to the output. Failures are logged only.
func (o *Orchestrator) exportReview(ctx context.Context, jf entity.JobWithFile, res extract.ExtractionResult, translated []translator.TranslatedChunk, outputID uuid.UUID) {
	if o.deps.Review == nil {
		return
	}
	xlsx, err := o.deps.Review.ReviewXLSX(ctx, export.ReviewMeta{
		JobID:        jf.ID,
		FileName:     jf.File.OriginalName,
		SourceLang:   jf.SourceLang,
		TargetLang:   jf.TargetLang,
		Method:       string(res.Method),
		Pages:        res.TotalPages,
		GeneratedAt:  o.now(),
		OutputFileID: &outputID,
	}, translated)
	if err != nil {
		o.logger.Warn("pipeline.review.failed", "job_id", jf.ID, "error", err)
		return
	}
	path := storage.GenerateStoragePath(constants.ReviewPrefix, ".xlsx", o.now())
	if err := o.deps.Blobs.Upload(ctx, o.deps.Config.OutputsBucket, path, xlsx, constants.ContentTypeXLSX); err != nil {
		o.logger.Warn("pipeline.review.upload_failed", "job_id", jf.ID, "error", err)
		return
	}
	o.logger.Info("pipeline.review.ok", "job_id", jf.ID, "path", path, "bytes", len(xlsx))
}

func writeTemp(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", common.NewStorageError("create temp file", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", common.NewStorageError("write temp file", err)
	}
	if err := f.Close(); err != nil {
		return "", common.NewStorageError("close temp file", err)
	}
	return f.Name(), nil
}

func documentTitle(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		return ""
	}
	return base
}
