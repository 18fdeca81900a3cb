// Package pipeline drives a translation job through extract, translate and build,
// recording status and progress on the job row as it goes.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/internal/chunk"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
	"github.com/joseph-ayodele/legal-translator/internal/export"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
	"github.com/joseph-ayodele/legal-translator/internal/render"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
	"github.com/joseph-ayodele/legal-translator/internal/translator"
)

type JobStore interface {
	Get(ctx context.Context, id uuid.UUID) (entity.JobWithFile, error)
	Update(ctx context.Context, id uuid.UUID, u entity.JobUpdate) error
}

type FileStore interface {
	Create(ctx context.Context, f repository.NewFile) (entity.File, error)
}

type Extractor interface {
	Extract(ctx context.Context, path string) (extract.ExtractionResult, error)
}

type Chunker interface {
	Chunk(res extract.ExtractionResult) ([]chunk.TextChunk, error)
}

type Translator interface {
	Translate(ctx context.Context, chunks []chunk.TextChunk, src, tgt string, sink translator.ProgressSink) ([]translator.TranslatedChunk, error)
}

type Reconstructor interface {
	Build(ctx context.Context, doc render.Document) ([]byte, error)
}

type ReviewExporter interface {
	ReviewXLSX(ctx context.Context, meta export.ReviewMeta, chunks []translator.TranslatedChunk) ([]byte, error)
}

// Observer receives per-stage timings. outcome is "ok" or "error".
type Observer interface {
	ObserveStage(stage string, outcome string, elapsed time.Duration)
	ObserveJob(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, string, time.Duration) {}
func (nopObserver) ObserveJob(string, time.Duration)           {}

type Config struct {
	OutputsBucket string
	// TempDir is where per-run scratch directories go; empty means os.TempDir.
	TempDir string
	// StoreRetries and StoreRetryDelay govern job row writes that fail with a
	// database error. Zero values pick 3 attempts from 200ms.
	StoreRetries    int
	StoreRetryDelay time.Duration
}

// Deps is everything a run touches. Review and Observer may be nil.
type Deps struct {
	Jobs      JobStore
	Files     FileStore
	Blobs     storage.BlobStore
	Extractor Extractor
	Chunker   Chunker
	Translate Translator
	Builder   Reconstructor
	Review    ReviewExporter
	Observer  Observer
	Config    Config
}
