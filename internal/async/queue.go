package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/internal/entity"
)

// Job asks a worker to run one translation job to completion.
type Job struct {
	JobID       uuid.UUID
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Runner is the pipeline entry point a worker calls.
type Runner interface {
	Start(ctx context.Context, jobID uuid.UUID) (entity.JobSummary, error)
}

var ErrQueueClosed = errors.New("queue is shutting down")
