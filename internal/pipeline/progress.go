package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
	"github.com/joseph-ayodele/legal-translator/internal/repository"
)

type retryPolicy struct {
	attempts int
	base     time.Duration
}

// tracker is the single writer of status and progress for one run. It never
// writes a progress value lower than its previous write, nor a status earlier
// in the run order than the current one.
type tracker struct {
	jobs   JobStore
	id     uuid.UUID
	retry  retryPolicy
	status constants.JobStatus
	last   int
	wrote  bool
	logger *slog.Logger
}

func newTracker(jobs JobStore, id uuid.UUID, retry retryPolicy, logger *slog.Logger) *tracker {
	return &tracker{jobs: jobs, id: id, retry: retry, logger: logger}
}

// update writes u, retrying transient store failures.
func (t *tracker) update(ctx context.Context, u entity.JobUpdate) error {
	return repository.WithRetry(ctx, t.retry.attempts, t.retry.base, t.logger, func(ctx context.Context) error {
		return t.jobs.Update(ctx, t.id, u)
	})
}

// enter moves the job to status at progress p.
func (t *tracker) enter(ctx context.Context, status constants.JobStatus, p int) error {
	return t.move(ctx, status, p, nil)
}

// finish marks the job done at full progress with its output file.
func (t *tracker) finish(ctx context.Context, outputID uuid.UUID) error {
	return t.move(ctx, constants.JobStatusDone, constants.ProgressDone, &outputID)
}

func (t *tracker) move(ctx context.Context, status constants.JobStatus, p int, outputID *uuid.UUID) error {
	if t.wrote && status.Rank() < t.status.Rank() {
		return common.NewInvalidStateError(fmt.Sprintf("job %s cannot move from %s back to %s", t.id, t.status, status))
	}
	p = t.floor(p)
	if err := t.update(ctx, entity.JobUpdate{Status: &status, Progress: &p, OutputFileID: outputID}); err != nil {
		return err
	}
	t.status, t.last, t.wrote = status, p, true
	t.logger.Info("job.update", "job_id", t.id, "status", status, "progress", p)
	return nil
}

// advance raises progress within the current status. Lower or equal values are skipped.
func (t *tracker) advance(ctx context.Context, p int) error {
	if t.wrote && p <= t.last {
		return nil
	}
	p = t.floor(p)
	if err := t.update(ctx, entity.JobUpdate{Progress: &p}); err != nil {
		return err
	}
	t.last, t.wrote = p, true
	t.logger.Debug("job.update", "job_id", t.id, "status", t.status, "progress", p)
	return nil
}

func (t *tracker) floor(p int) int {
	p = max(constants.ProgressMin, min(constants.ProgressMax, p))
	if t.wrote && p < t.last {
		return t.last
	}
	return p
}

// translateProgress maps chunk current/total onto the translating window.
func translateProgress(current, total int) int {
	if total <= 0 {
		return constants.ProgressTranslateStart
	}
	current = max(0, min(current, total))
	span := constants.ProgressTranslateEnd - constants.ProgressTranslateStart
	return constants.ProgressTranslateStart + current*span/total
}
