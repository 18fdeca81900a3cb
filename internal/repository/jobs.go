package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
)

type JobRepository interface {
	Create(ctx context.Context, fileID uuid.UUID, srcLang, tgtLang string) (entity.TranslationJob, error)
	Update(ctx context.Context, id uuid.UUID, u entity.JobUpdate) error
	Get(ctx context.Context, id uuid.UUID) (entity.JobWithFile, error)
	CreateJobWithFile(ctx context.Context, f NewFile, srcLang, tgtLang string) (entity.JobWithFile, error)
}

var jobColumns = []string{"id", "file_id", "output_file_id", "status", "progress", "src_lang", "tgt_lang", "error_message", "created_at", "updated_at"}

type jobRepo struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewJobRepository(db *DB, logger *slog.Logger) JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepo{db: db, now: time.Now, logger: logger}
}

func (r *jobRepo) Create(ctx context.Context, fileID uuid.UUID, srcLang, tgtLang string) (entity.TranslationJob, error) {
	return insertJob(ctx, r.db.SQL, r.db.Dialect, r.now().UTC(), fileID, srcLang, tgtLang, r.logger)
}

func langOr(code, def string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return def, nil
	}
	c, ok := constants.CanonicalLang(code)
	if !ok {
		return "", common.NewAppError("VALIDATION_ERROR", fmt.Sprintf("invalid language code %q", code), common.ErrInvalidInput)
	}
	return c, nil
}

func insertJob(ctx context.Context, ex execer, d string, now time.Time, fileID uuid.UUID, srcLang, tgtLang string, logger *slog.Logger) (entity.TranslationJob, error) {
	src, err := langOr(srcLang, constants.DefaultSourceLang)
	if err != nil {
		return entity.TranslationJob{}, err
	}
	tgt, err := langOr(tgtLang, constants.DefaultTargetLang)
	if err != nil {
		return entity.TranslationJob{}, err
	}
	job := entity.TranslationJob{
		ID:         uuid.New(),
		FileID:     fileID,
		Status:     constants.JobStatusPending,
		Progress:   0,
		SourceLang: src,
		TargetLang: tgt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	q, args := entsql.Dialect(d).Insert(tableJobs).
		Columns("id", "file_id", "status", "progress", "src_lang", "tgt_lang", "created_at", "updated_at").
		Values(job.ID, job.FileID, string(job.Status), job.Progress, job.SourceLang, job.TargetLang, job.CreatedAt, job.UpdatedAt).
		Query()
	if _, err := ex.ExecContext(ctx, q, args...); err != nil {
		logger.Error("job create failed", "file_id", fileID, "error", err)
		return entity.TranslationJob{}, dbError("create job", err)
	}
	logger.Info("job created", "job_id", job.ID, "file_id", fileID, "src_lang", src, "tgt_lang", tgt)
	return job, nil
}

// Update writes only the supplied fields, clamps progress to [0,100] and stamps updated_at.
func (r *jobRepo) Update(ctx context.Context, id uuid.UUID, u entity.JobUpdate) error {
	if u.Empty() {
		return nil
	}
	b := entsql.Dialect(r.db.Dialect).Update(tableJobs)
	if u.Status != nil {
		if !u.Status.Valid() {
			return common.NewAppError("VALIDATION_ERROR", fmt.Sprintf("invalid status %q", *u.Status), common.ErrInvalidInput)
		}
		b.Set("status", string(*u.Status))
	}
	if u.Progress != nil {
		b.Set("progress", ClampProgress(*u.Progress))
	}
	if u.ErrorMessage != nil {
		b.Set("error_message", *u.ErrorMessage)
	}
	if u.OutputFileID != nil {
		b.Set("output_file_id", *u.OutputFileID)
	}
	b.Set("updated_at", r.now().UTC()).Where(entsql.EQ("id", id))

	q, args := b.Query()
	res, err := r.db.SQL.ExecContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("job.update failed", "job_id", id, "error", err)
		return dbError("update job", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("translation job", id)
	}
	r.logger.Debug("job.update", "job_id", id, "status", u.Status, "progress", u.Progress)
	return nil
}

func ClampProgress(p int) int {
	return max(constants.ProgressMin, min(constants.ProgressMax, p))
}

func (r *jobRepo) Get(ctx context.Context, id uuid.UUID) (entity.JobWithFile, error) {
	b := entsql.Dialect(r.db.Dialect)
	j := b.Table(tableJobs).As("j")
	f := b.Table(tableFiles).As("f")
	cols := make([]string, 0, len(jobColumns)+len(fileColumns))
	for _, c := range jobColumns {
		cols = append(cols, j.C(c))
	}
	for _, c := range fileColumns {
		cols = append(cols, f.C(c))
	}
	q, args := b.Select(cols...).
		From(j).
		Join(f).On(j.C("file_id"), f.C("id")).
		Where(entsql.EQ(j.C("id"), id)).
		Query()

	row := r.db.SQL.QueryRowContext(ctx, q, args...)
	var (
		out    entity.JobWithFile
		status string
		output uuid.NullUUID
		errMsg sql.NullString
		size   sql.NullInt64
	)
	err := row.Scan(
		&out.ID, &out.FileID, &output, &status, &out.Progress, &out.SourceLang, &out.TargetLang, &errMsg, &out.CreatedAt, &out.UpdatedAt,
		&out.File.ID, &out.File.OriginalName, &out.File.Bucket, &out.File.StoragePath, &out.File.ContentType, &size, &out.File.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.JobWithFile{}, notFound("translation job", id)
	}
	if err != nil {
		return entity.JobWithFile{}, dbError("get job", err)
	}
	out.Status = constants.JobStatus(status)
	if output.Valid {
		v := output.UUID
		out.OutputFileID = &v
	}
	if errMsg.Valid {
		v := errMsg.String
		out.ErrorMessage = &v
	}
	if size.Valid {
		v := size.Int64
		out.File.SizeBytes = &v
	}
	return out, nil
}

// CreateJobWithFile registers the uploaded file and its pending job in one transaction.
func (r *jobRepo) CreateJobWithFile(ctx context.Context, nf NewFile, srcLang, tgtLang string) (entity.JobWithFile, error) {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return entity.JobWithFile{}, dbError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now().UTC()
	f, err := insertFile(ctx, tx, r.db.Dialect, now, nf, r.logger)
	if err != nil {
		return entity.JobWithFile{}, err
	}
	job, err := insertJob(ctx, tx, r.db.Dialect, now, f.ID, srcLang, tgtLang, r.logger)
	if err != nil {
		return entity.JobWithFile{}, err
	}
	if err := tx.Commit(); err != nil {
		return entity.JobWithFile{}, dbError("commit", err)
	}
	return entity.JobWithFile{TranslationJob: job, File: f}, nil
}
