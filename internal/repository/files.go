package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
)

// NewFile carries the fields a caller supplies when registering a blob.
type NewFile struct {
	OriginalName string
	Bucket       string
	StoragePath  string
	ContentType  string
	SizeBytes    *int64
}

type FileRepository interface {
	Create(ctx context.Context, f NewFile) (entity.File, error)
	Get(ctx context.Context, id uuid.UUID) (entity.File, error)
}

var fileColumns = []string{"id", "original_name", "bucket", "storage_path", "content_type", "size_bytes", "created_at"}

type fileRepo struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewFileRepository(db *DB, logger *slog.Logger) FileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRepo{db: db, now: time.Now, logger: logger}
}

func (r *fileRepo) Create(ctx context.Context, f NewFile) (entity.File, error) {
	return insertFile(ctx, r.db.SQL, r.db.Dialect, r.now().UTC(), f, r.logger)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertFile(ctx context.Context, ex execer, d string, now time.Time, f NewFile, logger *slog.Logger) (entity.File, error) {
	v := common.NewValidator().
		Field("original_name", f.OriginalName, common.Required).
		Field("bucket", f.Bucket, common.Required).
		Field("storage_path", f.StoragePath, common.Required)
	if err := v.Error(); err != nil {
		return entity.File{}, err
	}
	row := entity.File{
		ID:           uuid.New(),
		OriginalName: f.OriginalName,
		Bucket:       f.Bucket,
		StoragePath:  f.StoragePath,
		ContentType:  f.ContentType,
		SizeBytes:    f.SizeBytes,
		CreatedAt:    now,
	}
	var size any
	if f.SizeBytes != nil {
		size = *f.SizeBytes
	}
	q, args := entsql.Dialect(d).Insert(tableFiles).
		Columns(fileColumns...).
		Values(row.ID, row.OriginalName, row.Bucket, row.StoragePath, row.ContentType, size, row.CreatedAt).
		Query()
	if _, err := ex.ExecContext(ctx, q, args...); err != nil {
		logger.Error("file create failed", "bucket", f.Bucket, "path", f.StoragePath, "error", err)
		return entity.File{}, dbError("create file", err)
	}
	logger.Info("file created", "file_id", row.ID, "bucket", row.Bucket, "path", row.StoragePath)
	return row, nil
}

func (r *fileRepo) Get(ctx context.Context, id uuid.UUID) (entity.File, error) {
	q, args := entsql.Dialect(r.db.Dialect).
		Select(fileColumns...).
		From(entsql.Dialect(r.db.Dialect).Table(tableFiles)).
		Where(entsql.EQ("id", id)).
		Query()
	f, err := scanFile(r.db.SQL.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.File{}, notFound("file", id)
	}
	if err != nil {
		return entity.File{}, dbError("get file", err)
	}
	return f, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (entity.File, error) {
	var (
		f    entity.File
		size sql.NullInt64
	)
	if err := s.Scan(&f.ID, &f.OriginalName, &f.Bucket, &f.StoragePath, &f.ContentType, &size, &f.CreatedAt); err != nil {
		return entity.File{}, err
	}
	if size.Valid {
		n := size.Int64
		f.SizeBytes = &n
	}
	return f, nil
}

func notFound(kind string, id uuid.UUID) error {
	return common.NewAppError("NOT_FOUND", kind+" "+id.String()+" not found", common.ErrNotFound)
}

// dbError marks a database failure as a storage error.
func dbError(op string, err error) error {
	return common.NewStorageError(op, errors.Join(common.ErrDatabase, err))
}
