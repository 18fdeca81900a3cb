package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, Migrate(ctx, db))
	return db
}

func newUpload(name string) NewFile {
	size := int64(2048)
	return NewFile{
		OriginalName: name,
		Bucket:       "uploads",
		StoragePath:  "uploads/" + uuid.NewString() + ".pdf",
		ContentType:  constants.ContentTypePDF,
		SizeBytes:    &size,
	}
}

func TestTables(t *testing.T) {
	tables, err := Tables()
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "files", tables[0].Name)
	assert.Equal(t, "translation_jobs", tables[1].Name)

	jobs := tables[1]
	names := make([]string, 0, len(jobs.Columns))
	for _, c := range jobs.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, jobColumns, names)
	assert.Len(t, jobs.ForeignKeys, 2)
	assert.True(t, column(jobs, "output_file_id").Nullable)
	assert.False(t, column(jobs, "file_id").Nullable)
	assert.Equal(t, "pending", column(jobs, "status").Default)
}

func TestFileRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(db, nil)

	created, err := repo.Create(ctx, newUpload("deed.pdf"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "deed.pdf", got.OriginalName)
	require.NotNil(t, got.SizeBytes)
	assert.EqualValues(t, 2048, *got.SizeBytes)

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = repo.Create(ctx, NewFile{Bucket: "uploads"})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestJobRepository_CreateGetUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	files := NewFileRepository(db, nil)
	jobs := NewJobRepository(db, nil)

	f, err := files.Create(ctx, newUpload("deed.pdf"))
	require.NoError(t, err)

	job, err := jobs.Create(ctx, f.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.Equal(t, "gu", job.SourceLang)
	assert.Equal(t, "en", job.TargetLang)

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.File.ID)
	assert.Equal(t, "deed.pdf", got.File.OriginalName)
	assert.Nil(t, got.OutputFileID)
	assert.Nil(t, got.ErrorMessage)

	status := constants.JobStatusTranslating
	progress := 55
	require.NoError(t, jobs.Update(ctx, job.ID, entity.JobUpdate{Status: &status, Progress: &progress}))

	got, err = jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusTranslating, got.Status)
	assert.Equal(t, 55, got.Progress)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	// partial: only the message changes
	msg := "boom"
	require.NoError(t, jobs.Update(ctx, job.ID, entity.JobUpdate{ErrorMessage: &msg}))
	got, err = jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusTranslating, got.Status)
	assert.Equal(t, 55, got.Progress)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "boom", *got.ErrorMessage)

	out, err := files.Create(ctx, newUpload("deed_translated.pdf"))
	require.NoError(t, err)
	done := constants.JobStatusDone
	full := 100
	require.NoError(t, jobs.Update(ctx, job.ID, entity.JobUpdate{Status: &done, Progress: &full, OutputFileID: &out.ID}))
	got, err = jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OutputFileID)
	assert.Equal(t, out.ID, *got.OutputFileID)
	assert.Equal(t, 100, got.Progress)
}

func TestJobRepository_ClampsProgress(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	jobs := NewJobRepository(db, nil)
	jf, err := jobs.CreateJobWithFile(ctx, newUpload("a.pdf"), "gu", "en")
	require.NoError(t, err)

	for _, tc := range []struct{ in, want int }{{150, 100}, {-5, 0}, {42, 42}} {
		p := tc.in
		require.NoError(t, jobs.Update(ctx, jf.ID, entity.JobUpdate{Progress: &p}))
		got, err := jobs.Get(ctx, jf.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Progress)
	}
}

func TestJobRepository_Errors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	jobs := NewJobRepository(db, nil)

	_, err := jobs.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	p := 10
	err = jobs.Update(ctx, uuid.New(), entity.JobUpdate{Progress: &p})
	assert.True(t, errors.Is(err, common.ErrNotFound))

	bad := constants.JobStatus("paused")
	err = jobs.Update(ctx, uuid.New(), entity.JobUpdate{Status: &bad})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	assert.NoError(t, jobs.Update(ctx, uuid.New(), entity.JobUpdate{}), "empty update is a no-op")

	_, err = jobs.Create(ctx, uuid.New(), "not a language!", "en")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestCreateJobWithFile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	jobs := NewJobRepository(db, nil)

	jf, err := jobs.CreateJobWithFile(ctx, newUpload("sale-deed.pdf"), "GU", "en-IN")
	require.NoError(t, err)
	assert.Equal(t, jf.File.ID, jf.FileID)
	assert.Equal(t, "gu", jf.SourceLang)
	assert.Equal(t, "en", jf.TargetLang)

	got, err := jobs.Get(ctx, jf.ID)
	require.NoError(t, err)
	assert.Equal(t, "sale-deed.pdf", got.File.OriginalName)

	// a failed insert rolls the file back with it
	_, err = jobs.CreateJobWithFile(ctx, newUpload("x.pdf"), "??", "en")
	require.Error(t, err)
	var n int
	require.NoError(t, db.SQL.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second, nil))
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	transientErr := dbError("op", errors.New("conn reset"))

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, 3, time.Millisecond, nil, func(context.Context) error {
			calls++
			if calls < 3 {
				return transientErr
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, 2, time.Millisecond, nil, func(context.Context) error {
			calls++
			return transientErr
		})
		assert.ErrorIs(t, err, common.ErrDatabase)
		assert.Equal(t, 2, calls)
	})

	t.Run("not found is not retried", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, 5, time.Millisecond, nil, func(context.Context) error {
			calls++
			return notFound("file", uuid.New())
		})
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Equal(t, 1, calls)
	})
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN(":memory:"))
	assert.Equal(t, "file:data/app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("data/app.db"))
	assert.Equal(t, "file:x.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:x.db?cache=shared"))
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(0)", sqliteDSN("file:x.db?_pragma=foreign_keys(0)"))
}
