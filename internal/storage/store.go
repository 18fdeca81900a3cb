// Package storage is the blob store: bucketed files on local disk, reachable from
// outside through short-lived signed URLs.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SignMode string

const (
	ModeUpload   SignMode = "upload"
	ModeDownload SignMode = "download"
)

func (m SignMode) Valid() bool { return m == ModeUpload || m == ModeDownload }

// BlobStore is what the pipeline and HTTP layer need from object storage.
// Every failure is a storage error (common.ErrStorage).
type BlobStore interface {
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	CreateSignedURL(ctx context.Context, bucket, path string, expiresIn time.Duration, mode SignMode, downloadName string) (string, error)
}

const pathTimeLayout = "20060102_150405"

// GenerateStoragePath builds "<prefix>/<YYYYmmdd_HHMMSS>_<uuid><ext>" keeping the
// original file extension, lower-cased.
func GenerateStoragePath(prefix, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}
	name := fmt.Sprintf("%s_%s%s", now.UTC().Format(pathTimeLayout), uuid.New().String(), ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
