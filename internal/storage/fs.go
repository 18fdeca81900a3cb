package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// FSStore keeps each bucket as a directory under root.
type FSStore struct {
	root    string
	baseURL string
	signer  *Signer
	logger  *slog.Logger
}

// NewFSStore creates root if needed. baseURL is the public origin that serves /blobs.
func NewFSStore(root, baseURL string, signer *Signer, logger *slog.Logger) (*FSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, common.NewStorageError("resolve storage root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, common.NewStorageError("create storage root", err)
	}
	return &FSStore{root: abs, baseURL: strings.TrimRight(baseURL, "/"), signer: signer, logger: logger}, nil
}

func (s *FSStore) Signer() *Signer { return s.signer }

// resolve maps bucket/key onto the filesystem, refusing anything that escapes root.
func (s *FSStore) resolve(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	key = strings.TrimLeft(strings.ReplaceAll(key, `\`, "/"), "/")
	if key == "" {
		return "", errors.New("empty object path")
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid object path %q", key)
		}
	}
	clean := path.Clean(key)
	full := filepath.Join(s.root, bucket, filepath.FromSlash(clean))
	rel, err := filepath.Rel(filepath.Join(s.root, bucket), full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object path %q", key)
	}
	return full, nil
}

func (s *FSStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.NewStorageError("download cancelled", err)
	}
	p, err := s.resolve(bucket, key)
	if err != nil {
		return nil, common.NewStorageError("download", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.NewStorageError("download "+bucket+"/"+key, fmt.Errorf("%w: %v", common.ErrNotFound, err))
	}
	if err != nil {
		return nil, common.NewStorageError("download "+bucket+"/"+key, err)
	}
	s.logger.Debug("storage.download.ok", "bucket", bucket, "path", key, "bytes", len(b))
	return b, nil
}

// Upload writes through a temp file and rename so readers never see partial data.
func (s *FSStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return common.NewStorageError("upload cancelled", err)
	}
	p, err := s.resolve(bucket, key)
	if err != nil {
		return common.NewStorageError("upload", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return common.NewStorageError("upload mkdir", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return common.NewStorageError("upload temp file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return common.NewStorageError("upload write", err)
	}
	if err := tmp.Close(); err != nil {
		return common.NewStorageError("upload close", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return common.NewStorageError("upload rename", err)
	}
	s.logger.Info("storage.upload.ok", "bucket", bucket, "path", key, "bytes", len(data), "content_type", contentType)
	return nil
}

func (s *FSStore) CreateSignedURL(_ context.Context, bucket, key string, expiresIn time.Duration, mode SignMode, downloadName string) (string, error) {
	if s.signer == nil {
		return "", common.NewStorageError("signed urls are not configured", nil)
	}
	if _, err := s.resolve(bucket, key); err != nil {
		return "", common.NewStorageError("sign", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	tok, err := s.signer.Sign(Grant{Bucket: bucket, Path: key, Mode: mode, DownloadName: downloadName}, expiresIn)
	if err != nil {
		return "", common.NewStorageError("sign", err)
	}
	segs := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/blobs/%s/%s?token=%s", s.baseURL, url.PathEscape(bucket), strings.Join(segs, "/"), url.QueryEscape(tok)), nil
}
