package storage

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

func newStore(t *testing.T) *FSStore {
	t.Helper()
	signer, err := NewSigner("test-secret")
	require.NoError(t, err)
	s, err := NewFSStore(t.TempDir(), "http://example.test/", signer, nil)
	require.NoError(t, err)
	return s
}

func TestFSStore_UploadDownload(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "outputs", "outputs/a/b.pdf", []byte("%PDF-1.4"), "application/pdf"))
	got, err := s.Download(ctx, "outputs", "outputs/a/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))

	// overwrite
	require.NoError(t, s.Upload(ctx, "outputs", "outputs/a/b.pdf", []byte("v2"), "application/pdf"))
	got, err = s.Download(ctx, "outputs", "outputs/a/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	entries, err := os.ReadDir(filepath.Join(s.root, "outputs", "outputs", "a"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFSStore_DownloadMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.Download(context.Background(), "uploads", "nope.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorage))
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cases := []struct {
		name   string
		bucket string
		path   string
	}{
		{"dotdot", "uploads", "../secret"},
		{"nested dotdot", "uploads", "a/../../b"},
		{"backslash dotdot", "uploads", `a\..\..\b`},
		{"empty path", "uploads", ""},
		{"bad bucket", "../x", "a.pdf"},
		{"bucket with slash", "a/b", "a.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Upload(ctx, tc.bucket, tc.path, []byte("x"), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrStorage))
			assert.True(t, errors.Is(err, common.ErrInvalidInput))
		})
	}
}

func TestFSStore_CancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Upload(ctx, "uploads", "a.pdf", []byte("x"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFSStore_CreateSignedURL(t *testing.T) {
	s := newStore(t)
	raw, err := s.CreateSignedURL(context.Background(), "outputs", "outputs/my file.pdf", time.Hour, ModeDownload, "deed_translated.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "example.test", u.Host)
	assert.Equal(t, "/blobs/outputs/outputs/my file.pdf", u.Path)

	grant, err := s.Signer().Verify(u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, Grant{Bucket: "outputs", Path: "outputs/my file.pdf", Mode: ModeDownload, DownloadName: "deed_translated.pdf"}, grant)
}

func TestFSStore_CreateSignedURL_NoSigner(t *testing.T) {
	s, err := NewFSStore(t.TempDir(), "", nil, nil)
	require.NoError(t, err)
	_, err = s.CreateSignedURL(context.Background(), "outputs", "a.pdf", time.Hour, ModeDownload, "")
	assert.True(t, errors.Is(err, common.ErrStorage))
}

func TestSigner(t *testing.T) {
	signer, err := NewSigner("k1")
	require.NoError(t, err)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	tok, err := signer.Sign(Grant{Bucket: "uploads", Path: "uploads/x.pdf", Mode: ModeUpload}, time.Minute)
	require.NoError(t, err)

	g, err := signer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, ModeUpload, g.Mode)

	t.Run("expired", func(t *testing.T) {
		later, err := NewSigner("k1")
		require.NoError(t, err)
		later.now = func() time.Time { return now.Add(2 * time.Minute) }
		_, err = later.Verify(tok)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewSigner("k2")
		require.NoError(t, err)
		other.now = signer.now
		_, err = other.Verify(tok)
		assert.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := signer.Verify(tok + "x")
		assert.Error(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := signer.Sign(Grant{Bucket: "b", Path: "p", Mode: "delete"}, time.Minute)
		assert.Error(t, err)
		_, err = signer.Sign(Grant{Bucket: "b", Path: "p", Mode: ModeDownload}, 0)
		assert.Error(t, err)
		_, err = NewSigner("")
		assert.Error(t, err)
	})
}

func TestGenerateStoragePath(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	re := regexp.MustCompile(`^outputs/20250102_030405_[0-9a-f-]{36}\.pdf$`)

	assert.Regexp(t, re, GenerateStoragePath("outputs", "Deed.PDF", now))
	assert.Regexp(t, re, GenerateStoragePath("/outputs/", "deed", now))
	assert.NotEqual(t, GenerateStoragePath("outputs", "a.pdf", now), GenerateStoragePath("outputs", "a.pdf", now))

	bare := GenerateStoragePath("", "x.pdf", now)
	assert.False(t, strings.Contains(bare, "/"))
}
