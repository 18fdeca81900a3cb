package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/storage"
)

var pdfMagic = []byte("%PDF-")

// authorize checks the signed token against the requested bucket, path and mode.
func (s *HTTPServer) authorize(c echo.Context, mode storage.SignMode) (storage.Grant, string, string, error) {
	bucket := c.Param("bucket")
	key := c.Param("*")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	token := c.QueryParam("token")
	if token == "" || s.deps.Signer == nil {
		return storage.Grant{}, "", "", common.NewAppError("UNAUTHORIZED", "missing or unusable token", common.ErrUnauthorized)
	}
	g, err := s.deps.Signer.Verify(token)
	if err != nil {
		return storage.Grant{}, "", "", common.NewAppError("UNAUTHORIZED", "invalid token", errors.Join(common.ErrUnauthorized, err))
	}
	if g.Mode != mode || g.Bucket != bucket || g.Path != key {
		return storage.Grant{}, "", "", common.NewAppError("UNAUTHORIZED", "token does not cover this object", common.ErrUnauthorized)
	}
	return g, bucket, key, nil
}

// putBlob accepts an upload against a signed upload URL. Bodies must be PDFs
// within the configured size limit.
func (s *HTTPServer) putBlob(c echo.Context) error {
	_, bucket, key, err := s.authorize(c, storage.ModeUpload)
	if err != nil {
		return err
	}
	limit := s.deps.Storage.MaxUploadBytes
	body := c.Request().Body
	if limit > 0 {
		body = http.MaxBytesReader(c.Response(), body, limit)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit))
		}
		return common.NewAppError("VALIDATION_ERROR", "read upload body", errors.Join(common.ErrInvalidInput, err))
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return common.NewAppError("VALIDATION_ERROR", "upload is not a PDF", common.ErrInvalidInput)
	}
	if err := s.deps.Blobs.Upload(c.Request().Context(), bucket, key, data, constants.ContentTypePDF); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"bucket": bucket, "path": key, "size_bytes": len(data)})
}

func (s *HTTPServer) getBlob(c echo.Context) error {
	g, bucket, key, err := s.authorize(c, storage.ModeDownload)
	if err != nil {
		return err
	}
	data, err := s.deps.Blobs.Download(c.Request().Context(), bucket, key)
	if err != nil {
		return err
	}
	name := g.DownloadName
	if name == "" {
		name = path.Base(key)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return c.Blob(http.StatusOK, contentTypeFor(key), data)
}

func contentTypeFor(key string) string {
	switch path.Ext(key) {
	case ".pdf":
		return constants.ContentTypePDF
	case ".xlsx":
		return constants.ContentTypeXLSX
	default:
		return echo.MIMEOctetStream
	}
}
