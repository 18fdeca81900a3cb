package constants

import (
	"path/filepath"
	"strings"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// storage path prefixes inside a bucket
	UploadsPrefix = "uploads"
	OutputsPrefix = "outputs"
	ReviewPrefix  = "reviews"

	TranslatedSuffix = "_translated"
)

// AllowedExtensions holds the file extensions accepted for upload.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// AllowedMimeTypes holds the content types accepted for upload.
var AllowedMimeTypes = map[string]struct{}{
	ContentTypePDF: {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedFile reports whether name carries an accepted extension.
func IsAllowedFile(name string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(name))]
	return ok
}

func IsAllowedMimeType(mime string) bool {
	_, ok := AllowedMimeTypes[strings.ToLower(strings.TrimSpace(mime))]
	return ok
}

// TranslatedName turns "deed.pdf" into "deed_translated.pdf".
func TranslatedName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "document"
	}
	return base + TranslatedSuffix + ".pdf"
}
