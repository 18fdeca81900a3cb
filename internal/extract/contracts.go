package extract

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// Method names the strategy that produced an ExtractionResult.
type Method string

const (
	MethodDirect       Method = "direct"
	MethodOCR          Method = "ocr"
	MethodDirectSparse Method = "direct_sparse"
)

// PageText is one page's extracted content. Treat as immutable once built.
type PageText struct {
	Number     int      `json:"page_number"` // 1-based
	Text       string   `json:"text"`
	Paragraphs []string `json:"paragraphs"`
	OCR        bool     `json:"ocr"`
	Confidence *float64 `json:"confidence,omitempty"` // [0,1], OCR pages only

	// page size in PDF points; zero when unknown
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Blank reports whether the page carries no visible text.
func (p PageText) Blank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// Area is the page area in square points.
func (p PageText) Area() float64 {
	return p.Width * p.Height
}

type ExtractionResult struct {
	Pages      []PageText    `json:"pages"`
	Success    bool          `json:"success"`
	Method     Method        `json:"method"`
	TotalPages int           `json:"total_pages"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// IsEmpty is true iff no page has non-blank text.
func (r ExtractionResult) IsEmpty() bool {
	for _, p := range r.Pages {
		if !p.Blank() {
			return false
		}
	}
	return true
}

// TotalChars counts runes across all pages.
func (r ExtractionResult) TotalChars() int {
	n := 0
	for _, p := range r.Pages {
		n += utf8.RuneCountInString(strings.TrimSpace(p.Text))
	}
	return n
}

// RawText joins page texts with a blank line.
func (r ExtractionResult) RawText() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Strategy turns a PDF on disk into pages of text.
type Strategy interface {
	Name() Method
	Extract(ctx context.Context, path string) (ExtractionResult, error)
}

// Extractor is what the pipeline depends on.
type Extractor interface {
	Extract(ctx context.Context, path string) (ExtractionResult, error)
}
