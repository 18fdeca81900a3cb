package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// DefaultScannedDensityRatio is characters per square point below which a page is
// considered image-only.
const DefaultScannedDensityRatio = 0.0005

// SamplePages picks the first, middle and last page indexes (deduplicated).
func SamplePages(n int) []int {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []int{0}
	case n == 2:
		return []int{0, 1}
	}
	return []int{0, n / 2, n - 1}
}

// Density is extracted characters divided by page area. A page without an area
// has density 0.
func Density(p PageText) float64 {
	area := p.Area()
	if area <= 0 {
		return 0
	}
	return float64(utf8.RuneCountInString(strings.TrimSpace(p.Text))) / area
}

// IsScanned is true when every sampled page falls below ratio. A result without
// pages counts as scanned.
func IsScanned(res ExtractionResult, ratio float64) bool {
	if ratio <= 0 {
		ratio = DefaultScannedDensityRatio
	}
	idx := SamplePages(len(res.Pages))
	if len(idx) == 0 {
		return true
	}
	for _, i := range idx {
		if Density(res.Pages[i]) >= ratio {
			return false
		}
	}
	return true
}

// Classifier decides up front whether a document needs OCR, from the text layer
// density of a few sampled pages.
type Classifier struct {
	direct Strategy
	ratio  float64
}

func NewClassifier(direct Strategy, ratio float64) *Classifier {
	if ratio <= 0 {
		ratio = DefaultScannedDensityRatio
	}
	return &Classifier{direct: direct, ratio: ratio}
}

func (c *Classifier) IsScanned(ctx context.Context, path string) (bool, error) {
	res, err := c.direct.Extract(ctx, path)
	if err != nil {
		return false, common.NewExtractionError(CodeFailed, "classification failed", err)
	}
	return IsScanned(res, c.ratio), nil
}
