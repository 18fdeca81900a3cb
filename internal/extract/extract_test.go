package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/ocr"
)

type fakeStrategy struct {
	name  Method
	res   ExtractionResult
	err   error
	calls int
}

func (f *fakeStrategy) Name() Method { return f.name }

func (f *fakeStrategy) Extract(_ context.Context, _ string) (ExtractionResult, error) {
	f.calls++
	return f.res, f.err
}

func pagesOf(texts ...string) []PageText {
	out := make([]PageText, 0, len(texts))
	for i, t := range texts {
		out = append(out, newPage(i+1, t))
	}
	return out
}

func resultOf(m Method, texts ...string) ExtractionResult {
	return ExtractionResult{Pages: pagesOf(texts...), Method: m, TotalPages: len(texts), Success: true}
}

// writeTextPDF writes a minimal PDF with one Helvetica text run per page.
func writeTextPDF(t *testing.T, pages ...string) string {
	t.Helper()

	n := len(pages)
	// objects: 1 catalog, 2 pages, 3 font, then (page, content) pairs
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), n))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"blank", "  \n\n ", nil},
		{"single", "one line\nsecond line", []string{"one line\nsecond line"}},
		{"two", "first para\n\nsecond para", []string{"first para", "second para"}},
		{"spaced blank line", "a\n  \n\n\nb", []string{"a", "b"}},
		{"crlf", "a\r\n\r\nb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitParagraphs(tt.text))
		})
	}
}

func TestExtractionResult_IsEmpty(t *testing.T) {
	assert.True(t, ExtractionResult{}.IsEmpty())
	assert.True(t, resultOf(MethodDirect, "", "  \n ").IsEmpty())
	assert.False(t, resultOf(MethodDirect, "", "x").IsEmpty())
}

func TestExtractionResult_TotalCharsAndRawText(t *testing.T) {
	res := resultOf(MethodDirect, " ડીડ ", "", "deed")
	assert.Equal(t, 7, res.TotalChars())
	assert.Equal(t, "ડીડ\n\ndeed", res.RawText())
}

func TestDirectExtractor_ReadsTextLayer(t *testing.T) {
	texts := []string{
		"Page 1 witnesseth that the vendor sells the land.",
		"Page 2 recites the consideration paid in full now",
		"Page 3 bears the signatures of both the parties.",
	}
	path := writeTextPDF(t, texts...)

	res, err := NewDirectExtractor(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Pages, 3)
	for i, p := range res.Pages {
		assert.Equal(t, i+1, p.Number)
		assert.Contains(t, p.Text, texts[i])
		assert.False(t, p.OCR)
		assert.Nil(t, p.Confidence)
		assert.InDelta(t, 612, p.Width, 0.01)
		assert.InDelta(t, 792, p.Height, 0.01)
	}
}

func TestDirectExtractor_MissingFile(t *testing.T) {
	_, err := NewDirectExtractor(nil).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestValidatePDF(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	err := ValidatePDF(empty)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)

	junk := filepath.Join(dir, "junk.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("this is not a pdf at all"), 0o600))
	err = ValidatePDF(junk)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)

	err = ValidatePDF(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, common.ErrExtraction)
}

func TestSelector_DigitalDocumentUsesDirect(t *testing.T) {
	path := writeTextPDF(t,
		"Page 1 witnesseth that the vendor sells the land.",
		"Page 2 recites the consideration paid in full now",
		"Page 3 bears the signatures of both the parties.",
	)
	fallback := &fakeStrategy{name: MethodOCR, err: errors.New("must not run")}
	sel := NewSelector(NewDirectExtractor(nil), fallback, nil, WithValidator(nil))

	res, err := sel.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Len(t, res.Pages, 3)
	assert.GreaterOrEqual(t, res.TotalChars(), DefaultMinTextChars)
	assert.Zero(t, fallback.calls)
}

func TestSelector_ThreePagesOf50Chars(t *testing.T) {
	line := strings.Repeat("a", 49) + "."
	direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, line, line, line)}
	fallback := &fakeStrategy{name: MethodOCR}
	sel := NewSelector(direct, fallback, nil, WithValidator(nil))

	res, err := sel.Extract(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Len(t, res.Pages, 3)
	assert.Equal(t, 150, res.TotalChars())
	assert.Zero(t, fallback.calls)
}

type fakeRaster struct {
	pages int
	err   error
}

func (f fakeRaster) Rasterize(_ context.Context, _ string, outDir string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, f.pages)
	for i := range out {
		out[i] = filepath.Join(outDir, fmt.Sprintf("page-%d.png", i+1))
	}
	return out, nil
}

type fakeRecognizer struct {
	fail map[string]bool
	lang []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, img, lang string) (ocr.Recognition, error) {
	f.lang = append(f.lang, lang)
	base := filepath.Base(img)
	if f.fail[base] {
		return ocr.Recognition{}, errors.New("tesseract crashed")
	}
	return ocr.Recognition{
		Text:             "વેચાણ દસ્તાવેજ " + base,
		TokenConfidences: []float64{91, 85, -1, 77},
	}, nil
}

func TestSelector_ScannedDocumentUsesOCR(t *testing.T) {
	direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "", "", "")}
	recog := &fakeRecognizer{}
	ocrx := NewOCRExtractor(fakeRaster{pages: 3}, recog, "guj+eng", nil)
	sel := NewSelector(direct, ocrx, nil, WithValidator(nil))

	res, err := sel.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodOCR, res.Method)
	require.Len(t, res.Pages, 3)
	for i, p := range res.Pages {
		assert.Equal(t, i+1, p.Number)
		assert.True(t, p.OCR)
		require.NotNil(t, p.Confidence)
		assert.GreaterOrEqual(t, *p.Confidence, 0.0)
		assert.LessOrEqual(t, *p.Confidence, 1.0)
		assert.InDelta(t, 0.8433, *p.Confidence, 0.001)
	}
	assert.Equal(t, []string{"guj+eng", "guj+eng", "guj+eng"}, recog.lang)
}

func TestSelector_StrategyFailuresAreIndependent(t *testing.T) {
	t.Run("direct fails, ocr wins", func(t *testing.T) {
		direct := &fakeStrategy{name: MethodDirect, err: errors.New("xref broken")}
		fallback := &fakeStrategy{name: MethodOCR, res: resultOf(MethodOCR, "recognized")}
		res, err := NewSelector(direct, fallback, nil, WithValidator(nil)).Extract(context.Background(), "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodOCR, res.Method)
	})

	t.Run("ocr fails, sparse direct kept", func(t *testing.T) {
		direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "short text layer")}
		fallback := &fakeStrategy{name: MethodOCR, err: errors.New("pdftoppm missing")}
		res, err := NewSelector(direct, fallback, nil, WithValidator(nil)).Extract(context.Background(), "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodDirectSparse, res.Method)
		assert.Contains(t, res.Error, "pdftoppm missing")
		assert.Equal(t, 1, fallback.calls)
	})

	t.Run("longer result wins", func(t *testing.T) {
		direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "abc")}
		fallback := &fakeStrategy{name: MethodOCR, res: resultOf(MethodOCR, "abcdef")}
		res, err := NewSelector(direct, fallback, nil, WithValidator(nil)).Extract(context.Background(), "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodOCR, res.Method)
		assert.Equal(t, "abcdef", res.Pages[0].Text)
	})

	t.Run("tie keeps direct", func(t *testing.T) {
		direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "abc")}
		fallback := &fakeStrategy{name: MethodOCR, res: resultOf(MethodOCR, "xyz")}
		res, err := NewSelector(direct, fallback, nil, WithValidator(nil)).Extract(context.Background(), "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, MethodDirectSparse, res.Method)
		assert.Equal(t, "abc", res.Pages[0].Text)
	})
}

func TestSelector_BothEmptyFails(t *testing.T) {
	direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "", "")}
	fallback := &fakeStrategy{name: MethodOCR, err: errors.New("tesseract not installed")}
	res, err := NewSelector(direct, fallback, nil, WithValidator(nil)).Extract(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.Contains(t, err.Error(), "tesseract not installed")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "tesseract not installed")
}

func TestSelector_InvalidPDFStopsBeforeStrategies(t *testing.T) {
	direct := &fakeStrategy{name: MethodDirect}
	fallback := &fakeStrategy{name: MethodOCR}
	bad := errors.New("bad header")
	sel := NewSelector(direct, fallback, nil, WithValidator(func(string) error { return bad }))

	_, err := sel.Extract(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.ErrorIs(t, err, bad)
	assert.Zero(t, direct.calls)
	assert.Zero(t, fallback.calls)
}

func TestSelector_CustomThreshold(t *testing.T) {
	direct := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "twelve chars")}
	fallback := &fakeStrategy{name: MethodOCR}
	res, err := NewSelector(direct, fallback, nil, WithValidator(nil), WithMinTextChars(10)).Extract(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Zero(t, fallback.calls)
}

func TestOCRExtractor_PageFailureBecomesWarning(t *testing.T) {
	recog := &fakeRecognizer{fail: map[string]bool{"page-2.png": true}}
	res, err := NewOCRExtractor(fakeRaster{pages: 3}, recog, "guj", nil).Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	require.Len(t, res.Pages, 3)
	assert.True(t, res.Pages[1].Blank())
	assert.Nil(t, res.Pages[1].Confidence)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "page 2")
}

func TestOCRExtractor_AllPagesFail(t *testing.T) {
	recog := &fakeRecognizer{fail: map[string]bool{"page-1.png": true}}
	_, err := NewOCRExtractor(fakeRaster{pages: 1}, recog, "guj", nil).Extract(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract crashed")

	_, err = NewOCRExtractor(fakeRaster{err: errors.New("no poppler")}, recog, "guj", nil).Extract(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no poppler")
}

func TestIsScanned(t *testing.T) {
	sized := func(text string) PageText {
		p := newPage(1, text)
		p.Width, p.Height = 612, 792
		return p
	}
	dense := strings.Repeat("word ", 200) // ~1000 chars on a letter page: ~0.002

	tests := []struct {
		name  string
		pages []PageText
		want  bool
	}{
		{"no pages", nil, true},
		{"all blank", []PageText{sized(""), sized(""), sized("")}, true},
		{"text on first page", []PageText{sized(dense), sized(""), sized("")}, false},
		{"text only on unsampled page", []PageText{sized(""), sized(dense), sized(""), sized(""), sized("")}, true},
		{"sparse stamp text", []PageText{sized("Stamp No. 12"), sized("Page 2"), sized("Seal")}, true},
		{"text without media box", []PageText{newPage(1, strings.Repeat("x", 400))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsScanned(ExtractionResult{Pages: tt.pages}, DefaultScannedDensityRatio))
		})
	}
}

func TestDensity(t *testing.T) {
	p := newPage(1, strings.Repeat("x", 400))
	assert.Zero(t, Density(p))

	p.Width, p.Height = 100, 200
	assert.InDelta(t, 0.02, Density(p), 1e-9)
}

func TestSamplePages(t *testing.T) {
	assert.Nil(t, SamplePages(0))
	assert.Equal(t, []int{0}, SamplePages(1))
	assert.Equal(t, []int{0, 1}, SamplePages(2))
	assert.Equal(t, []int{0, 1, 2}, SamplePages(3))
	assert.Equal(t, []int{0, 5, 9}, SamplePages(10))
}

func TestClassifier_IsScanned(t *testing.T) {
	path := writeTextPDF(t, strings.Repeat("Deed text ", 40))
	scanned, err := NewClassifier(NewDirectExtractor(nil), 0).IsScanned(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, scanned)

	blank := &fakeStrategy{name: MethodDirect, res: resultOf(MethodDirect, "", "", "")}
	scanned, err = NewClassifier(blank, 0).IsScanned(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.True(t, scanned)

	broken := &fakeStrategy{name: MethodDirect, err: errors.New("boom")}
	_, err = NewClassifier(broken, 0).IsScanned(context.Background(), "x.pdf")
	assert.ErrorIs(t, err, common.ErrExtraction)
}
