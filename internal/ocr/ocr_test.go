package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeRunner writes page images for pdftoppm and answers tesseract with canned TSV.
type fakeRunner struct {
	pages int
	tsv   string
	fail  map[string]error
	calls []call
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if err := f.fail[name]; err != nil {
		return nil, []byte("boom"), err
	}
	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		return []byte(f.tsv), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t0\t0\t100\t10\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tSALE\n" +
	"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t80\tDEED\n" +
	"5\t1\t1\t1\t2\t1\t0\t0\t10\t10\t70\tbetween\n" +
	"5\t1\t1\t1\t2\t2\t0\t0\t10\t10\t-1\t \n" +
	"5\t1\t2\t1\t1\t1\t0\t0\t10\t10\t60\tવેચાણ\n"

func TestParseTSV(t *testing.T) {
	rec := ParseTSV(sampleTSV)
	assert.Equal(t, "SALE DEED\nbetween\n\nવેચાણ", rec.Text)
	assert.Equal(t, []float64{90, 80, 70, -1, 60}, rec.TokenConfidences)
	assert.InDelta(t, 0.75, rec.Confidence(), 1e-9)
}

func TestMeanConfidence(t *testing.T) {
	assert.Equal(t, 0.0, MeanConfidence(nil))
	assert.Equal(t, 0.0, MeanConfidence([]float64{-1, -1}))
	assert.InDelta(t, 0.5, MeanConfidence([]float64{-1, 40, 60}), 1e-9)
	assert.Equal(t, 1.0, MeanConfidence([]float64{120}))
}

func TestRasterizeOrdersPagesNumerically(t *testing.T) {
	r := &fakeRunner{pages: 11}
	e := NewEngine(Config{}, nil, WithRunner(r))

	out := t.TempDir()
	pages, err := e.Rasterize(context.Background(), "in.pdf", out)
	require.NoError(t, err)
	require.Len(t, pages, 11)
	assert.Equal(t, "page-1.png", filepath.Base(pages[0]))
	assert.Equal(t, "page-2.png", filepath.Base(pages[1]))
	assert.Equal(t, "page-11.png", filepath.Base(pages[10]))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"-r", "200", "-png", "in.pdf", filepath.Join(out, "page")}, r.calls[0].args)
}

func TestRasterizeMaxPagesAndFailure(t *testing.T) {
	r := &fakeRunner{pages: 5}
	e := NewEngine(Config{MaxPages: 2, DPI: 300}, nil, WithRunner(r))
	pages, err := e.Rasterize(context.Background(), "in.pdf", t.TempDir())
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Contains(t, strings.Join(r.calls[0].args, " "), "-r 300 -png -l 2")

	none := NewEngine(Config{}, nil, WithRunner(&fakeRunner{}))
	_, err = none.Rasterize(context.Background(), "in.pdf", t.TempDir())
	assert.ErrorContains(t, err, "no images")

	broken := NewEngine(Config{}, nil, WithRunner(&fakeRunner{fail: map[string]error{"pdftoppm": errors.New("exit 1")}}))
	_, err = broken.Rasterize(context.Background(), "in.pdf", t.TempDir())
	assert.ErrorContains(t, err, "pdftoppm")
}

func TestRecognizeArgs(t *testing.T) {
	r := &fakeRunner{tsv: sampleTSV}
	e := NewEngine(Config{TessdataDir: "/td"}, nil, WithRunner(r))

	rec, err := e.Recognize(context.Background(), "p.png", "")
	require.NoError(t, err)
	assert.Contains(t, rec.Text, "SALE DEED")
	assert.Equal(t, []string{"p.png", "stdout", "-l", "guj+eng", "--oem", "3", "--psm", "6", "--tessdata-dir", "/td", "tsv"}, r.calls[0].args)

	_, err = e.Recognize(context.Background(), "p.png", "eng")
	require.NoError(t, err)
	assert.Equal(t, "eng", r.calls[1].args[3])
}

func TestNormalize(t *testing.T) {
	in := "Clause\t1:  the   buyer \r\n\r\n\r\n\r\nshall pay.  \n"
	assert.Equal(t, "Clause 1: the buyer\n\nshall pay.", Normalize(in))
	assert.Equal(t, "", Normalize(""))

	// NBSP and zero-width space go, the Gujarati conjunct joiner stays
	assert.Equal(t, "ક્\u200dષ a b", Normalize("\ufeffક્\u200dષ\u00a0a\u200b b"))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip([]byte("short"), 10))
	// "ગુ" is 6 bytes; cutting at 4 must not leave half a rune
	assert.Equal(t, "ગ...(truncated)", clip([]byte("ગુ"), 4))
}
