package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Recognize runs tesseract in TSV mode on one page image. Text is rebuilt from the
// word rows: words joined by spaces, lines by newlines, paragraphs by a blank line.
func (e *Engine) Recognize(ctx context.Context, imagePath, lang string) (Recognition, error) {
	if lang == "" {
		lang = e.cfg.Lang
	}
	args := []string{imagePath, "stdout", "-l", lang,
		"--oem", strconv.Itoa(e.cfg.OEM),
		"--psm", strconv.Itoa(e.cfg.PSM),
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// TSV output
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Recognition{}, fmt.Errorf("tesseract: %w: %s", err, clip(errb, 512))
	}
	rec := ParseTSV(string(out))
	rec.Text = Normalize(reBoxNoise.ReplaceAllString(rec.Text, ""))
	return rec, nil
}

// tsv columns: level page_num block_num par_num line_num word_num left top width height conf text
const (
	colLevel = 0
	colBlock = 2
	colPar   = 3
	colLine  = 4
	colConf  = 10
	colText  = 11
	tsvCols  = 12

	levelWord = "5"
)

// ParseTSV turns tesseract TSV into text plus one confidence per word row.
func ParseTSV(tsv string) Recognition {
	var b strings.Builder
	var confs []float64
	var lastPar, lastLine string
	wordsOnLine := 0
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < tsvCols-1 || cols[colLevel] != levelWord {
			continue
		}
		if v, err := strconv.ParseFloat(cols[colConf], 64); err == nil {
			confs = append(confs, v)
		}
		word := ""
		if len(cols) > colText {
			word = strings.TrimSpace(cols[colText])
		}
		if word == "" {
			continue
		}

		par := cols[colBlock] + "." + cols[colPar]
		line := par + "." + cols[colLine]
		switch {
		case b.Len() == 0:
		case par != lastPar:
			b.WriteString("\n\n")
			wordsOnLine = 0
		case line != lastLine:
			b.WriteString("\n")
			wordsOnLine = 0
		}
		if wordsOnLine > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		wordsOnLine++
		lastPar, lastLine = par, line
	}
	return Recognition{Text: b.String(), TokenConfidences: confs}
}

// MeanConfidence averages token confidences (0..100) into 0..1, skipping the -1 sentinel.
func MeanConfidence(tokens []float64) float64 {
	var sum, n float64
	for _, v := range tokens {
		if v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / n / 100.0
	if mean > 1 {
		mean = 1
	}
	return mean
}
