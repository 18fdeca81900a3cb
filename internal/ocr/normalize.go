package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// separator rows tesseract produces from table borders and signature lines
var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// invisible runes OCR and PDF text layers leave behind; ZWJ/ZWNJ are kept because
// Gujarati conjuncts depend on them
var invisible = strings.NewReplacer(
	"\ufeff", "",
	"\u200b", "",
	"\u00a0", " ",
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
)

// Normalize composes text to NFC and tidies whitespace. Line breaks are kept, runs
// of spaces become one, and more than one blank line collapses to a single one.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = invisible.Replace(norm.NFC.String(s))

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.FieldsFunc(line, func(r rune) bool { return r == ' ' }), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
