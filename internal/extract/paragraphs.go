package extract

import (
	"regexp"
	"strings"
)

var reParagraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)

// SplitParagraphs splits page text on blank lines. A non-blank page without any
// blank line is a single paragraph.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, p := range reParagraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newPage(number int, text string) PageText {
	return PageText{
		Number:     number,
		Text:       text,
		Paragraphs: SplitParagraphs(text),
	}
}
