// Package render rebuilds a paginated PDF from translated text.
package render

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/internal/translator"
)

// Document is the input to Build. Text is used when Pages is empty.
type Document struct {
	Title       string
	SourceLang  string
	TargetLang  string
	Text        string
	Pages       []translator.TranslatedPage
	GeneratedAt time.Time
}

// Body returns the text to lay out.
func (d Document) Body() string {
	if len(d.Pages) > 0 {
		return translator.FullText(d.Pages)
	}
	return d.Text
}

// Comparison places source and translated paragraphs side by side.
type Comparison struct {
	Title       string
	SourceLang  string
	TargetLang  string
	Original    string
	Translated  string
	GeneratedAt time.Time
}

type blockKind string

const (
	blockHeading   blockKind = "heading"
	blockParagraph blockKind = "paragraph"
)

// Block is one laid out unit of text.
type Block struct {
	Kind     blockKind
	Text     string
	LangCSS  string
	NoIndent bool
}

func (b Block) Heading() bool { return b.Kind == blockHeading }

// Blocks splits text on blank lines, flattens inner line breaks and tags headings.
func Blocks(text, targetLang string) []Block {
	langCSS := "english"
	if targetLang == "gu" {
		langCSS = "gujarati"
	}
	var out []Block
	for i, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		para = strings.ReplaceAll(para, "\n", " ")
		para = strings.ReplaceAll(para, "  ", " ")
		if IsHeading(para) {
			out = append(out, Block{Kind: blockHeading, Text: para})
			continue
		}
		out = append(out, Block{Kind: blockParagraph, Text: para, LangCSS: langCSS, NoIndent: i == 0})
	}
	return out
}

var headingPrefixes = []string{"SECTION", "CHAPTER", "ARTICLE", "CLAUSE"}

// IsHeading guesses whether a paragraph is a heading.
func IsHeading(s string) bool {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n == 0 || n >= 100 {
		return false
	}
	switch {
	case strings.HasSuffix(s, ":"):
		return true
	case strings.HasSuffix(s, ".") && n < 50:
		return true
	case isUpper(s):
		return true
	}
	for _, p := range headingPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// isUpper is true when s has cased letters and none of them is lower case.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func languageLabel(code string) string {
	if code == "" {
		return ""
	}
	return constants.LanguageName(code)
}
