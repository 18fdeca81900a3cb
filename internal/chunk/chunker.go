// Package chunk partitions extracted text, or its page markup, into pieces that fit
// the translation provider's request size limit.
package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
)

type Mode string

const (
	ModePlain      Mode = "plain"
	ModeStructural Mode = "structural"
)

const (
	DefaultMaxChars   = 1000
	DefaultFlushRatio = 0.9
)

// TextChunk is one translation request worth of content. Index is the 0-based
// position in the sequence.
type TextChunk struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Structural bool   `json:"structural"`
}

// Len is the chunk length in runes.
func (c TextChunk) Len() int { return utf8.RuneCountInString(c.Text) }

// Chunker is safe for concurrent use; it holds no state between calls.
type Chunker struct {
	MaxChars   int
	Mode       Mode
	FlushRatio float64 // structural mode flushes once the buffer passes this share of MaxChars
}

func New(maxChars int, mode Mode) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if mode == "" {
		mode = ModePlain
	}
	return &Chunker{MaxChars: maxChars, Mode: mode, FlushRatio: DefaultFlushRatio}
}

// Chunk splits an extraction result according to the configured mode.
func (c *Chunker) Chunk(res extract.ExtractionResult) ([]TextChunk, error) {
	if res.IsEmpty() {
		return nil, nil
	}
	switch c.Mode {
	case ModeStructural:
		return c.ChunkHTML(DocumentHTML(res))
	case ModePlain, "":
		return c.ChunkText(res.RawText())
	default:
		return nil, common.NewChunkingError("unknown chunk mode "+string(c.Mode), nil)
	}
}

// ChunkText splits plain text line by line. Chunks joined with "\n" give back the
// input with blank lines and surrounding whitespace removed.
func (c *Chunker) ChunkText(text string) ([]TextChunk, error) {
	limit := c.MaxChars
	if limit < 1 {
		return nil, common.NewChunkingError("max chars must be positive", nil)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n\n", "\n")

	var out []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		n := utf8.RuneCountInString(line)
		if n > limit {
			flush()
			out = append(out, splitWords(line, limit)...)
			continue
		}
		if curLen > 0 && curLen+n+1 > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()

	return index(out, false), nil
}

func index(parts []string, structural bool) []TextChunk {
	chunks := make([]TextChunk, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, TextChunk{Index: len(chunks), Text: p, Structural: structural})
	}
	return chunks
}

// Texts returns the chunk texts in order.
func Texts(chunks []TextChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
