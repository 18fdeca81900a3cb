package translator

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/legal-translator/internal/chunk"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
)

// TranslatedPage is one source page and its translation.
type TranslatedPage struct {
	Number     int    `json:"page_number"`
	Original   string `json:"original_text"`
	Translated string `json:"translated_text"`
	HTML       string `json:"html_translated"`
	SourceLang string `json:"source_language"`
	TargetLang string `json:"target_language"`
}

// FullText joins page translations with blank lines.
func FullText(pages []TranslatedPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Translated)
	}
	return strings.Join(parts, "\n\n")
}

// Join concatenates translations in ordinal order using sep.
func Join(chunks []TranslatedChunk, sep string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Translated
	}
	return strings.Join(parts, sep)
}

// TranslateDocument translates each page as markup so headings and paragraph
// breaks survive. Progress is reported across all chunks of the document.
func (c *Client) TranslateDocument(ctx context.Context, res extract.ExtractionResult, chunker *chunk.Chunker, src, tgt string, sink ProgressSink) ([]TranslatedPage, error) {
	if sink == nil {
		sink = NopSink
	}

	type pageChunks struct {
		page   extract.PageText
		chunks []chunk.TextChunk
	}
	var plan []pageChunks
	total := 0
	for _, p := range res.Pages {
		if p.Blank() {
			continue
		}
		chunks, err := chunker.ChunkHTML(chunk.PageHTML(p))
		if err != nil {
			return nil, err
		}
		plan = append(plan, pageChunks{page: p, chunks: chunks})
		total += len(chunks)
	}

	done := 0
	pages := make([]TranslatedPage, 0, len(plan))
	for _, pc := range plan {
		offset := done
		translated, err := c.Translate(ctx, pc.chunks, src, tgt, ProgressFunc(func(cur, _ int) {
			sink.Report(offset+cur, total)
		}))
		if err != nil {
			return nil, err
		}
		done += len(pc.chunks)

		markup := Join(translated, "")
		text := ""
		if byPage, err := chunk.PageTexts(markup); err == nil {
			text = byPage[pc.page.Number]
		}
		if text == "" {
			// provider dropped the page marker
			text, _ = chunk.HTMLText(markup)
		}
		pages = append(pages, TranslatedPage{
			Number:     pc.page.Number,
			Original:   pc.page.Text,
			Translated: text,
			HTML:       markup,
			SourceLang: src,
			TargetLang: tgt,
		})
	}
	return pages, nil
}
