package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/extract"
)

const deedText = `SALE DEED

This deed of sale is executed at Ahmedabad on the fifth day of March between the vendor Shri Rameshbhai Patel and the purchaser Smt. Meena Shah.

The vendor declares that the land bearing survey number 142/3 is free from all encumbrances, charges, liens and claims of any kind whatsoever.

આ દસ્તાવેજ વેચાણ અંગેનો છે. વેચનાર જાહેર કરે છે કે જમીન તમામ બોજાથી મુક્ત છે।

Supercalifragilisticexpialidociousandthensomemoreletters appear here to test long words.`

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func doc(pages ...string) extract.ExtractionResult {
	res := extract.ExtractionResult{Success: true, Method: extract.MethodDirect, TotalPages: len(pages)}
	for i, t := range pages {
		res.Pages = append(res.Pages, extract.PageText{Number: i + 1, Text: t, Paragraphs: extract.SplitParagraphs(t)})
	}
	return res
}

func TestChunkText_2500CharsInto3Chunks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		line := fmt.Sprintf("%02d ", i) + strings.Repeat("x", 96)
		b.WriteString(line)
		b.WriteString("\n")
	}
	src := b.String()
	require.Equal(t, 2500, utf8.RuneCountInString(src))

	chunks, err := New(1000, ModePlain).ChunkText(src)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, c.Len(), 1000)
		assert.False(t, c.Structural)
	}
	assert.Equal(t, strings.TrimSpace(src), strings.Join(Texts(chunks), "\n"))
}

func TestChunkText_NeverExceedsMaxAndLosesNothing(t *testing.T) {
	limits := []int{1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233, 1000, 5000}
	for _, limit := range limits {
		t.Run(fmt.Sprintf("max=%d", limit), func(t *testing.T) {
			chunks, err := New(limit, ModePlain).ChunkText(deedText)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				assert.LessOrEqual(t, c.Len(), limit, "chunk %d", i)
				assert.NotEmpty(t, strings.TrimSpace(c.Text))
			}
			assert.Equal(t, stripSpace(deedText), stripSpace(strings.Join(Texts(chunks), "")))
		})
	}
}

func TestChunkText_SplitsLongLineOnWords(t *testing.T) {
	chunks, err := New(12, ModePlain).ChunkText("abcde abcde abcde")
	require.NoError(t, err)
	assert.Equal(t, []string{"abcde abcde", "abcde"}, Texts(chunks))
}

func TestChunkText_Deterministic(t *testing.T) {
	c := New(90, ModePlain)
	a, err := c.ChunkText(deedText)
	require.NoError(t, err)
	b, err := c.ChunkText(deedText)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChunk_EmptyInputs(t *testing.T) {
	c := New(100, ModePlain)

	chunks, err := c.Chunk(extract.ExtractionResult{})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.Chunk(doc("  ", "\n\n"))
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.ChunkText(" \n \n\t")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.ChunkHTML("   ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_InvalidMax(t *testing.T) {
	c := &Chunker{MaxChars: 0, Mode: ModePlain}
	_, err := c.ChunkText("text")
	assert.ErrorIs(t, err, common.ErrChunking)

	_, err = c.ChunkHTML("<p>text</p>")
	assert.ErrorIs(t, err, common.ErrChunking)

	_, err = (&Chunker{MaxChars: 10, Mode: "fancy"}).Chunk(doc("text"))
	assert.ErrorIs(t, err, common.ErrChunking)
}

func TestChunkHTML_WholeFragmentFits(t *testing.T) {
	chunks, err := New(1000, ModeStructural).ChunkHTML("<p>one</p><p>two</p>")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "<p>one</p><p>two</p>", chunks[0].Text)
	assert.True(t, chunks[0].Structural)
}

func TestChunkHTML_MergesFirstSubChunk(t *testing.T) {
	markup := "<p>short</p><div><p>" + strings.Repeat("a", 30) + "</p><p>" + strings.Repeat("b", 30) + "</p></div>"
	chunks, err := New(40, ModeStructural).ChunkHTML(markup)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"<p>short</p><div>",
		"<p>" + strings.Repeat("a", 30) + "</p>",
		"<p>" + strings.Repeat("b", 30) + "</p>",
		"</div>",
	}, Texts(chunks))
}

func TestChunkHTML_SplitsTextOnSentences(t *testing.T) {
	chunks, err := New(12, ModeStructural).ChunkHTML("<p>One. Two? Three! Four। Five.</p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"<p>One. ", "Two? Three! ", "Four। Five.", "</p>"}, Texts(chunks))
}

func TestChunkHTML_ConcatenationReproducesMarkup(t *testing.T) {
	markup := DocumentHTML(doc(deedText, "ANNEXURE A:\n\nSchedule of the property. East: road. West: canal & field."))
	rendered, err := RenderFragment(markup)
	require.NoError(t, err)

	for _, limit := range []int{25, 33, 60, 100, 250, 700, 10000} {
		t.Run(fmt.Sprintf("max=%d", limit), func(t *testing.T) {
			chunks, err := New(limit, ModeStructural).ChunkHTML(markup)
			require.NoError(t, err)
			for i, c := range chunks {
				assert.LessOrEqual(t, c.Len(), limit, "chunk %d", i)
				assert.Equal(t, i, c.Index)
			}
			assert.Equal(t, rendered, strings.Join(Texts(chunks), ""))
		})
	}
}

func TestChunkHTML_KeepsTagsWhole(t *testing.T) {
	markup := DocumentHTML(doc(deedText))
	for limit := 25; limit <= 60; limit++ {
		chunks, err := New(limit, ModeStructural).ChunkHTML(markup)
		require.NoError(t, err, "max=%d", limit)
		for _, c := range chunks {
			require.LessOrEqual(t, c.Len(), limit)
			assert.Equal(t, strings.Count(c.Text, "<"), strings.Count(c.Text, ">"), "partial tag in %q", c.Text)
		}
	}
}

func TestChunkHTML_TagLongerThanLimit(t *testing.T) {
	markup := `<div class="page"><div class="page-number">1</div><p>` + strings.Repeat("text ", 10) + `</p></div>`
	for _, limit := range []int{1, 4, 20, 24} {
		_, err := New(limit, ModeStructural).ChunkHTML(markup)
		require.Error(t, err, "max=%d", limit)
		assert.ErrorIs(t, err, common.ErrChunking)
	}
}

func TestChunk_StructuralMode(t *testing.T) {
	res := doc("HEADING.\n\nBody text for the first page.", "Second page body.")
	chunks, err := New(1000, ModeStructural).Chunk(res)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t,
		`<div class="page"><div class="page-number">1</div><h3>HEADING.</h3><h3>Body text for the first page.</h3></div>`+
			`<div class="page"><div class="page-number">2</div><h3>Second page body.</h3></div>`,
		chunks[0].Text)
}

func TestPageHTML(t *testing.T) {
	long := strings.Repeat("word ", 25) + "end."
	p := extract.PageText{Number: 3, Text: "x", Paragraphs: []string{"SCHEDULE:", "Vendor & <purchaser>", "two\nlines.", long}}
	got := PageHTML(p)
	assert.Equal(t, `<div class="page"><div class="page-number">3</div>`+
		`<h3>SCHEDULE:</h3>`+
		`<p>Vendor &amp; &lt;purchaser&gt;</p>`+
		"<p>two\nlines.</p>"+
		`<p>`+long+`</p>`+
		`</div>`, got)
}

func TestHTMLText(t *testing.T) {
	got, err := HTMLText(`<div class="page"><div class="page-number">1</div><h3>SALE DEED:</h3><p>Vendor &amp; purchaser</p></div>`)
	require.NoError(t, err)
	assert.Equal(t, "1\n\nSALE DEED:\n\nVendor & purchaser", got)
}

func TestPageTexts(t *testing.T) {
	markup := DocumentHTML(doc("Title:\n\nFirst body", "", "Third body"))
	got, err := PageTexts(markup)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Title:\n\nFirst body", 3: "Third body"}, got)
}
