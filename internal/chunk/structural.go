package chunk

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

// ChunkHTML splits a markup fragment along node boundaries. Each chunk is a slice
// of the rendered fragment; concatenated in order they equal RenderFragment(markup).
func (c *Chunker) ChunkHTML(markup string) ([]TextChunk, error) {
	limit := c.MaxChars
	if limit < 1 {
		return nil, common.NewChunkingError("max chars must be positive", nil)
	}
	if strings.TrimSpace(markup) == "" {
		return nil, nil
	}
	nodes, err := parseFragment(markup)
	if err != nil {
		return nil, common.NewChunkingError("parse markup", err)
	}

	units, err := c.units(nodes)
	if errors.Is(err, common.ErrChunking) {
		return nil, err
	}
	if err != nil {
		return nil, common.NewChunkingError("render markup", err)
	}
	if total := strings.Join(units, ""); utf8.RuneCountInString(total) <= limit {
		return index([]string{total}, true), nil
	}
	return index(c.pack(units), true), nil
}

// RenderFragment parses and re-renders markup the same way ChunkHTML does.
func RenderFragment(markup string) (string, error) {
	nodes, err := parseFragment(markup)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func parseFragment(markup string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(markup), body)
}

// units renders nodes into pieces no longer than MaxChars, descending into
// elements that are too large to send whole. Only text is ever cut; a tag or
// other markup node that alone exceeds MaxChars is an error.
func (c *Chunker) units(nodes []*html.Node) ([]string, error) {
	limit := c.MaxChars
	var out []string
	for _, n := range nodes {
		s, err := render(n)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(s) <= limit {
			out = append(out, s)
			continue
		}
		if n.Type == html.TextNode {
			for _, sentence := range splitSentences(s) {
				out = append(out, splitExact(sentence, limit)...)
			}
			continue
		}
		if n.Type != html.ElementNode || n.FirstChild == nil {
			return nil, oversized(n, limit)
		}
		open, closing, err := tags(n)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(open) > limit || utf8.RuneCountInString(closing) > limit {
			return nil, oversized(n, limit)
		}
		var inner []string
		if rawText(n) {
			// children render unescaped, so the body is cut as plain text
			inner = splitExact(strings.TrimSuffix(strings.TrimPrefix(s, open), closing), limit)
		} else {
			var children []*html.Node
			for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
				children = append(children, ch)
			}
			if inner, err = c.units(children); err != nil {
				return nil, err
			}
		}
		out = append(out, open)
		out = append(out, inner...)
		out = append(out, closing)
	}
	return out, nil
}

func oversized(n *html.Node, limit int) error {
	name := n.Data
	if n.Type != html.ElementNode {
		name = "markup"
	}
	return common.NewChunkingError(fmt.Sprintf("<%s> exceeds %d chars and cannot be split outside text", name, limit), nil)
}

// pack greedily joins units into chunks.
func (c *Chunker) pack(units []string) []string {
	limit := c.MaxChars
	ratio := c.FlushRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	soft := ratio * float64(limit)

	var out []string
	var buf strings.Builder
	bufLen := 0
	flush := func() {
		if bufLen > 0 {
			out = append(out, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}
	for _, u := range units {
		n := utf8.RuneCountInString(u)
		if bufLen+n > limit {
			flush()
		}
		buf.WriteString(u)
		bufLen += n
		if float64(bufLen) >= soft {
			flush()
		}
	}
	flush()
	return out
}

func render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// tags returns the rendered open and close tag of an element.
func tags(n *html.Node) (string, string, error) {
	shallow := &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      n.Attr,
	}
	full, err := render(shallow)
	if err != nil {
		return "", "", err
	}
	closing := "</" + n.Data + ">"
	return strings.TrimSuffix(full, closing), closing, nil
}

// rawText elements render their children unescaped; they are split as opaque text.
func rawText(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Textarea, atom.Pre, atom.Listing, atom.Xmp, atom.Iframe, atom.Noscript, atom.Plaintext, atom.Title:
		return true
	}
	return false
}
