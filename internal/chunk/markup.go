package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/joseph-ayodele/legal-translator/internal/extract"
)

// PageHTML renders one page as a div of headings and paragraphs.
func PageHTML(p extract.PageText) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="page"><div class="page-number">%d</div>`, p.Number)
	paras := p.Paragraphs
	if len(paras) == 0 {
		paras = extract.SplitParagraphs(p.Text)
	}
	for _, para := range paras {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		tag := "p"
		if isPageHeading(para) {
			tag = "h3"
		}
		fmt.Fprintf(&b, "<%s>%s</%s>", tag, html.EscapeString(para), tag)
	}
	b.WriteString("</div>")
	return b.String()
}

func isPageHeading(s string) bool {
	if utf8.RuneCountInString(s) >= 100 || strings.Contains(s, "\n") {
		return false
	}
	return strings.HasSuffix(s, ":") || strings.HasSuffix(s, ".")
}

// DocumentHTML renders every non-blank page.
func DocumentHTML(res extract.ExtractionResult) string {
	var b strings.Builder
	for _, p := range res.Pages {
		if p.Blank() {
			continue
		}
		b.WriteString(PageHTML(p))
	}
	return b.String()
}

// HTMLText returns the text nodes of markup, trimmed and joined by blank lines.
func HTMLText(markup string) (string, error) {
	nodes, err := parseFragment(markup)
	if err != nil {
		return "", err
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, "\n\n"), nil
}

// PageTexts splits translated markup back into per-page text, keyed by the
// page-number marker. Pages without a marker are numbered in order.
func PageTexts(markup string) (map[int]string, error) {
	nodes, err := parseFragment(markup)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string)
	next := 1
	for _, n := range nodes {
		if n.Type != html.ElementNode || !hasClass(n, "page") {
			continue
		}
		num := next
		var parts []string
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.ElementNode && hasClass(ch, "page-number") {
				var v int
				if _, err := fmt.Sscanf(strings.TrimSpace(textOf(ch)), "%d", &v); err == nil && v > 0 {
					num = v
				}
				continue
			}
			if t := strings.TrimSpace(textOf(ch)); t != "" {
				parts = append(parts, t)
			}
		}
		out[num] = strings.Join(parts, "\n\n")
		next = num + 1
	}
	return out, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(textOf(ch))
	}
	return b.String()
}
