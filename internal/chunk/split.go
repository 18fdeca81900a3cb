package chunk

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentence terminators: period, question, exclamation and the danda
var reSentenceEnd = regexp.MustCompile(`[.!?।]\s+`)

// splitWords breaks an over-long line on spaces. A single word longer than limit is
// cut on rune boundaries.
func splitWords(line string, limit int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, w := range strings.Fields(line) {
		n := utf8.RuneCountInString(w)
		if n > limit {
			if curLen > 0 {
				out = append(out, cur.String())
				cur.Reset()
				curLen = 0
			}
			out = append(out, splitRunes(w, limit)...)
			continue
		}
		if curLen > 0 && curLen+n+1 > limit {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}

func splitRunes(s string, limit int) []string {
	var out []string
	r := []rune(s)
	for len(r) > limit {
		out = append(out, string(r[:limit]))
		r = r[limit:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

// splitSentences cuts s after every terminator and its trailing whitespace. The
// pieces concatenate back to s.
func splitSentences(s string) []string {
	var out []string
	last := 0
	for _, m := range reSentenceEnd.FindAllStringIndex(s, -1) {
		out = append(out, s[last:m[1]])
		last = m[1]
	}
	if last < len(s) {
		out = append(out, s[last:])
	}
	return out
}

// splitExact cuts s into pieces of at most limit runes, preferring to cut right after
// whitespace. The pieces concatenate back to s.
func splitExact(s string, limit int) []string {
	var out []string
	r := []rune(s)
	for len(r) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if unicode.IsSpace(r[i-1]) {
				cut = i
				break
			}
		}
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}
