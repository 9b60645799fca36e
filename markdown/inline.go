package markdown

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

var (
	codeRE       = regexp.MustCompile("`([^`]+)`")
	linkRE       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldItalicRE = regexp.MustCompile(`\*\*\*(.+?)\*\*\*|___(.+?)___`)
	boldRE       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italicRE     = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
)

type spanKind int

const (
	spanCode spanKind = iota
	spanLink
	spanBoldItalic
	spanBold
	spanItalic
)

// span is a byte range of a line claimed by one inline rule.
type span struct {
	start, end int
	kind       spanKind
	text       string
	url        string
}

// extractSpans returns the non-overlapping inline spans of text sorted by
// start. Rules claim bytes in priority order (code, link, bold+italic, bold,
// italic) and later rules only search bytes no earlier rule claimed, so the
// contents of a code span are never styled.
func extractSpans(text string) []span {
	if text == "" {
		return nil
	}
	occupied := make([]bool, len(text))
	var spans []span
	claim := func(kind spanKind, re *regexp.Regexp, accept func(loc []int) bool) {
		for _, loc := range findFree(text, re, occupied, accept) {
			s := span{start: loc[0], end: loc[1], kind: kind, text: group(text, loc, 1)}
			if kind == spanLink {
				s.url = group(text, loc, 2)
			} else if s.text == "" {
				s.text = group(text, loc, 2)
			}
			spans = append(spans, s)
		}
	}
	claim(spanCode, codeRE, nil)
	claim(spanLink, linkRE, nil)
	claim(spanBoldItalic, boldItalicRE, nil)
	claim(spanBold, boldRE, nil)
	claim(spanItalic, italicRE, func(loc []int) bool {
		// Underscore emphasis must not sit inside a word, so snake_case
		// identifiers stay plain.
		if text[loc[0]] != '_' {
			return true
		}
		return !wordBefore(text, loc[0]) && !wordAfter(text, loc[1])
	})
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// findFree returns the submatch indexes of re in text that touch no
// occupied byte, marking each accepted match as occupied.
func findFree(text string, re *regexp.Regexp, occupied []bool, accept func(loc []int) bool) [][]int {
	var out [][]int
	for pos := 0; pos < len(text); {
		if occupied[pos] {
			pos++
			continue
		}
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		if anyOccupied(occupied, loc[0], loc[1]) || (accept != nil && !accept(loc)) {
			pos = loc[0] + 1
			continue
		}
		for i := loc[0]; i < loc[1]; i++ {
			occupied[i] = true
		}
		out = append(out, loc)
		pos = loc[1]
	}
	return out
}

func anyOccupied(occupied []bool, start, end int) bool {
	for _, o := range occupied[start:end] {
		if o {
			return true
		}
	}
	return false
}

func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWord(r)
}

func wordAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWord(r)
}
