// Package worddiff highlights the changed words between a removed and an added line.
package worddiff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/prettify"
)

var _ prettify.WordDiffer = (*Differ)(nil)

// minSimilarity is the share of common tokens below which a line pair is
// treated as a full replacement rather than an edit.
const minSimilarity = 0.4

// Differ computes word-level diffs.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

type class int

const (
	classWord class = iota
	classSpace
	classPunct
)

func classify(r rune) class {
	switch {
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classPunct
	}
}

// Tokenize splits s into word runs, whitespace runs and single punctuation runes.
// Concatenating the tokens yields s.
func (d *Differ) Tokenize(s string) []string {
	var tokens []string
	start := 0
	for start < len(s) {
		r, size := utf8.DecodeRuneInString(s[start:])
		c := classify(r)
		end := start + size
		if c != classPunct {
			for end < len(s) {
				next, n := utf8.DecodeRuneInString(s[end:])
				if classify(next) != c {
					break
				}
				end += n
			}
		}
		tokens = append(tokens, s[start:end])
		start = end
	}
	return tokens
}

// Diff returns segments for both strings marking the changed portions.
func (d *Differ) Diff(old, new string) (oldSegs, newSegs []prettify.Segment) {
	switch {
	case old == new && old == "":
		return nil, nil
	case old == new:
		return []prettify.Segment{{Text: old}}, []prettify.Segment{{Text: new}}
	case old == "":
		return nil, []prettify.Segment{{Text: new, Changed: true}}
	case new == "":
		return []prettify.Segment{{Text: old, Changed: true}}, nil
	}

	a, b := d.Tokenize(old), d.Tokenize(new)
	if similarity(a, b) < minSimilarity {
		return []prettify.Segment{{Text: old, Changed: true}}, []prettify.Segment{{Text: new, Changed: true}}
	}

	keepA, keepB := commonTokens(a, b)
	return segments(a, keepA), segments(b, keepB)
}

// similarity returns 2*common/(len(a)+len(b)) using multiset intersection.
func similarity(a, b []string) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	seen := make(map[string]int, len(a))
	for _, t := range a {
		seen[t]++
	}
	common := 0
	for _, t := range b {
		if seen[t] > 0 {
			seen[t]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}

// commonTokens marks the tokens of a and b that belong to their longest
// common subsequence. Shared prefix and suffix are taken before the table is built.
func commonTokens(a, b []string) (keepA, keepB []bool) {
	keepA, keepB = make([]bool, len(a)), make([]bool, len(b))

	pre := 0
	for pre < len(a) && pre < len(b) && a[pre] == b[pre] {
		keepA[pre], keepB[pre] = true, true
		pre++
	}
	suf := 0
	for suf < len(a)-pre && suf < len(b)-pre && a[len(a)-1-suf] == b[len(b)-1-suf] {
		keepA[len(a)-1-suf], keepB[len(b)-1-suf] = true, true
		suf++
	}

	ma, mb := a[pre:len(a)-suf], b[pre:len(b)-suf]
	rows, cols := len(ma)+1, len(mb)+1
	lcs := make([]int, rows*cols)
	for i := len(ma) - 1; i >= 0; i-- {
		for j := len(mb) - 1; j >= 0; j-- {
			if ma[i] == mb[j] {
				lcs[i*cols+j] = lcs[(i+1)*cols+j+1] + 1
			} else {
				lcs[i*cols+j] = max(lcs[(i+1)*cols+j], lcs[i*cols+j+1])
			}
		}
	}
	for i, j := 0, 0; i < len(ma) && j < len(mb); {
		switch {
		case ma[i] == mb[j]:
			keepA[pre+i], keepB[pre+j] = true, true
			i++
			j++
		case lcs[(i+1)*cols+j] >= lcs[i*cols+j+1]:
			i++
		default:
			j++
		}
	}
	return keepA, keepB
}

// segments merges adjacent tokens with the same change status.
func segments(tokens []string, keep []bool) []prettify.Segment {
	var segs []prettify.Segment
	var sb strings.Builder
	for i, t := range tokens {
		changed := !keep[i]
		if i > 0 && changed != !keep[i-1] {
			segs = append(segs, prettify.Segment{Text: sb.String(), Changed: !keep[i-1]})
			sb.Reset()
		}
		sb.WriteString(t)
	}
	if len(tokens) > 0 {
		segs = append(segs, prettify.Segment{Text: sb.String(), Changed: !keep[len(tokens)-1]})
	}
	return segs
}
