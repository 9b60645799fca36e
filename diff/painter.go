package diff

import (
	"fmt"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/mattn/go-runewidth"
)

// lineStyle is the look of one kind of hunk line. Nil colors mean the
// terminal default.
type lineStyle struct {
	fg, bg    *prettify.Color
	highlight *prettify.Color // Background of changed words
	marker    string
}

type painter struct {
	b         prettify.Builder
	opts      Options
	theme     prettify.ThemeColors
	width     int
	gutter    int // Width of one line number column, 0 when hidden
	tokenizer prettify.Tokenizer
	language  string

	added, deleted, context lineStyle
}

func (p *painter) style(t prettify.LineType) lineStyle {
	switch t {
	case prettify.LineAdded:
		return p.added
	case prettify.LineDeleted:
		return p.deleted
	}
	return p.context
}

func (p *painter) note(text string) prettify.StyledSegment {
	return prettify.StyledSegment{Text: text, Fg: p.theme.DimColor().Ptr(), Italic: true}
}

// banner renders "── path ───── +N -M ──" across the terminal width.
func (p *painter) banner(file prettify.FileDiff, source int) {
	added, deleted := file.Stats()
	name := filePath(file)
	switch file.Operation {
	case prettify.FileRenamed:
		name = strings.TrimPrefix(file.OldPath, "a/") + " → " + name
	case prettify.FileAdded:
		name += " (new)"
	case prettify.FileDeleted:
		name += " (deleted)"
	}
	middle := "── " + name + " "
	end := fmt.Sprintf(" +%d -%d ──", added, deleted)
	fill := max(p.width-runewidth.StringWidth(middle)-runewidth.StringWidth(end), 3)
	p.b.PushSegments(source,
		prettify.StyledSegment{Text: middle, Fg: p.theme.Palette[15].Ptr(), Bold: true},
		prettify.StyledSegment{Text: strings.Repeat("─", fill), Fg: p.theme.DimColor().Ptr()},
		prettify.StyledSegment{Text: " "},
		prettify.StyledSegment{Text: fmt.Sprintf("+%d", added), Fg: p.added.fg},
		prettify.StyledSegment{Text: " "},
		prettify.StyledSegment{Text: fmt.Sprintf("-%d", deleted), Fg: p.deleted.fg},
		prettify.StyledSegment{Text: " ──", Fg: p.theme.DimColor().Ptr()},
	)
}

func (p *painter) hunkHeader(h prettify.Hunk, source int) {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	segs := []prettify.StyledSegment{{Text: header, Fg: p.theme.Palette[6].Ptr()}}
	if h.Section != "" {
		segs = append(segs, prettify.StyledSegment{Text: " " + h.Section, Fg: p.theme.DimColor().Ptr()})
	}
	p.b.PushSegments(source, segs...)
}

func (p *painter) lineNum(n int) prettify.StyledSegment {
	text := strings.Repeat(" ", p.gutter)
	if n > 0 {
		text = fmt.Sprintf("%*d", p.gutter, n)
	}
	return prettify.StyledSegment{Text: text, Fg: p.theme.DimColor().Ptr()}
}

// body returns the marker and content segments of a hunk line.
func (p *painter) body(line prettify.Line, words []prettify.Segment) []prettify.StyledSegment {
	st := p.style(line.Type)
	segs := []prettify.StyledSegment{{Text: st.marker, Fg: st.fg, Bg: st.bg}}
	switch {
	case words != nil:
		for _, w := range words {
			seg := prettify.StyledSegment{Text: w.Text, Fg: st.fg, Bg: st.bg}
			if w.Changed {
				seg.Bg, seg.Bold = st.highlight, true
			}
			segs = append(segs, seg)
		}
	case p.tokenizer != nil && p.language != "":
		for _, tok := range p.tokens(line.Content) {
			fg := tok.Style.Fg
			if fg == nil {
				fg = st.fg
			}
			segs = append(segs, prettify.StyledSegment{Text: tok.Text, Fg: fg, Bg: st.bg, Bold: tok.Style.Bold, Italic: tok.Style.Italic})
		}
	default:
		segs = append(segs, prettify.StyledSegment{Text: line.Content, Fg: st.fg, Bg: st.bg})
	}
	return segs
}

func (p *painter) tokens(content string) []prettify.Token {
	lines := p.tokenizer.TokenizeLines(p.language, content, p.theme)
	if len(lines) == 0 {
		return []prettify.Token{{Text: content}}
	}
	return lines[0]
}

// inline renders a hunk one source line per row:
// gutter(old new) marker content, padded so backgrounds span the width.
func (p *painter) inline(h prettify.Hunk, sources []int, words map[int][]prettify.Segment) {
	for i, line := range h.Lines {
		var segs []prettify.StyledSegment
		if p.gutter > 0 {
			segs = append(segs, p.lineNum(line.OldLineNum), prettify.StyledSegment{Text: " "}, p.lineNum(line.NewLineNum), prettify.StyledSegment{Text: " "})
		}
		segs = append(segs, p.body(line, words[i])...)
		if st := p.style(line.Type); st.bg != nil && p.width > 0 {
			if pad := p.width - lineWidth(segs); pad > 0 {
				segs = append(segs, prettify.StyledSegment{Text: strings.Repeat(" ", pad), Bg: st.bg})
			}
		}
		p.b.PushSegments(sources[i], segs...)
	}
}

// sideBySide renders old lines on the left and new lines on the right. Runs
// of deletions are paired row by row with the additions that follow them.
func (p *painter) sideBySide(h prettify.Hunk, sources []int, words map[int][]prettify.Segment) {
	half := max((p.width-3)/2, 10)
	for i := 0; i < len(h.Lines); {
		if h.Lines[i].Type == prettify.LineContext {
			p.row(half, h.Lines, sources, words, i, i)
			i++
			continue
		}
		delStart := i
		for i < len(h.Lines) && h.Lines[i].Type == prettify.LineDeleted {
			i++
		}
		addStart := i
		for i < len(h.Lines) && h.Lines[i].Type == prettify.LineAdded {
			i++
		}
		dels, adds := addStart-delStart, i-addStart
		for j := 0; j < max(dels, adds); j++ {
			left, right := -1, -1
			if j < dels {
				left = delStart + j
			}
			if j < adds {
				right = addStart + j
			}
			p.row(half, h.Lines, sources, words, left, right)
		}
	}
}

// row renders one side-by-side row. A negative index leaves that side blank.
func (p *painter) row(half int, lines []prettify.Line, sources []int, words map[int][]prettify.Segment, left, right int) {
	cell := func(idx int, old bool) []prettify.StyledSegment {
		if idx < 0 {
			return fit(nil, half)
		}
		line := lines[idx]
		var segs []prettify.StyledSegment
		if p.gutter > 0 {
			n := line.NewLineNum
			if old {
				n = line.OldLineNum
			}
			segs = append(segs, p.lineNum(n), prettify.StyledSegment{Text: " "})
		}
		return fit(append(segs, p.body(line, words[idx])...), half)
	}
	source := prettify.NoSource
	switch {
	case left >= 0:
		source = sources[left]
	case right >= 0:
		source = sources[right]
	}
	segs := cell(left, true)
	segs = append(segs, prettify.StyledSegment{Text: " │ ", Fg: p.theme.DimColor().Ptr()})
	segs = append(segs, cell(right, false)...)
	p.b.PushSegments(source, segs...)
}

func lineWidth(segs []prettify.StyledSegment) int {
	w := 0
	for _, s := range segs {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// fit truncates segs to width display columns, ending in "…" when cut, and
// pads the remainder with spaces.
func fit(segs []prettify.StyledSegment, width int) []prettify.StyledSegment {
	out := make([]prettify.StyledSegment, 0, len(segs)+1)
	used := 0
	for _, s := range segs {
		w := runewidth.StringWidth(s.Text)
		if used+w > width {
			s.Text = runewidth.Truncate(s.Text, width-used, "…")
			out = append(out, s)
			used += runewidth.StringWidth(s.Text)
			break
		}
		out = append(out, s)
		used += w
	}
	if used < width {
		out = append(out, prettify.StyledSegment{Text: strings.Repeat(" ", width-used)})
	}
	return out
}
