// Package table lays out pipe tables with box-drawing borders and
// per-column alignment.
package table

import (
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/mattn/go-runewidth"
)

// Align is a column alignment.
type Align int

// Alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Style names a border set.
type Style string

// Border styles.
const (
	StyleUnicode Style = "unicode"
	StyleASCII   Style = "ascii"
	StyleRounded Style = "rounded"
)

type border struct {
	topLeft, topMid, topRight string
	midLeft, midMid, midRight string
	botLeft, botMid, botRight string
	horizontal, vertical      string
}

func borderFor(s Style) border {
	switch s {
	case StyleASCII:
		return border{"+", "+", "+", "+", "+", "+", "+", "+", "+", "-", "|"}
	case StyleRounded:
		return border{"╭", "┬", "╮", "├", "┼", "┤", "╰", "┴", "╯", "─", "│"}
	}
	return border{"┌", "┬", "┐", "├", "┼", "┤", "└", "┴", "┘", "─", "│"}
}

// Cell is the styled content of one table cell.
type Cell []prettify.StyledSegment

// Width returns the display width of the cell.
func (c Cell) Width() int {
	w := 0
	for _, s := range c {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// Table is a header row, data rows and column alignments.
type Table struct {
	Header []Cell
	Rows   [][]Cell
	Align  []Align
}

// Row indexes returned by Render for lines that are not table rows.
const (
	BorderRow    = -1 // Top and bottom borders
	SeparatorRow = -2 // The rule under the header
)

// Render lays the table out within maxWidth columns (0 for unlimited).
// rows[i] says what line i shows: 0 the header, n the n-th data row, or
// BorderRow / SeparatorRow.
func Render(t Table, style Style, theme prettify.ThemeColors, maxWidth int) (lines []prettify.StyledLine, rows []int) {
	cols := len(t.Header)
	for _, r := range t.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return nil, nil
	}
	widths := columnWidths(t, cols, maxWidth)
	b := borderFor(style)
	dim := theme.DimColor().Ptr()

	rule := func(left, mid, right string) prettify.StyledLine {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat(b.horizontal, w+2)
		}
		return prettify.NewLine(prettify.StyledSegment{Text: left + strings.Join(parts, mid) + right, Fg: dim})
	}
	row := func(cells []Cell, header bool) prettify.StyledLine {
		segs := []prettify.StyledSegment{{Text: b.vertical, Fg: dim}}
		for i, w := range widths {
			var c Cell
			if i < len(cells) {
				c = cells[i]
			}
			align := AlignLeft
			if i < len(t.Align) {
				align = t.Align[i]
			}
			if header {
				c = bold(c)
			}
			segs = append(segs, prettify.StyledSegment{Text: " "})
			segs = append(segs, pad(truncate(c, w), w, align)...)
			segs = append(segs, prettify.StyledSegment{Text: " "}, prettify.StyledSegment{Text: b.vertical, Fg: dim})
		}
		return prettify.NewLine(segs...)
	}

	lines = append(lines, rule(b.topLeft, b.topMid, b.topRight))
	rows = append(rows, BorderRow)
	lines = append(lines, row(t.Header, true))
	rows = append(rows, 0)
	lines = append(lines, rule(b.midLeft, b.midMid, b.midRight))
	rows = append(rows, SeparatorRow)
	for i, r := range t.Rows {
		lines = append(lines, row(r, false))
		rows = append(rows, i+1)
	}
	lines = append(lines, rule(b.botLeft, b.botMid, b.botRight))
	rows = append(rows, BorderRow)
	return lines, rows
}

// columnWidths sizes each column to its widest cell, then narrows the widest
// columns until the table fits maxWidth. Columns never drop below 3.
func columnWidths(t Table, cols, maxWidth int) []int {
	widths := make([]int, cols)
	measure := func(cells []Cell) {
		for i, c := range cells {
			widths[i] = max(widths[i], c.Width())
		}
	}
	measure(t.Header)
	for _, r := range t.Rows {
		measure(r)
	}
	for i := range widths {
		widths[i] = max(widths[i], 1)
	}
	if maxWidth <= 0 {
		return widths
	}
	// Each column costs its width plus two spaces and a border.
	total := func() int {
		n := 1
		for _, w := range widths {
			n += w + 3
		}
		return n
	}
	for total() > maxWidth {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			break
		}
		widths[widest]--
	}
	return widths
}

func bold(c Cell) Cell {
	out := make(Cell, len(c))
	for i, s := range c {
		s.Bold = true
		out[i] = s
	}
	return out
}

// truncate cuts c to width columns, marking the cut with "…".
func truncate(c Cell, width int) Cell {
	if c.Width() <= width {
		return c
	}
	budget := width - 1
	var out Cell
	used := 0
	for _, s := range c {
		w := runewidth.StringWidth(s.Text)
		if used+w > budget {
			tail := s
			tail.Text = "…"
			s.Text = runewidth.Truncate(s.Text, budget-used, "")
			if s.Text != "" {
				out = append(out, s)
			}
			return append(out, tail)
		}
		out = append(out, s)
		used += w
	}
	return out
}

func pad(c Cell, width int, align Align) Cell {
	gap := width - c.Width()
	if gap <= 0 {
		return c
	}
	left := 0
	switch align {
	case AlignRight:
		left = gap
	case AlignCenter:
		left = gap / 2
	}
	out := make(Cell, 0, len(c)+2)
	if left > 0 {
		out = append(out, prettify.StyledSegment{Text: strings.Repeat(" ", left)})
	}
	out = append(out, c...)
	if right := gap - left; right > 0 {
		out = append(out, prettify.StyledSegment{Text: strings.Repeat(" ", right)})
	}
	return out
}
