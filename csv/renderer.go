// Package csv renders comma and tab separated data as aligned tables.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/colorful"
	"github.com/fwojciec/prettify/table"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Options control CSV rendering.
type Options struct {
	TableStyle table.Style `toml:"table_style"`
	StripeRows bool        `toml:"stripe_rows"`
	ShowCount  bool        `toml:"show_row_count"`
}

// DefaultOptions returns the default CSV options.
func DefaultOptions() Options {
	return Options{
		TableStyle: table.StyleUnicode,
		StripeRows: true,
		ShowCount:  true,
	}
}

// Renderer renders CSV and TSV. Input that does not parse is a RenderFailed error.
type Renderer struct {
	opts Options
}

// NewRenderer creates a CSV renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "csv" }
func (r *Renderer) DisplayName() string { return "CSV/TSV" }
func (r *Renderer) Badge() string       { return "CSV" }

// Delimiter picks tab when tabs outnumber commas in the first five
// non-blank lines, and comma otherwise.
func Delimiter(lines []string) rune {
	tabs, commas, seen := 0, 0, 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		tabs += strings.Count(l, "\t")
		commas += strings.Count(l, ",")
		if seen++; seen == 5 {
			break
		}
	}
	if tabs > commas {
		return '\t'
	}
	return ','
}

type record struct {
	fields []string
	line   int
}

func parse(lines []string) ([]record, error) {
	rd := stdcsv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	rd.Comma = Delimiter(lines)
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true
	rd.TrimLeadingSpace = rd.Comma != '\t'
	var out []record
	for {
		fields, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := rd.FieldPos(0)
		out = append(out, record{fields: fields, line: line - 1})
	}
}

// Render implements prettify.Renderer.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	records, err := parse(block.Lines)
	if err != nil {
		return prettify.RenderedContent{}, &prettify.RenderError{Kind: prettify.RenderFailed, Format: "csv", Err: err}
	}
	if len(records) == 0 {
		return prettify.RenderedContent{}, prettify.Errorf(prettify.RenderFailed, "csv", "no rows")
	}

	header, data := records[0], records[1:]
	values := make([][]string, len(data))
	for i, rec := range data {
		values[i] = rec.fields
	}
	t := table.Table{Align: table.InferAlign(values)}
	for _, h := range header.fields {
		t.Header = append(t.Header, table.Cell{{Text: strings.TrimSpace(h), Fg: cfg.Theme.KeyColor().Ptr()}})
	}
	for _, row := range values {
		cells := make([]table.Cell, len(row))
		for i, v := range row {
			cells[i] = table.ValueCell(strings.TrimSpace(v), cfg.Theme)
		}
		t.Rows = append(t.Rows, cells)
	}

	stripe := colorful.Blend(cfg.Theme.Bg, cfg.Theme.Fg, 0.06)
	lines, rows := table.Render(t, r.opts.TableStyle, cfg.Theme, cfg.Width)
	var b prettify.Builder
	for i, line := range lines {
		source := header.line
		switch n := rows[i]; {
		case n == table.BorderRow && i > 0:
			source = records[len(records)-1].line
		case n > 0:
			source = data[n-1].line
			if r.opts.StripeRows && n%2 == 0 {
				line = striped(line, stripe)
			}
		}
		b.Push(line, source)
	}
	if r.opts.ShowCount {
		b.PushSegments(prettify.NoSource, tableFooter(len(data), cfg.Theme))
	}
	return b.Content(r.Badge()), nil
}

func tableFooter(n int, theme prettify.ThemeColors) prettify.StyledSegment {
	return prettify.StyledSegment{Text: table.RowCount(n), Fg: theme.DimColor().Ptr(), Italic: true}
}

// striped paints the row background, leaving the border characters alone.
func striped(line prettify.StyledLine, bg prettify.Color) prettify.StyledLine {
	segs := make([]prettify.StyledSegment, len(line.Segments))
	for i, s := range line.Segments {
		if i > 0 && i < len(line.Segments)-1 {
			s.Bg = bg.Ptr()
		}
		segs[i] = s
	}
	return prettify.StyledLine{Segments: segs}
}
