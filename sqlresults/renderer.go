// Package sqlresults re-renders psql and mysql result sets as clean tables.
package sqlresults

import (
	"context"
	"regexp"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/table"
)

var _ prettify.Renderer = (*Renderer)(nil)

var (
	mysqlBorderRE   = regexp.MustCompile(`^\+[-+]+\+$`)
	psqlSeparatorRE = regexp.MustCompile(`^[-+]+$`)
	rowCountRE      = regexp.MustCompile(`^\(?\d+ rows?\)?`)
	pipeRowRE       = regexp.MustCompile(`^\|.*\|$`)
)

// Options control SQL result rendering.
type Options struct {
	TableStyle table.Style `toml:"table_style"`
}

// DefaultOptions returns the default SQL result options.
func DefaultOptions() Options {
	return Options{TableStyle: table.StyleUnicode}
}

// Renderer renders SQL result sets. Output with no recognizable header is a
// RenderFailed error.
type Renderer struct {
	opts Options
}

// NewRenderer creates a SQL results renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "sql_results" }
func (r *Renderer) DisplayName() string { return "SQL Results" }
func (r *Renderer) Badge() string       { return "SQL" }

// Layout is the client style of a result set.
type Layout int

// Layouts.
const (
	None  Layout = iota
	MySQL        // +---+ borders around | cell | rows
	Psql         // cell | cell rows under a ---+--- separator
)

// DetectLayout returns MySQL when any line is a +---+ border, Psql when any
// line is a ---+--- separator, and None otherwise.
func DetectLayout(lines []string) Layout {
	for _, l := range lines {
		if mysqlBorderRE.MatchString(strings.TrimSpace(l)) {
			return MySQL
		}
	}
	for _, l := range lines {
		if psqlSeparatorRE.MatchString(strings.TrimSpace(l)) {
			return Psql
		}
	}
	return None
}

type row struct {
	cells []string
	line  int
}

// result is a parsed result set. count is the source line of the row count
// footer, or NoSource.
type result struct {
	header row
	rows   []row
	count  int
}

func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(strings.TrimSuffix(line, "|"), "|")
	cells := strings.Split(line, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func parse(lines []string) (result, bool) {
	res := result{header: row{line: prettify.NoSource}, count: prettify.NoSource}
	switch DetectLayout(lines) {
	case MySQL:
		inBody := false
		for i, l := range lines {
			t := strings.TrimSpace(l)
			switch {
			case mysqlBorderRE.MatchString(t):
				inBody = res.header.cells != nil
			case rowCountRE.MatchString(t):
				res.count = i
			case pipeRowRE.MatchString(t):
				if res.header.cells == nil {
					res.header = row{cells: splitCells(t), line: i}
				} else if inBody {
					res.rows = append(res.rows, row{cells: splitCells(t), line: i})
				}
			}
		}
	case Psql:
		separated := false
		for i, l := range lines {
			t := strings.TrimSpace(l)
			switch {
			case t == "":
			case rowCountRE.MatchString(t):
				res.count = i
			case psqlSeparatorRE.MatchString(t):
				separated = true
			case !separated:
				// The last line above the separator is the header. A single
				// column result has no pipes at all.
				res.header = row{cells: splitCells(t), line: i}
			default:
				res.rows = append(res.rows, row{cells: splitCells(t), line: i})
			}
		}
		if !separated {
			return res, false
		}
	}
	return res, res.header.cells != nil
}

// Render implements prettify.Renderer.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	res, ok := parse(block.Lines)
	if !ok {
		return prettify.RenderedContent{}, prettify.Errorf(prettify.RenderFailed, "sql_results", "could not parse SQL result set")
	}

	values := make([][]string, len(res.rows))
	for i, rw := range res.rows {
		values[i] = rw.cells
	}
	t := table.Table{Align: table.InferAlign(values)}
	for _, h := range res.header.cells {
		t.Header = append(t.Header, table.Cell{{Text: h, Fg: cfg.Theme.KeyColor().Ptr()}})
	}
	for _, vs := range values {
		cells := make([]table.Cell, len(vs))
		for i, v := range vs {
			cells[i] = table.ValueCell(v, cfg.Theme)
		}
		t.Rows = append(t.Rows, cells)
	}

	last := res.header.line
	if n := len(res.rows); n > 0 {
		last = res.rows[n-1].line
	}
	lines, rows := table.Render(t, r.opts.TableStyle, cfg.Theme, cfg.Width)
	var b prettify.Builder
	for i, line := range lines {
		source := res.header.line
		switch n := rows[i]; {
		case n == table.BorderRow && i > 0:
			source = last
		case n > 0:
			source = res.rows[n-1].line
		}
		b.Push(line, source)
	}

	footer := prettify.StyledSegment{Text: table.RowCount(len(res.rows)), Fg: cfg.Theme.DimColor().Ptr(), Italic: true}
	if res.count != prettify.NoSource {
		footer.Text = strings.TrimSpace(block.Lines[res.count])
	}
	b.PushSegments(res.count, footer)
	return b.Content(r.Badge()), nil
}
