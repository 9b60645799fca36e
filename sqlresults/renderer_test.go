package sqlresults_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/sqlresults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() prettify.RendererConfig {
	var theme prettify.ThemeColors
	for i := range theme.Palette {
		theme.Palette[i] = prettify.RGB(uint8(i*10), 0, 0)
	}
	return prettify.RendererConfig{Width: 80, Theme: theme}
}

func render(t *testing.T, lines ...string) prettify.RenderedContent {
	t.Helper()
	block := prettify.NewContentBlock(strings.Join(lines, "\n"), "")
	out, err := sqlresults.NewRenderer(sqlresults.DefaultOptions()).Render(context.Background(), block, testConfig())
	require.NoError(t, err)
	require.Len(t, out.LineMapping, len(out.Lines))
	return out
}

func texts(c prettify.RenderedContent) []string {
	out := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		out[i] = l.Text()
	}
	return out
}

func sources(c prettify.RenderedContent) []int {
	out := make([]int, len(c.LineMapping))
	for i, m := range c.LineMapping {
		out[i] = m.SourceLine
	}
	return out
}

var mysqlOutput = []string{
	"+----+-------+",
	"| id | name  |",
	"+----+-------+",
	"|  1 | alice |",
	"| 22 | NULL  |",
	"+----+-------+",
	"2 rows in set (0.00 sec)",
}

var psqlOutput = []string{
	" id | name",
	"----+-------",
	"  1 | alice",
	" 22 | bob",
	"(2 rows)",
}

func TestDetectLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  sqlresults.Layout
	}{
		{"mysql", mysqlOutput, sqlresults.MySQL},
		{"psql", psqlOutput, sqlresults.Psql},
		{"single column psql", []string{" count", "-------", "     5"}, sqlresults.Psql},
		{"plain text", []string{"hello", "world"}, sqlresults.None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sqlresults.DetectLayout(tt.lines))
		})
	}
}

func TestRenderer_MySQL(t *testing.T) {
	t.Parallel()

	out := render(t, mysqlOutput...)

	assert.Equal(t, []string{
		"┌────┬───────┐",
		"│ id │ name  │",
		"├────┼───────┤",
		"│  1 │ alice │",
		"│ 22 │ NULL  │",
		"└────┴───────┘",
		"2 rows in set (0.00 sec)",
	}, texts(out))
	assert.Equal(t, []int{1, 1, 1, 3, 4, 4, 6}, sources(out))
	assert.Equal(t, "SQL", out.Badge)
}

func TestRenderer_Psql(t *testing.T) {
	t.Parallel()

	out := render(t, psqlOutput...)

	assert.Equal(t, []string{
		"┌────┬───────┐",
		"│ id │ name  │",
		"├────┼───────┤",
		"│  1 │ alice │",
		"│ 22 │ bob   │",
		"└────┴───────┘",
		"(2 rows)",
	}, texts(out))
	assert.Equal(t, []int{0, 0, 0, 2, 3, 3, 4}, sources(out))
}

func TestRenderer_Footer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		footer string
		source int
	}{
		{"synthesized when missing", []string{" a", "---", " x", " y"}, "(2 rows)", prettify.NoSource},
		{"single row", []string{" count", "-------", "     5", "(1 row)"}, "(1 row)", 3},
		{"empty result", []string{" a | b", "---+---", "(0 rows)"}, "(0 rows)", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := render(t, tt.lines...)
			last := len(out.Lines) - 1
			assert.Equal(t, tt.footer, out.Lines[last].Text())
			assert.Equal(t, tt.source, out.SourceLineFor(last))
			seg := out.Lines[last].Segments[0]
			assert.True(t, seg.Italic)
			assert.Equal(t, testConfig().Theme.DimColor(), *seg.Fg)
		})
	}
}

func TestRenderer_NullStyled(t *testing.T) {
	t.Parallel()

	out := render(t, mysqlOutput...)

	var null *prettify.StyledSegment
	for i, s := range out.Lines[4].Segments {
		if s.Text == "NULL" {
			null = &out.Lines[4].Segments[i]
		}
	}
	require.NotNil(t, null)
	assert.True(t, null.Italic)
	assert.Equal(t, testConfig().Theme.DimColor(), *null.Fg)
}

func TestRenderer_Unparseable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
	}{
		{"no separators", []string{"id | name", "1 | a"}},
		{"mysql border without rows", []string{"+---+", "+---+"}},
		{"separator without header", []string{"----", "(0 rows)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			block := prettify.NewContentBlock(strings.Join(tt.lines, "\n"), "")
			_, err := sqlresults.NewRenderer(sqlresults.DefaultOptions()).Render(context.Background(), block, testConfig())
			require.ErrorIs(t, err, prettify.ErrRenderFailed)
			assert.ErrorContains(t, err, "could not parse SQL result set")
		})
	}
}
