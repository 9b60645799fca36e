package tomltree_test

import (
	"context"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/tomltree"
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

func render(t *testing.T, opts tomltree.Options, lines ...string) prettify.RenderedContent {
	t.Helper()
	block := prettify.ContentBlock{Lines: lines}
	out, err := tomltree.NewRenderer(opts).Render(context.Background(), block, testConfig())
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

func TestRenderer_AlignsEqualsPerSection(t *testing.T) {
	t.Parallel()

	out := render(t, tomltree.DefaultOptions(),
		"title = \"demo\"",
		"[server]",
		"host = \"localhost\"",
		"port = 8080",
		"max_conns = 10",
		"",
		"[db]",
		"url = \"postgres://\"",
	)

	assert.Equal(t, []string{
		`title = "demo"`,
		"[server]",
		`│ host      = "localhost"`,
		"│ port      = 8080",
		"│ max_conns = 10",
		"",
		"[db]",
		`│ url = "postgres://"`,
	}, texts(out))
	for i, m := range out.LineMapping {
		assert.Equal(t, i, m.SourceLine)
	}
	assert.Equal(t, "TOML", out.Badge)
}

func TestRenderer_NoAlignment(t *testing.T) {
	t.Parallel()

	opts := tomltree.DefaultOptions()
	opts.AlignEquals = false

	out := render(t, opts, "a = 1", "long_key = 2")

	assert.Equal(t, []string{"a = 1", "long_key = 2"}, texts(out))
}

func TestRenderer_CollapsesDeepSections(t *testing.T) {
	t.Parallel()

	opts := tomltree.DefaultOptions()
	opts.MaxDepthExpanded = 1

	out := render(t, opts,
		"[a]",
		"x = 1",
		"[a.b]",
		"y = 2",
		"z = 3",
		"[a.b.c]",
		"w = 4",
		"[d]",
		"v = 5",
	)

	assert.Equal(t, []string{
		"[a]",
		"│ x = 1",
		"│ [a.b] {3 keys}",
		"[d]",
		"│ v = 5",
	}, texts(out))
	assert.Equal(t, 2, out.LineMapping[2].SourceLine)
	assert.Equal(t, 7, out.LineMapping[3].SourceLine)
}

func TestRenderer_ValueColors(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	out := render(t, tomltree.DefaultOptions(),
		"a = true",
		"b = 'lit'",
		"c = [1, 2]",
		"d = 1979-05-27T07:32:00Z",
		"e = 0xDEAD_BEEF",
		"f = bare",
	)

	valueFg := func(i int) prettify.Color {
		segs := out.Lines[i].Segments
		return *segs[len(segs)-1].Fg
	}
	assert.Equal(t, cfg.Theme.Palette[5], valueFg(0))
	assert.Equal(t, cfg.Theme.StringColor(), valueFg(1))
	assert.Equal(t, cfg.Theme.Palette[3], valueFg(2))
	assert.Equal(t, cfg.Theme.AccentColor(), valueFg(3))
	assert.Equal(t, cfg.Theme.NumberColor(), valueFg(4))
	assert.Equal(t, cfg.Theme.StringColor(), valueFg(5))
}

func TestRenderer_MalformedLinesRenderPlain(t *testing.T) {
	t.Parallel()

	out := render(t, tomltree.DefaultOptions(), "[unterminated", "= nothing", "# note")

	assert.Equal(t, []string{"[unterminated", "= nothing", "# note"}, texts(out))
	assert.True(t, out.Lines[2].Segments[1].Italic)
}

func TestRenderer_MultiLineValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "array items nest under the key",
			lines: []string{"[server]", "ports = [", "  8080,", "  8081,", "]", "host = \"x\""},
			want:  []string{"[server]", "│ ports = [", "│ │ 8080,", "│ │ 8081,", "│ ]", "│ host  = \"x\""},
		},
		{
			name:  "nested array rows are not section headers",
			lines: []string{"matrix = [", "    [1, 2],", "    [3, 4],", "]", "[next]", "a = 1"},
			want:  []string{"matrix = [", "│ [1, 2],", "│ [3, 4],", "]", "[next]", "│ a = 1"},
		},
		{
			name:  "brackets inside strings are ignored",
			lines: []string{"names = [", "  \"a]\",", "  \"[b\",", "]", "x = 1"},
			want:  []string{"names = [", "│ \"a]\",", "│ \"[b\",", "]", "x     = 1"},
		},
		{
			name:  "multi-line string keeps its text",
			lines: []string{"doc = \"\"\"", "  indented line", "[not a section]", "end\"\"\"", "[real]"},
			want:  []string{"doc = \"\"\"", "  indented line", "[not a section]", "end\"\"\"", "[real]"},
		},
		{
			name:  "literal string",
			lines: []string{"[a]", "re = '''", "  ^x = y$", "'''", "b = 2"},
			want:  []string{"[a]", "│ re = '''", "│   ^x = y$", "│ '''", "│ b  = 2"},
		},
		{
			name:  "single line triple quotes do not open a string",
			lines: []string{"a = \"\"\"x\"\"\"", "[s]"},
			want:  []string{"a = \"\"\"x\"\"\"", "[s]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := render(t, tomltree.DefaultOptions(), tt.lines...)
			assert.Equal(t, tt.want, texts(out))
			for i, m := range out.LineMapping {
				assert.Equal(t, i, m.SourceLine)
			}
		})
	}
}

func TestRenderer_MultiLineStringColor(t *testing.T) {
	t.Parallel()

	out := render(t, tomltree.DefaultOptions(), "doc = \"\"\"", "body", "\"\"\"")

	body := out.Lines[1].Segments[1]
	assert.Equal(t, "body", body.Text)
	require.NotNil(t, body.Fg)
	assert.Equal(t, testConfig().Theme.StringColor(), *body.Fg)
}
