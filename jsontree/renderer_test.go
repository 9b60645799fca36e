package jsontree_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/jsontree"
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

func render(t *testing.T, opts jsontree.Options, text string) prettify.RenderedContent {
	t.Helper()
	out, err := jsontree.NewRenderer(opts).Render(context.Background(), prettify.NewContentBlock(text, ""), testConfig())
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

func TestRenderer_ArrayTruncation(t *testing.T) {
	t.Parallel()

	opts := jsontree.DefaultOptions()
	opts.MaxArrayDisplay = 3

	out := render(t, opts, `{"items":[1,2,3,4,5,6,7,8,9,10]}`)

	joined := strings.Join(texts(out), "\n")
	assert.Contains(t, joined, "... and 7 more items")
	assert.Contains(t, joined, "│ │ 3,")
	assert.NotContains(t, joined, "│ │ 4")
}

func TestRenderer_Layout(t *testing.T) {
	t.Parallel()

	text := "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}"

	out := render(t, jsontree.DefaultOptions(), text)

	assert.Equal(t, []string{
		"{  // 2 keys",
		`│ "a": 1,`,
		`│ "b": [  // 1 item`,
		"│ │ true",
		"│ ]",
		"}",
	}, texts(out))
	for i, m := range out.LineMapping {
		assert.Equal(t, i, m.SourceLine, "line %d", i)
	}
	assert.Equal(t, "{}", out.Badge)
}

func TestRenderer_CollapsesDeepNodes(t *testing.T) {
	t.Parallel()

	opts := jsontree.DefaultOptions()
	opts.MaxDepthExpanded = 2
	opts.ShowArrayLength = false

	out := render(t, opts, `{"a":{"b":{"c":{"d":1}},"e":[1,2]}}`)

	assert.Equal(t, []string{
		"{",
		`│ "a": {`,
		`│ │ "b": { 1 key },`,
		`│ │ "e": [ 2 items ]`,
		"│ }",
		"}",
	}, texts(out))

	segs := out.Lines[2].Segments
	last := segs[len(segs)-1]
	assert.Equal(t, ",", last.Text, "trailing comma follows the collapsed node")
	assert.True(t, segs[len(segs)-3].Italic)
}

func TestRenderer_KeyOrder(t *testing.T) {
	t.Parallel()

	opts := jsontree.DefaultOptions()
	opts.ShowArrayLength = false

	t.Run("keeps document order", func(t *testing.T) {
		t.Parallel()

		out := render(t, opts, `{"z":1,"a":2}`)

		assert.Equal(t, []string{"{", `│ "z": 1,`, `│ "a": 2`, "}"}, texts(out))
	})

	t.Run("sorts when asked", func(t *testing.T) {
		t.Parallel()

		sorted := opts
		sorted.SortKeys = true

		out := render(t, sorted, `{"z":1,"a":2}`)

		assert.Equal(t, []string{"{", `│ "a": 2,`, `│ "z": 1`, "}"}, texts(out))
	})
}

func TestRenderer_Scalars(t *testing.T) {
	t.Parallel()

	opts := jsontree.DefaultOptions()
	opts.MaxStringLength = 5
	opts.ShowTypes = true

	out := render(t, opts, `{"url":"https://example.com/x","long":"abcdefgh","n":null}`)

	lines := texts(out)
	assert.Contains(t, lines, `│ "long": "abcde..." (string),`)
	assert.Contains(t, lines, `│ "n": null (null)`)

	urlLine := out.Lines[1]
	var link prettify.StyledSegment
	for _, s := range urlLine.Segments {
		if s.Link != "" {
			link = s
		}
	}
	assert.Equal(t, "https://example.com/x", link.Link)
	assert.True(t, link.Underline)
}

func TestRenderer_InvalidJSON(t *testing.T) {
	t.Parallel()

	for _, text := range []string{`{"a":}`, `{"a":1} trailing`, `not json`} {
		_, err := jsontree.NewRenderer(jsontree.DefaultOptions()).Render(context.Background(), prettify.NewContentBlock(text, ""), testConfig())

		assert.ErrorIs(t, err, prettify.ErrRenderFailed, text)
	}
}

func TestRenderer_Idempotent(t *testing.T) {
	t.Parallel()

	text := `{"a":[1,{"b":"c"}],"d":true}`

	first := render(t, jsontree.DefaultOptions(), text)
	second := render(t, jsontree.DefaultOptions(), text)

	assert.Equal(t, first, second)
}
