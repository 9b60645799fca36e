package diff_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/diff"
	"github.com/fwojciec/prettify/gitdiff"
	"github.com/fwojciec/prettify/mock"
	"github.com/fwojciec/prettify/worddiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `diff --git a/main.go b/main.go
index 1234567..abcdefg 100644
--- a/main.go
+++ b/main.go
@@ -1,4 +1,4 @@ package main
 package main
 func main() {
-	println("hello")
+	println("hello world")
 }`

func testConfig(width int) prettify.RendererConfig {
	var theme prettify.ThemeColors
	for i := range theme.Palette {
		theme.Palette[i] = prettify.RGB(uint8(i*10), 100, 100)
	}
	theme.Bg = prettify.RGB(0, 0, 0)
	return prettify.RendererConfig{Width: width, Theme: theme}
}

func newRenderer(opts diff.Options) *diff.Renderer {
	return diff.NewRenderer(opts, gitdiff.NewParser(), diff.WithWordDiffer(worddiff.NewDiffer()))
}

func render(t *testing.T, r *diff.Renderer, width int, text string) prettify.RenderedContent {
	t.Helper()
	out, err := r.Render(context.Background(), prettify.NewContentBlock(text, "git diff"), testConfig(width))
	require.NoError(t, err)
	require.Len(t, out.LineMapping, len(out.Lines))
	return out
}

func texts(c prettify.RenderedContent) []string {
	out := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		out[i] = strings.TrimRight(l.Text(), " ")
	}
	return out
}

func TestRenderer_Inline(t *testing.T) {
	t.Parallel()

	out := render(t, newRenderer(diff.DefaultOptions()), 60, sample)

	got := texts(out)
	require.Len(t, got, 7)
	assert.True(t, strings.HasPrefix(got[0], "── main.go "))
	assert.True(t, strings.HasSuffix(got[0], " +1 -1 ──"))
	assert.Equal(t, "@@ -1,4 +1,4 @@ package main", got[1])
	assert.Equal(t, "   1    1  package main", got[2])
	assert.Equal(t, `   3      -	println("hello")`, got[4])
	assert.Equal(t, `        3 +	println("hello world")`, got[5])
	assert.Equal(t, "DIFF", out.Badge)

	// Banner, hunk header and each hunk line point at their raw lines.
	assert.Equal(t, []int{0, 4, 5, 6, 7, 8, 9}, sources(out))
}

func sources(c prettify.RenderedContent) []int {
	out := make([]int, len(c.LineMapping))
	for i, m := range c.LineMapping {
		out[i] = m.SourceLine
	}
	return out
}

func TestRenderer_WordDiffHighlightsChangedWords(t *testing.T) {
	t.Parallel()

	out := render(t, newRenderer(diff.DefaultOptions()), 60, sample)

	var changed []string
	for _, seg := range out.Lines[5].Segments {
		if seg.Bold {
			changed = append(changed, seg.Text)
		}
	}
	assert.Contains(t, strings.Join(changed, ""), "world")
	assert.NotContains(t, strings.Join(changed, ""), "println")
}

func TestRenderer_WordDiffDisabled(t *testing.T) {
	t.Parallel()

	opts := diff.DefaultOptions()
	opts.WordDiff = false

	out := render(t, newRenderer(opts), 60, sample)

	for _, seg := range out.Lines[5].Segments {
		assert.False(t, seg.Bold)
	}
}

func TestRenderer_SideBySide(t *testing.T) {
	t.Parallel()

	opts := diff.DefaultOptions()
	opts.ShowLineNumbers = false
	r := newRenderer(opts)

	out := render(t, r, 200, sample)
	got := texts(out)
	require.Len(t, got, 6)

	row := got[4]
	left, right, ok := strings.Cut(row, " │ ")
	require.True(t, ok)
	assert.Equal(t, `-	println("hello")`, strings.TrimRight(left, " "))
	assert.Equal(t, `+	println("hello world")`, right)
	assert.Equal(t, 7, out.SourceLineFor(4))
}

func TestRenderer_LayoutChoice(t *testing.T) {
	t.Parallel()

	opts := diff.DefaultOptions()
	assert.False(t, newRenderer(opts).SideBySide(159))
	assert.True(t, newRenderer(opts).SideBySide(160))

	opts.Style = diff.LayoutInline
	assert.False(t, newRenderer(opts).SideBySide(500))

	opts.Style = diff.LayoutSideBySide
	assert.True(t, newRenderer(opts).SideBySide(20))
}

func TestRenderer_PlainUnifiedDiff(t *testing.T) {
	t.Parallel()

	text := "--- old.txt\n+++ new.txt\n@@ -1 +1 @@\n-a\n+b"

	out := render(t, newRenderer(diff.DefaultOptions()), 40, text)

	got := texts(out)
	require.Len(t, got, 4)
	assert.Equal(t, "@@ -1,1 +1,1 @@", got[1])
	assert.Equal(t, []int{0, 2, 3, 4}, sources(out))
}

func TestRenderer_NoHeadersIsError(t *testing.T) {
	t.Parallel()

	_, err := newRenderer(diff.DefaultOptions()).Render(context.Background(),
		prettify.NewContentBlock("@@ -1 +1 @@\n-a\n+b", ""), testConfig(80))

	require.Error(t, err)
	assert.ErrorIs(t, err, prettify.ErrRenderFailed)
}

func TestRenderer_SyntaxTokens(t *testing.T) {
	t.Parallel()

	keyword := prettify.RGB(1, 2, 3)
	tok := &mock.Tokenizer{
		TokenizeLinesFn: func(language, source string, _ prettify.ThemeColors) [][]prettify.Token {
			assert.Equal(t, "go", language)
			return [][]prettify.Token{{{Text: source, Style: prettify.Style{Fg: &keyword}}}}
		},
	}
	lang := &mock.LanguageDetector{
		DetectLanguageFn: func(tag, _ string) string {
			assert.Equal(t, "main.go", tag)
			return "go"
		},
	}
	opts := diff.DefaultOptions()
	opts.WordDiff = false
	r := diff.NewRenderer(opts, gitdiff.NewParser(), diff.WithSyntax(tok, lang))

	out := render(t, r, 60, sample)

	segs := out.Lines[2].Segments
	last := segs[len(segs)-1]
	assert.Equal(t, "package main", last.Text)
	assert.Equal(t, keyword, *last.Fg)
}
