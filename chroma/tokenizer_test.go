package chroma_test

import (
	"strings"
	"testing"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/chroma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTheme() prettify.ThemeColors {
	var theme prettify.ThemeColors
	for i := range theme.Palette {
		theme.Palette[i] = prettify.RGB(uint8(i*10), 0, 0)
	}
	return theme
}

func TestTokenizer_TokenizeLines(t *testing.T) {
	t.Parallel()

	t.Run("tokenizes Go code", func(t *testing.T) {
		t.Parallel()

		lines := chroma.NewTokenizer().TokenizeLines("go", "package main", testTheme())

		require.Len(t, lines, 1)
		var text strings.Builder
		var foundKeyword bool
		for _, tok := range lines[0] {
			text.WriteString(tok.Text)
			if tok.Text == "package" {
				foundKeyword = true
				assert.NotNil(t, tok.Style.Fg, "keyword should have foreground color")
			}
		}
		assert.Equal(t, "package main", text.String())
		assert.True(t, foundKeyword, "should find 'package' keyword token")
	})

	t.Run("returns nil for unsupported language", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, chroma.NewTokenizer().TokenizeLines("nonexistent-language-xyz", "some code", testTheme()))
	})

	t.Run("handles empty source", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, chroma.NewTokenizer().TokenizeLines("go", "", testTheme()))
	})

	t.Run("splits multi-line comments by line", func(t *testing.T) {
		t.Parallel()

		lines := chroma.NewTokenizer().TokenizeLines("go", "/* one\ntwo */\nx := 1", testTheme())

		require.Len(t, lines, 3)
		assert.Equal(t, "two */", lines[1][0].Text)
		assert.True(t, lines[1][0].Style.Italic)
	})
}

func TestStyleFromTheme(t *testing.T) {
	t.Parallel()

	theme := testTheme()
	style := chroma.StyleFromTheme(theme)

	assert.Equal(t, prettify.Style{Fg: theme.Palette[5].Ptr(), Bold: true}, style(chromalib.Keyword))
	assert.Equal(t, prettify.Style{Fg: theme.Palette[3].Ptr(), Bold: true}, style(chromalib.KeywordType))
	assert.Equal(t, prettify.Style{Fg: theme.StringColor().Ptr()}, style(chromalib.StringDouble))
	assert.Equal(t, prettify.Style{Fg: theme.NumberColor().Ptr()}, style(chromalib.NumberInteger))
	assert.True(t, style(chromalib.CommentSingle).Italic)
	assert.Equal(t, prettify.Style{}, style(chromalib.Text))
}
