package prettify_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContentBlock(t *testing.T) {
	t.Parallel()

	t.Run("splits lines and drops trailing newline", func(t *testing.T) {
		t.Parallel()

		b := prettify.NewContentBlock("a\nb\n", "cat file")

		assert.Equal(t, []string{"a", "b"}, b.Lines)
		assert.Equal(t, "cat file", b.PrecedingCommand)
		assert.Equal(t, 1, b.EndRow)
	})

	t.Run("normalizes CRLF", func(t *testing.T) {
		t.Parallel()

		b := prettify.NewContentBlock("a\r\nb", "")

		assert.Equal(t, []string{"a", "b"}, b.Lines)
	})

	t.Run("empty text has no lines", func(t *testing.T) {
		t.Parallel()

		b := prettify.NewContentBlock("", "")

		assert.Empty(t, b.Lines)
	})
}

func TestContentBlock_FirstAndLastLines(t *testing.T) {
	t.Parallel()

	b := prettify.ContentBlock{Lines: []string{"1", "2", "3", "4"}}

	assert.Equal(t, []string{"1", "2"}, b.FirstLines(2))
	assert.Equal(t, []string{"3", "4"}, b.LastLines(2))
	assert.Equal(t, b.Lines, b.FirstLines(10))
	assert.Equal(t, b.Lines, b.LastLines(10))
	assert.Equal(t, "1\n2\n3\n4", b.FullText())
}

func TestFileDiff_Stats(t *testing.T) {
	t.Parallel()

	file := prettify.FileDiff{
		Hunks: []prettify.Hunk{
			{Lines: []prettify.Line{
				{Type: prettify.LineContext},
				{Type: prettify.LineDeleted},
				{Type: prettify.LineAdded},
			}},
			{Lines: []prettify.Line{
				{Type: prettify.LineAdded},
				{Type: prettify.LineDeleted},
				{Type: prettify.LineDeleted},
			}},
		},
	}

	added, deleted := file.Stats()

	assert.Equal(t, 2, added)
	assert.Equal(t, 3, deleted)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	t.Run("keeps mapping in step with lines", func(t *testing.T) {
		t.Parallel()

		var b prettify.Builder
		b.Push(prettify.PlainLine("one"), 0)
		b.PushSegments(prettify.NoSource, prettify.StyledSegment{Text: "synthetic"})
		b.AppendToLast(prettify.StyledSegment{Text: ","})

		c := b.Content("X")

		require.Len(t, c.Lines, 2)
		require.Len(t, c.LineMapping, 2)
		assert.Equal(t, "synthetic,", c.Lines[1].Text())
		assert.Equal(t, 0, c.SourceLineFor(0))
		assert.Equal(t, prettify.NoSource, c.SourceLineFor(1))
		assert.False(t, c.LineMapping[1].HasSource())
		assert.Equal(t, "X", c.Badge)
	})

	t.Run("append shifts graphic rows", func(t *testing.T) {
		t.Parallel()

		var b prettify.Builder
		b.Push(prettify.PlainLine("intro"), 0)
		b.Append(prettify.RenderedContent{
			Lines:       []prettify.StyledLine{prettify.PlainLine("header"), prettify.PlainLine("")},
			LineMapping: []prettify.SourceLineMapping{{RenderedLine: 0, SourceLine: 1}, {RenderedLine: 1, SourceLine: 2}},
			Graphics:    []prettify.InlineGraphic{{Row: 1, HeightCells: 2}},
		})

		c := b.Content("")

		require.Len(t, c.Graphics, 1)
		assert.Equal(t, 2, c.Graphics[0].Row)
		assert.Equal(t, 2, c.LineMapping[2].RenderedLine)
		assert.Equal(t, 2, c.LineMapping[2].SourceLine)
		assert.Equal(t, 1, c.RenderedLineFor(1))
	})
}

func TestRenderedContent_NearestLines(t *testing.T) {
	t.Parallel()

	var b prettify.Builder
	b.Push(prettify.PlainLine("header"), prettify.NoSource)
	b.Push(prettify.PlainLine("a"), 0)
	b.Push(prettify.PlainLine("c"), 2)
	b.Push(prettify.PlainLine("footer"), prettify.NoSource)
	c := b.Content("")

	assert.Equal(t, 0, c.NearestSourceLine(0))
	assert.Equal(t, 2, c.NearestSourceLine(2))
	assert.Equal(t, 2, c.NearestSourceLine(3))
	assert.Equal(t, 2, c.NearestSourceLine(99))
	assert.Equal(t, 1, c.NearestRenderedLine(0))
	assert.Equal(t, 2, c.NearestRenderedLine(1))
	assert.Equal(t, 3, c.NearestRenderedLine(5))

	var empty prettify.RenderedContent
	assert.Equal(t, 0, empty.NearestSourceLine(4))
	assert.Equal(t, 0, empty.NearestRenderedLine(4))
}

func TestParseRuleScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want prettify.RuleScope
	}{
		{"any_line", prettify.AnyLine()},
		{"first_lines:3", prettify.FirstLines(3)},
		{"last_lines:2", prettify.LastLines(2)},
		{"full_block", prettify.FullBlock()},
		{"preceding_command", prettify.PrecedingCommand()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := prettify.ParseRuleScope(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	t.Run("rejects unknown scope", func(t *testing.T) {
		t.Parallel()

		_, err := prettify.ParseRuleScope("middle_lines")

		assert.Error(t, err)
	})

	t.Run("rejects missing count", func(t *testing.T) {
		t.Parallel()

		_, err := prettify.ParseRuleScope("first_lines")

		assert.Error(t, err)
	})
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected token")
	err := fmt.Errorf("render: %w", &prettify.RenderError{Kind: prettify.RenderFailed, Format: "json", Err: cause})

	assert.ErrorIs(t, err, prettify.ErrRenderFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, prettify.ErrNetwork)
	assert.Contains(t, err.Error(), "json: render failed: unexpected token")

	var re *prettify.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, prettify.RenderFailed, re.Kind)
}

func TestColor_Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#1e1e2e", prettify.RGB(30, 30, 46).Hex())
}
