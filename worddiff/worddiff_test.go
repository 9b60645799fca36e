package worddiff_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/worddiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(segs []prettify.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestDiffer_Diff_SingleWordChange(t *testing.T) {
	t.Parallel()

	d := worddiff.NewDiffer()

	oldSegs, newSegs := d.Diff("hello world", "hello universe")

	require.Len(t, oldSegs, 2)
	assert.Equal(t, prettify.Segment{Text: "hello "}, oldSegs[0])
	assert.Equal(t, prettify.Segment{Text: "world", Changed: true}, oldSegs[1])
	require.Len(t, newSegs, 2)
	assert.Equal(t, prettify.Segment{Text: "hello "}, newSegs[0])
	assert.Equal(t, prettify.Segment{Text: "universe", Changed: true}, newSegs[1])
}

func TestDiffer_Diff_IdenticalStrings(t *testing.T) {
	t.Parallel()

	oldSegs, newSegs := worddiff.NewDiffer().Diff("same line", "same line")

	assert.Equal(t, []prettify.Segment{{Text: "same line"}}, oldSegs)
	assert.Equal(t, []prettify.Segment{{Text: "same line"}}, newSegs)
}

func TestDiffer_Diff_CompletelyDifferent(t *testing.T) {
	t.Parallel()

	oldSegs, newSegs := worddiff.NewDiffer().Diff("alpha beta", "gamma(delta)")

	assert.Equal(t, []prettify.Segment{{Text: "alpha beta", Changed: true}}, oldSegs)
	assert.Equal(t, []prettify.Segment{{Text: "gamma(delta)", Changed: true}}, newSegs)
}

func TestDiffer_Diff_EmptyStrings(t *testing.T) {
	t.Parallel()

	d := worddiff.NewDiffer()

	t.Run("both empty", func(t *testing.T) {
		t.Parallel()
		oldSegs, newSegs := d.Diff("", "")
		assert.Nil(t, oldSegs)
		assert.Nil(t, newSegs)
	})

	t.Run("old empty", func(t *testing.T) {
		t.Parallel()
		oldSegs, newSegs := d.Diff("", "added")
		assert.Nil(t, oldSegs)
		assert.Equal(t, []prettify.Segment{{Text: "added", Changed: true}}, newSegs)
	})

	t.Run("new empty", func(t *testing.T) {
		t.Parallel()
		oldSegs, newSegs := d.Diff("removed", "")
		assert.Equal(t, []prettify.Segment{{Text: "removed", Changed: true}}, oldSegs)
		assert.Nil(t, newSegs)
	})
}

func TestDiffer_Diff_PreservesText(t *testing.T) {
	t.Parallel()

	d := worddiff.NewDiffer()
	old := `x := compute(a, b) // größe`
	updated := `x := compute(a, c) // größe`

	oldSegs, newSegs := d.Diff(old, updated)

	assert.Equal(t, old, join(oldSegs))
	assert.Equal(t, updated, join(newSegs))
	assert.Contains(t, oldSegs, prettify.Segment{Text: "b", Changed: true})
	assert.Contains(t, newSegs, prettify.Segment{Text: "c", Changed: true})
}

func TestDiffer_Tokenize(t *testing.T) {
	t.Parallel()

	tokens := worddiff.NewDiffer().Tokenize("foo_bar(1,  x)")

	assert.Equal(t, []string{"foo_bar", "(", "1", ",", "  ", "x", ")"}, tokens)
}
