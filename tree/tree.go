// Package tree holds the pieces shared by the nested-structure renderers:
// depth guides, collapse summaries and de-emphasized annotations.
package tree

import (
	"fmt"
	"strings"

	"github.com/fwojciec/prettify"
)

// GuideUnit is the guide drawn for one level of nesting.
const GuideUnit = "│ "

// Guides returns the guide prefix for depth.
func Guides(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(GuideUnit, depth)
}

// Guide returns the guide prefix for depth as a dim segment.
func Guide(depth int, theme prettify.ThemeColors) prettify.StyledSegment {
	return prettify.StyledSegment{Text: Guides(depth), Fg: theme.DimColor().Ptr()}
}

// Kind names what a collapsed node contains.
type Kind int

// Node kinds.
const (
	Object Kind = iota // Counted in keys
	Array              // Counted in items
)

// Summary describes a collapsed node, e.g. "3 keys" or "1 item".
func Summary(kind Kind, n int) string {
	noun := "key"
	if kind == Array {
		noun = "item"
	}
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// Annotation is dim italic text used for summaries, counts and type hints.
func Annotation(text string, theme prettify.ThemeColors) prettify.StyledSegment {
	return prettify.StyledSegment{Text: text, Fg: theme.DimColor().Ptr(), Italic: true}
}

// Collapsed renders a collapsed node as open + " summary " + close. Callers
// place it after the guides and any key.
func Collapsed(open, close string, kind Kind, n int, theme prettify.ThemeColors) []prettify.StyledSegment {
	return []prettify.StyledSegment{
		{Text: open},
		Annotation(" "+Summary(kind, n)+" ", theme),
		{Text: close},
	}
}

// IndentDepth converts leading whitespace to a nesting depth, counting a tab
// as one level and every width spaces as one level.
func IndentDepth(line string, width int) int {
	if width <= 0 {
		width = 2
	}
	spaces, tabs := 0, 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			tabs++
		default:
			return tabs + spaces/width
		}
	}
	return tabs + spaces/width
}
