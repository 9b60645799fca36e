// Package tomltree renders TOML with section guides and aligned assignments.
//
// Lines are classified one at a time; the document is never parsed as a
// whole, so malformed TOML still renders.
package tomltree

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/tree"
)

var _ prettify.Renderer = (*Renderer)(nil)

var (
	sectionRE    = regexp.MustCompile(`^\[([\w.-]+)\]\s*$`)
	arrayTableRE = regexp.MustCompile(`^\[\[([\w.-]+)\]\]\s*$`)
	keyValueRE   = regexp.MustCompile(`^([\w.-]+)\s*=\s*(.*)$`)
	datetimeRE   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2})?)?`)
)

// Options control TOML rendering.
type Options struct {
	AlignEquals      bool `toml:"align_equals"`
	MaxDepthExpanded int  `toml:"max_depth_expanded"`
}

// DefaultOptions returns the default TOML options.
func DefaultOptions() Options {
	return Options{AlignEquals: true, MaxDepthExpanded: 4}
}

// Renderer renders TOML documents.
type Renderer struct {
	opts Options
}

// NewRenderer creates a TOML renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "toml" }
func (r *Renderer) DisplayName() string { return "TOML" }
func (r *Renderer) Badge() string       { return "TOML" }

type lineKind int

const (
	lineEmpty lineKind = iota
	lineComment
	lineSection
	lineArrayTable
	lineKeyValue
	lineArrayItem  // Inside a multi-line array
	lineStringBody // Inside a multi-line string, kept verbatim
	lineOther
)

type classified struct {
	kind  lineKind
	name  string // Section name or key
	value string
	depth int // Dots in a section name, indent levels of an array item
}

// classifyAll classifies each line, carrying open arrays and multi-line
// strings from one line to the next.
func classifyAll(lines []string) []classified {
	out := make([]classified, len(lines))
	var (
		open   int    // Unclosed brackets of a multi-line array
		quote  string // Delimiter of an unclosed multi-line string
		indent int    // Spaces per level inside the current array
	)
	for i, line := range lines {
		switch {
		case quote != "":
			out[i] = classified{kind: lineStringBody, value: line}
			if strings.Count(line, quote)%2 == 1 {
				quote = ""
			}
		case open > 0:
			if indent == 0 {
				indent = len(line) - len(strings.TrimLeft(line, " "))
			}
			out[i] = classified{kind: lineArrayItem, value: strings.TrimSpace(line), depth: tree.IndentDepth(line, indent)}
			open += bracketBalance(line)
		default:
			c := classify(line)
			out[i] = c
			if c.kind != lineKeyValue {
				continue
			}
			for _, q := range []string{`"""`, `'''`} {
				if strings.HasPrefix(c.value, q) && strings.Count(c.value, q) == 1 {
					quote = q
				}
			}
			if quote == "" {
				open, indent = max(bracketBalance(c.value), 0), 0
			}
		}
	}
	return out
}

// bracketBalance counts [ minus ] outside strings and comments.
func bracketBalance(s string) int {
	n := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == '\\' && quote == '"' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '#':
			return n
		case ch == '[':
			n++
		case ch == ']':
			n--
		}
	}
	return n
}

func classify(line string) classified {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return classified{kind: lineEmpty}
	case strings.HasPrefix(trimmed, "#"):
		return classified{kind: lineComment, value: trimmed}
	}
	if m := arrayTableRE.FindStringSubmatch(trimmed); m != nil {
		return classified{kind: lineArrayTable, name: m[1], depth: strings.Count(m[1], ".")}
	}
	if m := sectionRE.FindStringSubmatch(trimmed); m != nil {
		return classified{kind: lineSection, name: m[1], depth: strings.Count(m[1], ".")}
	}
	if m := keyValueRE.FindStringSubmatch(trimmed); m != nil {
		return classified{kind: lineKeyValue, name: m[1], value: strings.TrimSpace(m[2])}
	}
	return classified{kind: lineOther, value: trimmed}
}

// Render implements prettify.Renderer. It never fails.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	theme := cfg.Theme
	lines := classifyAll(block.Lines)

	var (
		b         prettify.Builder
		bodyDepth int // Guide depth for keys of the current section
		align     = r.alignColumn(lines, 0)
		collapsed string // Name of the collapsed section being skipped
	)
	for i, c := range lines {
		if collapsed != "" {
			if c.kind != lineSection && c.kind != lineArrayTable {
				continue
			}
			if strings.HasPrefix(c.name, collapsed+".") {
				continue
			}
			collapsed = ""
		}

		switch c.kind {
		case lineSection, lineArrayTable:
			header := prettify.StyledSegment{Text: "[" + c.name + "]", Fg: theme.Palette[4].Ptr(), Bold: true}
			if c.kind == lineArrayTable {
				header = prettify.StyledSegment{Text: "[[" + c.name + "]]", Fg: theme.Palette[12].Ptr(), Bold: true}
			}
			if c.depth >= r.opts.MaxDepthExpanded {
				n := countChildren(lines, i)
				b.PushSegments(i, tree.Guide(c.depth, theme), header, tree.Annotation(" {"+tree.Summary(tree.Object, n)+"}", theme))
				collapsed = c.name
				continue
			}
			b.PushSegments(i, tree.Guide(c.depth, theme), header)
			bodyDepth = c.depth + 1
			align = r.alignColumn(lines, i+1)
		case lineComment:
			b.PushSegments(i, tree.Guide(bodyDepth, theme), tree.Annotation(c.value, theme))
		case lineKeyValue:
			pad := ""
			if r.opts.AlignEquals && align > len(c.name) {
				pad = strings.Repeat(" ", align-len(c.name))
			}
			b.PushSegments(i,
				tree.Guide(bodyDepth, theme),
				prettify.StyledSegment{Text: c.name, Fg: theme.KeyColor().Ptr()},
				prettify.StyledSegment{Text: pad + " = "},
				styleValue(c.value, theme),
			)
		case lineArrayItem:
			b.PushSegments(i, append([]prettify.StyledSegment{tree.Guide(bodyDepth+c.depth, theme)}, arrayItem(c.value, theme)...)...)
		case lineStringBody:
			b.PushSegments(i, tree.Guide(bodyDepth, theme), prettify.StyledSegment{Text: c.value, Fg: theme.StringColor().Ptr()})
		case lineEmpty:
			b.Push(prettify.PlainLine(""), i)
		default:
			b.PushSegments(i, tree.Guide(bodyDepth, theme), prettify.StyledSegment{Text: c.value})
		}
	}
	return b.Content(r.Badge()), nil
}

// alignColumn returns the longest key in the section starting at start.
func (r *Renderer) alignColumn(lines []classified, start int) int {
	if !r.opts.AlignEquals {
		return 0
	}
	width := 0
	for _, c := range lines[start:] {
		if c.kind == lineSection || c.kind == lineArrayTable {
			break
		}
		if c.kind == lineKeyValue {
			width = max(width, len(c.name))
		}
	}
	return width
}

// countChildren counts the keys of the section at idx plus its direct subtables.
func countChildren(lines []classified, idx int) int {
	name, depth := lines[idx].name, lines[idx].depth
	n := 0
	inOwnBody := true
	for _, c := range lines[idx+1:] {
		switch c.kind {
		case lineSection, lineArrayTable:
			if !strings.HasPrefix(c.name, name+".") {
				return n
			}
			inOwnBody = false
			if c.depth == depth+1 {
				n++
			}
		case lineKeyValue:
			if inOwnBody {
				n++
			}
		}
	}
	return n
}

// arrayItem styles one line of a multi-line array, leaving brackets and the
// trailing comma plain.
func arrayItem(text string, theme prettify.ThemeColors) []prettify.StyledSegment {
	if text == "" || text == "[" || strings.HasPrefix(text, "]") {
		return []prettify.StyledSegment{{Text: text}}
	}
	if strings.HasPrefix(text, "#") {
		return []prettify.StyledSegment{tree.Annotation(text, theme)}
	}
	value := strings.TrimSuffix(text, ",")
	segs := []prettify.StyledSegment{styleValue(value, theme)}
	if len(value) < len(text) {
		segs = append(segs, prettify.StyledSegment{Text: ","})
	}
	return segs
}

func styleValue(v string, theme prettify.ThemeColors) prettify.StyledSegment {
	seg := prettify.StyledSegment{Text: v}
	switch {
	case v == "":
	case v == "true" || v == "false":
		seg.Fg = theme.Palette[5].Ptr()
	case strings.HasPrefix(v, `"`), strings.HasPrefix(v, "'"):
		seg.Fg = theme.StringColor().Ptr()
	case strings.HasPrefix(v, "["), strings.HasPrefix(v, "{"):
		seg.Fg = theme.Palette[3].Ptr()
	case datetimeRE.MatchString(v):
		seg.Fg = theme.AccentColor().Ptr()
	case isNumber(v):
		seg.Fg = theme.NumberColor().Ptr()
	default:
		seg.Fg = theme.StringColor().Ptr()
	}
	return seg
}

func isNumber(s string) bool {
	s = strings.ReplaceAll(s, "_", "")
	for _, prefix := range []string{"0x", "0o", "0b"} {
		if strings.HasPrefix(s, prefix) {
			return len(s) > 2
		}
	}
	switch strings.TrimLeft(s, "+-") {
	case "inf", "nan":
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
