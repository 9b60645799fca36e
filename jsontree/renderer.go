// Package jsontree renders JSON documents as collapsible trees.
package jsontree

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/tree"
)

var _ prettify.Renderer = (*Renderer)(nil)

var urlRE = regexp.MustCompile(`https?://[^\s"]+`)

// Options control JSON rendering.
type Options struct {
	MaxDepthExpanded int  `toml:"max_depth_expanded"`
	MaxStringLength  int  `toml:"max_string_length"`
	ShowArrayLength  bool `toml:"show_array_length"`
	ShowTypes        bool `toml:"show_types"`
	SortKeys         bool `toml:"sort_keys"`
	HighlightNulls   bool `toml:"highlight_nulls"`
	ClickableURLs    bool `toml:"clickable_urls"`
	MaxArrayDisplay  int  `toml:"max_array_display"`
}

// DefaultOptions returns the default JSON options.
func DefaultOptions() Options {
	return Options{
		MaxDepthExpanded: 3,
		MaxStringLength:  200,
		ShowArrayLength:  true,
		HighlightNulls:   true,
		ClickableURLs:    true,
		MaxArrayDisplay:  50,
	}
}

// Renderer renders JSON. Invalid JSON is a RenderFailed error.
type Renderer struct {
	opts Options
}

// NewRenderer creates a JSON renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "json" }
func (r *Renderer) DisplayName() string { return "JSON" }
func (r *Renderer) Badge() string       { return "{}" }

// Render implements prettify.Renderer.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	root, err := parse([]byte(block.FullText()))
	if err != nil {
		return prettify.RenderedContent{}, &prettify.RenderError{Kind: prettify.RenderFailed, Format: "json", Err: err}
	}
	p := painter{opts: r.opts, theme: cfg.Theme}
	p.value(root, 0, nil, root.line, "")
	return p.b.Content(r.Badge()), nil
}

type painter struct {
	opts  Options
	theme prettify.ThemeColors
	b     prettify.Builder
}

// value emits v at depth. lead is placed after the guides on the first line
// (an object key), and trailing is appended to the last line.
func (p *painter) value(v *value, depth int, lead []prettify.StyledSegment, leadLine int, trailing string) {
	first := func(segs ...prettify.StyledSegment) []prettify.StyledSegment {
		out := append([]prettify.StyledSegment{tree.Guide(depth, p.theme)}, lead...)
		return append(out, segs...)
	}

	switch v.kind {
	case kindObject, kindArray:
		open, close, k, n := "{", "}", tree.Object, len(v.fields)
		if v.kind == kindArray {
			open, close, k, n = "[", "]", tree.Array, len(v.items)
		}
		if depth >= p.opts.MaxDepthExpanded {
			p.b.PushSegments(leadLine, first(tree.Collapsed(open, close, k, n, p.theme)...)...)
			break
		}
		segs := first(prettify.StyledSegment{Text: open})
		if p.opts.ShowArrayLength {
			segs = append(segs, tree.Annotation("  // "+tree.Summary(k, n), p.theme))
		}
		p.b.PushSegments(leadLine, segs...)
		if v.kind == kindObject {
			p.fields(v, depth)
		} else {
			p.items(v, depth)
		}
		p.b.PushSegments(v.endLine, tree.Guide(depth, p.theme), prettify.StyledSegment{Text: close})
	default:
		p.b.PushSegments(leadLine, first(p.scalar(v)...)...)
	}
	if trailing != "" {
		p.b.AppendToLast(prettify.StyledSegment{Text: trailing})
	}
}

func (p *painter) fields(v *value, depth int) {
	fields := v.fields
	if p.opts.SortKeys {
		fields = append([]field(nil), fields...)
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].key < fields[j].key })
	}
	for i, f := range fields {
		trailing := ""
		if i+1 < len(fields) {
			trailing = ","
		}
		lead := []prettify.StyledSegment{
			{Text: strconv.Quote(f.key), Fg: p.theme.KeyColor().Ptr()},
			{Text: ": "},
		}
		p.value(f.val, depth+1, lead, f.line, trailing)
	}
}

func (p *painter) items(v *value, depth int) {
	shown := min(len(v.items), max(p.opts.MaxArrayDisplay, 0))
	for i, item := range v.items[:shown] {
		trailing := ""
		if i+1 < len(v.items) {
			trailing = ","
		}
		p.value(item, depth+1, nil, item.line, trailing)
	}
	if rest := len(v.items) - shown; rest > 0 {
		p.b.PushSegments(prettify.NoSource,
			tree.Guide(depth+1, p.theme),
			tree.Annotation(fmt.Sprintf("... and %d more items", rest), p.theme),
		)
	}
}

func (p *painter) scalar(v *value) []prettify.StyledSegment {
	var seg prettify.StyledSegment
	typeName := ""
	switch v.kind {
	case kindString:
		typeName = "string"
		seg = prettify.StyledSegment{Text: p.quote(v.text), Fg: p.theme.StringColor().Ptr()}
		if p.opts.ClickableURLs {
			if url := urlRE.FindString(v.text); url != "" {
				seg.Underline = true
				seg.Link = url
			}
		}
	case kindNumber:
		typeName = "number"
		seg = prettify.StyledSegment{Text: v.text, Fg: p.theme.NumberColor().Ptr()}
	case kindBool:
		typeName = "bool"
		seg = prettify.StyledSegment{Text: v.text, Fg: p.theme.Palette[5].Ptr()}
	default:
		typeName = "null"
		seg = prettify.StyledSegment{Text: "null"}
		if p.opts.HighlightNulls {
			seg.Fg = p.theme.DimColor().Ptr()
			seg.Italic = true
		}
	}
	segs := []prettify.StyledSegment{seg}
	if p.opts.ShowTypes {
		segs = append(segs, tree.Annotation(" ("+typeName+")", p.theme))
	}
	return segs
}

// quote escapes s for display, truncating it to MaxStringLength runes.
func (p *painter) quote(s string) string {
	suffix := ""
	if limit := p.opts.MaxStringLength; limit > 0 && utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
		suffix = "..."
	}
	q := strconv.Quote(s)
	return q[:len(q)-1] + suffix + `"`
}
