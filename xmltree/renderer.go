// Package xmltree renders XML as an indented tag tree without building a DOM.
//
// Tags are matched line by line. Elements nested deeper than the configured
// depth collapse to a single <tag>...</tag> line while a skip counter follows
// the tags inside them.
package xmltree

import (
	"context"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/tree"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Options control XML rendering.
type Options struct {
	MaxDepthExpanded int `toml:"max_depth_expanded"`
}

// DefaultOptions returns the default XML options.
func DefaultOptions() Options {
	return Options{MaxDepthExpanded: 4}
}

// Renderer renders XML documents.
type Renderer struct {
	opts Options
}

// NewRenderer creates an XML renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "xml" }
func (r *Renderer) DisplayName() string { return "XML" }
func (r *Renderer) Badge() string       { return "XML" }

// Render implements prettify.Renderer. It never fails; text that is not
// markup renders as plain text at the current depth.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	s := state{theme: cfg.Theme, maxDepth: r.opts.MaxDepthExpanded, skip: -1}
	var lx lexer
	for i, line := range block.Lines {
		toks := lx.line(line)
		if len(toks) == 0 {
			if s.skip < 0 {
				s.b.Push(prettify.PlainLine(""), i)
			}
			continue
		}
		s.line(i, toks)
	}
	return s.b.Content(r.Badge()), nil
}

type state struct {
	b        prettify.Builder
	theme    prettify.ThemeColors
	maxDepth int
	depth    int
	skip     int // Depth of the collapsed element, -1 when emitting
}

func (s *state) line(src int, toks []token) {
	for j := 0; j < len(toks); j++ {
		t := toks[j]

		// An element opened and closed on this line is a leaf.
		if t.kind == tokOpen {
			if n := leafLen(toks[j:]); n > 0 {
				if s.skip < 0 {
					s.emit(src, s.element(toks[j:j+n])...)
				}
				j += n - 1
				continue
			}
		}

		if s.skip >= 0 {
			switch t.kind {
			case tokOpen:
				s.depth++
			case tokClose:
				s.depth--
				if s.depth <= s.skip {
					s.depth = s.skip
					s.skip = -1
				}
			}
			continue
		}

		switch t.kind {
		case tokOpen:
			if s.depth >= s.maxDepth {
				s.emit(src, tree.Annotation("<"+t.name+">...</"+t.name+">", s.theme))
				s.skip = s.depth
				s.depth++
				continue
			}
			s.emit(src, s.openTag(t, ">")...)
			s.depth++
		case tokClose:
			s.depth = max(s.depth-1, 0)
			s.emit(src, s.closeTag(t.name)...)
		case tokSelfClosing:
			s.emit(src, s.openTag(t, " />")...)
		case tokText:
			s.emit(src, prettify.StyledSegment{Text: t.text, Fg: s.theme.Palette[7].Ptr()})
		case tokCDATA:
			s.emit(src, prettify.StyledSegment{Text: t.text, Fg: s.theme.Palette[3].Ptr()})
		default:
			s.emit(src, tree.Annotation(t.text, s.theme))
		}
	}
}

// leafLen returns 2 or 3 when toks starts with <a></a> or <a>text</a>.
func leafLen(toks []token) int {
	name := toks[0].name
	switch {
	case len(toks) >= 2 && toks[1].kind == tokClose && toks[1].name == name:
		return 2
	case len(toks) >= 3 && toks[1].kind == tokText && toks[2].kind == tokClose && toks[2].name == name:
		return 3
	}
	return 0
}

func (s *state) emit(src int, segs ...prettify.StyledSegment) {
	s.b.PushSegments(src, append([]prettify.StyledSegment{tree.Guide(s.depth, s.theme)}, segs...)...)
}

func (s *state) element(toks []token) []prettify.StyledSegment {
	segs := s.openTag(toks[0], ">")
	if len(toks) == 3 {
		segs = append(segs, prettify.StyledSegment{Text: toks[1].text, Fg: s.theme.Palette[7].Ptr()})
	}
	return append(segs, s.closeTag(toks[0].name)...)
}

func (s *state) punct(text string) prettify.StyledSegment {
	return prettify.StyledSegment{Text: text, Fg: s.theme.DimColor().Ptr()}
}

func (s *state) tagName(name string) []prettify.StyledSegment {
	local := prettify.StyledSegment{Text: name, Fg: s.theme.Palette[4].Ptr(), Bold: true}
	if ns, rest, ok := strings.Cut(name, ":"); ok {
		local.Text = rest
		return []prettify.StyledSegment{
			{Text: ns, Fg: s.theme.Palette[5].Ptr()},
			s.punct(":"),
			local,
		}
	}
	return []prettify.StyledSegment{local}
}

func (s *state) openTag(t token, end string) []prettify.StyledSegment {
	segs := append([]prettify.StyledSegment{s.punct("<")}, s.tagName(t.name)...)
	for _, m := range attrRE.FindAllStringSubmatch(t.attrs, -1) {
		segs = append(segs,
			prettify.StyledSegment{Text: " " + m[1], Fg: s.theme.Palette[6].Ptr()},
			s.punct("="),
			prettify.StyledSegment{Text: m[2], Fg: s.theme.Palette[2].Ptr()},
		)
	}
	return append(segs, s.punct(end))
}

func (s *state) closeTag(name string) []prettify.StyledSegment {
	segs := append([]prettify.StyledSegment{s.punct("</")}, s.tagName(name)...)
	return append(segs, s.punct(">"))
}
