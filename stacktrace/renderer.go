// Package stacktrace renders stack traces from Java, Python, JavaScript, Rust
// and Go with highlighted error headers, clickable frame locations and
// folded long frame groups.
package stacktrace

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/prettify"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Options control stack trace rendering.
type Options struct {
	// AppPackages are substrings identifying application frames. When empty
	// every frame counts as application code.
	AppPackages      []string `toml:"app_packages"`
	MaxVisibleFrames int      `toml:"max_visible_frames"`
	KeepTailFrames   int      `toml:"keep_tail_frames"`
}

// DefaultOptions returns the default stack trace options.
func DefaultOptions() Options {
	return Options{MaxVisibleFrames: 5, KeepTailFrames: 1}
}

// Renderer renders stack traces. It never fails.
type Renderer struct {
	opts Options
}

// NewRenderer creates a stack trace renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "stack_trace" }
func (r *Renderer) DisplayName() string { return "Stack Trace" }
func (r *Renderer) Badge() string       { return "TRACE" }

// Render implements prettify.Renderer.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	var b prettify.Builder
	theme := cfg.Theme
	lines := make([]Line, len(block.Lines))
	for i, l := range block.Lines {
		lines[i] = Classify(l, r.opts.AppPackages)
	}

	for i := 0; i < len(lines); {
		l := lines[i]
		switch l.Kind {
		case Header:
			b.PushSegments(i, prettify.StyledSegment{Text: l.Text, Fg: theme.Palette[9].Ptr(), Bold: true})
		case CausedBy:
			b.PushSegments(i, prettify.StyledSegment{Text: l.Text, Fg: theme.ErrorColor().Ptr(), Bold: true})
		case Frame:
			start := i
			for i < len(lines) && lines[i].Kind == Frame {
				i++
			}
			r.frames(&b, lines[start:i], start, theme)
			continue
		default:
			b.PushSegments(i, prettify.StyledSegment{Text: l.Text})
		}
		i++
	}
	return b.Content(r.Badge()), nil
}

// frames renders a run of consecutive frames starting at source line base,
// folding the middle when the run is longer than MaxVisibleFrames.
func (r *Renderer) frames(b *prettify.Builder, group []Line, base int, theme prettify.ThemeColors) {
	limit := max(r.opts.MaxVisibleFrames, 0)
	if len(group) <= limit {
		for i, f := range group {
			b.PushSegments(base+i, frameSegments(f, theme)...)
		}
		return
	}
	tail := min(max(r.opts.KeepTailFrames, 0), limit)
	head := limit - tail
	for i := 0; i < head; i++ {
		b.PushSegments(base+i, frameSegments(group[i], theme)...)
	}
	b.PushSegments(prettify.NoSource, prettify.StyledSegment{
		Text:   fmt.Sprintf("    ... %d more frames", len(group)-head-tail),
		Fg:     theme.DimColor().Ptr(),
		Italic: true,
	})
	for i := len(group) - tail; i < len(group); i++ {
		b.PushSegments(base+i, frameSegments(group[i], theme)...)
	}
}

func frameSegments(f Line, theme prettify.ThemeColors) []prettify.StyledSegment {
	var fg *prettify.Color
	if !f.App {
		fg = theme.DimColor().Ptr()
	}
	if f.Location == nil {
		return []prettify.StyledSegment{{Text: f.Text, Fg: fg}}
	}
	loc := f.Location
	start := strings.Index(f.Text, loc.Path)
	if start < 0 {
		return []prettify.StyledSegment{{Text: f.Text, Fg: fg}}
	}
	end := len(f.Text)
	if i := strings.IndexAny(f.Text[start:], "), \""); i >= 0 {
		end = start + i
	}
	segs := make([]prettify.StyledSegment, 0, 3)
	if start > 0 {
		segs = append(segs, prettify.StyledSegment{Text: f.Text[:start], Fg: fg})
	}
	segs = append(segs, prettify.StyledSegment{
		Text:      f.Text[start:end],
		Fg:        theme.Palette[6].Ptr(),
		Underline: true,
		Link:      loc.Target(),
	})
	if end < len(f.Text) {
		segs = append(segs, prettify.StyledSegment{Text: f.Text[end:], Fg: fg})
	}
	return segs
}
