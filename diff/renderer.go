// Package diff renders unified diffs with file banners, a line number gutter,
// word-level change highlighting and an optional side-by-side layout.
package diff

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/colorful"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Layout selects inline or side-by-side rendering.
type Layout string

// Layouts.
const (
	LayoutAuto       Layout = "auto"
	LayoutInline     Layout = "inline"
	LayoutSideBySide Layout = "side_by_side"
)

// Options control diff rendering.
type Options struct {
	Style              Layout `toml:"style"`
	SideBySideMinWidth int    `toml:"side_by_side_min_width"` // Auto switches at this width
	WordDiff           bool   `toml:"word_diff"`
	ShowLineNumbers    bool   `toml:"show_line_numbers"`
}

// DefaultOptions returns the default diff options.
func DefaultOptions() Options {
	return Options{
		Style:              LayoutAuto,
		SideBySideMinWidth: 160,
		WordDiff:           true,
		ShowLineNumbers:    true,
	}
}

// minGutterWidth is the minimum width of each line number column.
const minGutterWidth = 4

// Renderer renders unified diffs.
type Renderer struct {
	opts      Options
	parser    prettify.Parser
	differ    prettify.WordDiffer
	tokenizer prettify.Tokenizer
	languages prettify.LanguageDetector
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWordDiffer enables word-level highlighting of paired changed lines.
func WithWordDiffer(d prettify.WordDiffer) Option {
	return func(r *Renderer) {
		r.differ = d
	}
}

// WithSyntax highlights lines using the language detected from each file path.
func WithSyntax(t prettify.Tokenizer, d prettify.LanguageDetector) Option {
	return func(r *Renderer) {
		r.tokenizer = t
		r.languages = d
	}
}

// NewRenderer creates a diff renderer that parses input with parser.
func NewRenderer(opts Options, parser prettify.Parser, options ...Option) *Renderer {
	r := &Renderer{opts: opts, parser: parser}
	for _, o := range options {
		o(r)
	}
	return r
}

func (r *Renderer) FormatID() string    { return "diff" }
func (r *Renderer) DisplayName() string { return "Diff" }
func (r *Renderer) Badge() string       { return "DIFF" }

// SideBySide reports whether a terminal of the given width gets the
// side-by-side layout.
func (r *Renderer) SideBySide(width int) bool {
	switch r.opts.Style {
	case LayoutSideBySide:
		return true
	case LayoutInline:
		return false
	}
	return width >= r.opts.SideBySideMinWidth
}

// Render implements prettify.Renderer. Input without any file headers is a
// RenderFailed error.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	d, err := r.parser.Parse(strings.NewReader(block.FullText()))
	if err != nil {
		return prettify.RenderedContent{}, &prettify.RenderError{Kind: prettify.RenderFailed, Format: "diff", Err: err}
	}
	if len(d.Files) == 0 {
		return prettify.RenderedContent{}, prettify.Errorf(prettify.RenderFailed, "diff", "no diff headers found")
	}

	p := r.newPainter(d, cfg)
	src := &cursor{lines: block.Lines}
	sideBySide := r.SideBySide(cfg.Width)
	for _, file := range d.Files {
		p.banner(file, src.find(isFileStart))
		switch {
		case file.IsBinary:
			p.b.PushSegments(prettify.NoSource, p.note("Binary files differ"))
			continue
		case len(file.Hunks) == 0:
			p.b.PushSegments(prettify.NoSource, p.note("(empty)"))
			continue
		}
		p.language = r.language(file)
		for _, hunk := range file.Hunks {
			p.hunkHeader(hunk, src.find(isHunkStart))
			sources := make([]int, len(hunk.Lines))
			for i, line := range hunk.Lines {
				sources[i] = src.next(line)
			}
			segments := r.pairSegments(hunk.Lines)
			if sideBySide {
				p.sideBySide(hunk, sources, segments)
			} else {
				p.inline(hunk, sources, segments)
			}
		}
	}
	return p.b.Content(r.Badge()), nil
}

func (r *Renderer) language(file prettify.FileDiff) string {
	if r.tokenizer == nil || r.languages == nil {
		return ""
	}
	return r.languages.DetectLanguage(path.Base(filePath(file)), "")
}

func (r *Renderer) newPainter(d *prettify.Diff, cfg prettify.RendererConfig) *painter {
	theme := cfg.Theme
	p := &painter{
		opts:      r.opts,
		theme:     theme,
		width:     cfg.Width,
		tokenizer: r.tokenizer,
		added: lineStyle{
			fg:        theme.Palette[2].Ptr(),
			bg:        colorful.Tint(theme.Palette[2], theme.Bg, 0.15).Ptr(),
			highlight: colorful.Tint(theme.Palette[2], theme.Bg, 0.4).Ptr(),
			marker:    "+",
		},
		deleted: lineStyle{
			fg:        theme.Palette[1].Ptr(),
			bg:        colorful.Tint(theme.Palette[1], theme.Bg, 0.15).Ptr(),
			highlight: colorful.Tint(theme.Palette[1], theme.Bg, 0.4).Ptr(),
			marker:    "-",
		},
		context: lineStyle{marker: " "},
	}
	if r.opts.ShowLineNumbers {
		p.gutter = gutterWidth(d)
	}
	return p
}

// pairSegments pairs runs of deleted lines with the added lines that follow
// them and word-diffs each pair. Lines without useful word segments are
// absent from the result.
func (r *Renderer) pairSegments(lines []prettify.Line) map[int][]prettify.Segment {
	if !r.opts.WordDiff || r.differ == nil {
		return nil
	}
	result := make(map[int][]prettify.Segment)
	for i := 0; i < len(lines); i++ {
		if lines[i].Type != prettify.LineDeleted {
			continue
		}
		delStart, delEnd := i, i
		for delEnd < len(lines) && lines[delEnd].Type == prettify.LineDeleted {
			delEnd++
		}
		addEnd := delEnd
		for addEnd < len(lines) && lines[addEnd].Type == prettify.LineAdded {
			addEnd++
		}
		pairs := min(delEnd-delStart, addEnd-delEnd)
		for j := 0; j < pairs; j++ {
			oldSegs, newSegs := r.differ.Diff(lines[delStart+j].Content, lines[delEnd+j].Content)
			if significant(oldSegs) && significant(newSegs) {
				result[delStart+j] = oldSegs
				result[delEnd+j] = newSegs
			}
		}
		i = max(addEnd, delEnd) - 1
	}
	return result
}

// significant reports whether at least 30% of the text is unchanged, below
// which word highlighting is noise.
func significant(segs []prettify.Segment) bool {
	var unchanged, total int
	for _, s := range segs {
		total += len(s.Text)
		if !s.Changed {
			unchanged += len(s.Text)
		}
	}
	return total > 0 && float64(unchanged)/float64(total) >= 0.30
}

func gutterWidth(d *prettify.Diff) int {
	maxNum := 0
	for _, f := range d.Files {
		for _, h := range f.Hunks {
			for _, l := range h.Lines {
				maxNum = max(maxNum, l.OldLineNum, l.NewLineNum)
			}
		}
	}
	return max(len(fmt.Sprint(maxNum)), minGutterWidth)
}

// filePath returns the display path, without a/ and b/ prefixes.
func filePath(file prettify.FileDiff) string {
	p := file.NewPath
	if file.Operation == prettify.FileDeleted || p == "" || p == "/dev/null" {
		p = file.OldPath
	}
	p = strings.TrimPrefix(p, "a/")
	return strings.TrimPrefix(p, "b/")
}

func isFileStart(line string) bool {
	return strings.HasPrefix(line, "diff ") || strings.HasPrefix(line, "--- ")
}

func isHunkStart(line string) bool {
	return strings.HasPrefix(line, "@@")
}

// cursor walks the source lines in step with the parsed diff so every
// rendered line can point back at the raw line it came from.
type cursor struct {
	lines []string
	pos   int
}

// find returns the next line matching match, or NoSource.
func (c *cursor) find(match func(string) bool) int {
	for i := c.pos; i < len(c.lines); i++ {
		if match(c.lines[i]) {
			c.pos = i + 1
			return i
		}
	}
	return prettify.NoSource
}

// next consumes the source line for a hunk line, skipping "\ No newline"
// markers. It does not advance when the source disagrees.
func (c *cursor) next(line prettify.Line) int {
	for c.pos < len(c.lines) && strings.HasPrefix(c.lines[c.pos], `\`) {
		c.pos++
	}
	if c.pos >= len(c.lines) {
		return prettify.NoSource
	}
	raw := c.lines[c.pos]
	marker := " "
	switch line.Type {
	case prettify.LineAdded:
		marker = "+"
	case prettify.LineDeleted:
		marker = "-"
	}
	if strings.HasPrefix(raw, marker) || (line.Type == prettify.LineContext && raw == "") {
		c.pos++
		return c.pos - 1
	}
	return prettify.NoSource
}
