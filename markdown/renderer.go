// Package markdown renders Markdown in two passes: block grouping (fences,
// pipe tables, single lines), then per-block styling with non-overlapping
// inline spans.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/colorful"
	"github.com/fwojciec/prettify/table"
	"github.com/mattn/go-runewidth"
)

var _ prettify.Renderer = (*Renderer)(nil)

var (
	headerRE     = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	blockquoteRE = regexp.MustCompile(`^>\s?(.*)$`)
	bulletRE     = regexp.MustCompile(`^(\s*)([-*+])\s+(.*)$`)
	orderedRE    = regexp.MustCompile(`^(\s*)(\d+[.)])\s+(.*)$`)
	ruleRE       = regexp.MustCompile(`^(?:-[\s-]*-[\s-]*-[\s-]*|\*[\s*]*\*[\s*]*\*[\s*]*|_[\s_]*_[\s_]*_[\s_]*)$`)
)

// HeaderStyle selects how headers are painted.
type HeaderStyle string

// Header styles.
const (
	HeaderColored    HeaderStyle = "colored"
	HeaderBold       HeaderStyle = "bold"
	HeaderUnderlined HeaderStyle = "underlined"
)

// LinkStyle selects how links are painted.
type LinkStyle string

// Link styles.
const (
	LinkUnderlineColor LinkStyle = "underline_color"
	LinkInlineURL      LinkStyle = "inline_url"
	// LinkFootnote numbers links in first-seen order and lists their URLs
	// after the content.
	LinkFootnote LinkStyle = "footnote"
)

// RuleStyle selects the horizontal rule character.
type RuleStyle string

// Horizontal rule styles.
const (
	RuleThin   RuleStyle = "thin"
	RuleThick  RuleStyle = "thick"
	RuleDashed RuleStyle = "dashed"
)

// Options control Markdown rendering.
type Options struct {
	HeaderStyle         HeaderStyle `toml:"header_style"`
	LinkStyle           LinkStyle   `toml:"link_style"`
	HorizontalRuleStyle RuleStyle   `toml:"horizontal_rule_style"`
	TableStyle          table.Style `toml:"table_style"`
	CodeBlockBackground bool        `toml:"code_block_background"`
}

// DefaultOptions returns the default Markdown options.
func DefaultOptions() Options {
	return Options{
		HeaderStyle:         HeaderColored,
		LinkStyle:           LinkUnderlineColor,
		HorizontalRuleStyle: RuleThin,
		TableStyle:          table.StyleUnicode,
		CodeBlockBackground: true,
	}
}

// Diagrams renders fenced blocks whose language is a diagram language.
type Diagrams interface {
	Supports(tag string) bool
	// RenderFence renders the fence body. Mappings in the result are absolute
	// source lines, starting from firstSource for the opening fence.
	RenderFence(ctx context.Context, tag string, lines []string, firstSource int, cfg prettify.RendererConfig) prettify.RenderedContent
}

// Renderer renders Markdown. It never fails.
type Renderer struct {
	opts      Options
	tokenizer prettify.Tokenizer
	languages prettify.LanguageDetector
	diagrams  Diagrams
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSyntax highlights code fences with t, resolving fence tags with d.
func WithSyntax(t prettify.Tokenizer, d prettify.LanguageDetector) Option {
	return func(r *Renderer) {
		r.tokenizer = t
		r.languages = d
	}
}

// WithDiagrams delegates diagram fences to d.
func WithDiagrams(d Diagrams) Option {
	return func(r *Renderer) {
		r.diagrams = d
	}
}

// NewRenderer creates a Markdown renderer.
func NewRenderer(opts Options, options ...Option) *Renderer {
	r := &Renderer{opts: opts}
	for _, o := range options {
		o(r)
	}
	return r
}

func (r *Renderer) FormatID() string    { return "markdown" }
func (r *Renderer) DisplayName() string { return "Markdown" }
func (r *Renderer) Badge() string       { return "📝" }

// Render implements prettify.Renderer.
func (r *Renderer) Render(ctx context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	s := &state{opts: r.opts, theme: cfg.Theme, width: cfg.Width}
	if s.width <= 0 {
		s.width = 80
	}
	if r.opts.LinkStyle == LinkFootnote {
		s.footnotes = map[string]int{}
	}
	for _, blk := range classify(block.Lines) {
		switch blk.kind {
		case blockLine:
			s.b.Push(s.line(block.Lines[blk.start]), blk.start)
		case blockFence:
			if r.diagrams != nil && blk.lang != "" && r.diagrams.Supports(blk.lang) {
				s.b.Append(r.diagrams.RenderFence(ctx, blk.lang, blk.code, blk.start, cfg))
				continue
			}
			r.fence(s, blk)
		case blockTable:
			s.table(blk)
		}
	}
	s.references()
	return s.b.Content(r.Badge()), nil
}

// state is the per-call rendering state.
type state struct {
	opts  Options
	theme prettify.ThemeColors
	width int
	b     prettify.Builder

	footnotes map[string]int // URL to its number, nil unless footnote style
	urls      []string
}

func (s *state) line(text string) prettify.StyledLine {
	if m := headerRE.FindStringSubmatch(text); m != nil {
		return s.header(len(m[1]), m[2])
	}
	// Rules come before bullets because "---" also looks like a list item.
	if ruleRE.MatchString(strings.TrimSpace(text)) {
		return s.rule()
	}
	if m := blockquoteRE.FindStringSubmatch(text); m != nil {
		segs := []prettify.StyledSegment{{Text: "▎ ", Fg: s.theme.Palette[6].Ptr()}}
		for _, seg := range s.inline(m[1]) {
			if seg.Fg == nil {
				seg.Fg = s.theme.Palette[7].Ptr()
			}
			seg.Italic = true
			segs = append(segs, seg)
		}
		return prettify.NewLine(segs...)
	}
	if m := bulletRE.FindStringSubmatch(text); m != nil {
		bullet := "▪"
		switch len(m[1]) / 2 {
		case 0:
			bullet = "•"
		case 1:
			bullet = "◦"
		}
		segs := []prettify.StyledSegment{{Text: m[1] + bullet + " ", Fg: s.theme.Palette[6].Ptr()}}
		return prettify.NewLine(append(segs, s.inline(m[3])...)...)
	}
	if m := orderedRE.FindStringSubmatch(text); m != nil {
		segs := []prettify.StyledSegment{{Text: m[1] + m[2] + " ", Fg: s.theme.NumberColor().Ptr(), Bold: true}}
		return prettify.NewLine(append(segs, s.inline(m[3])...)...)
	}
	return prettify.NewLine(s.inline(text)...)
}

func (s *state) headerColor(level int) prettify.Color {
	switch level {
	case 1:
		return s.theme.Palette[14]
	case 2:
		return s.theme.Palette[10]
	case 3:
		return s.theme.Palette[11]
	case 4:
		return s.theme.Palette[12]
	case 5:
		return s.theme.Palette[13]
	}
	return s.theme.DimColor()
}

func (s *state) header(level int, content string) prettify.StyledLine {
	segs := s.inline(content)
	for i := range segs {
		switch s.opts.HeaderStyle {
		case HeaderBold:
			segs[i].Bold = true
			segs[i].Fg = colorful.Scale(s.theme.Fg, 1-float64(level-1)*0.12).Ptr()
		case HeaderUnderlined:
			segs[i].Bold = true
			segs[i].Underline = segs[i].Underline || level <= 2
			segs[i].Fg = s.headerColor(level).Ptr()
		default:
			segs[i].Bold = segs[i].Bold || level <= 2
			segs[i].Fg = s.headerColor(level).Ptr()
		}
	}
	return prettify.NewLine(segs...)
}

func (s *state) rule() prettify.StyledLine {
	ch := "─"
	switch s.opts.HorizontalRuleStyle {
	case RuleThick:
		ch = "━"
	case RuleDashed:
		ch = "╌"
	}
	return prettify.NewLine(prettify.StyledSegment{Text: strings.Repeat(ch, s.width), Fg: s.theme.DimColor().Ptr()})
}

// inline styles text by its inline spans. Bytes outside every span become
// plain segments.
func (s *state) inline(text string) []prettify.StyledSegment {
	spans := extractSpans(text)
	if len(spans) == 0 {
		return []prettify.StyledSegment{{Text: text}}
	}
	var segs []prettify.StyledSegment
	pos := 0
	for _, sp := range spans {
		if sp.start > pos {
			segs = append(segs, prettify.StyledSegment{Text: text[pos:sp.start]})
		}
		segs = append(segs, s.span(sp)...)
		pos = sp.end
	}
	if pos < len(text) {
		segs = append(segs, prettify.StyledSegment{Text: text[pos:]})
	}
	return segs
}

func (s *state) span(sp span) []prettify.StyledSegment {
	switch sp.kind {
	case spanCode:
		return []prettify.StyledSegment{{Text: sp.text, Fg: s.theme.Palette[9].Ptr(), Bg: s.codeBg().Ptr()}}
	case spanLink:
		return s.link(sp.text, sp.url)
	case spanBoldItalic:
		return []prettify.StyledSegment{{Text: sp.text, Bold: true, Italic: true}}
	case spanBold:
		return []prettify.StyledSegment{{Text: sp.text, Bold: true}}
	}
	return []prettify.StyledSegment{{Text: sp.text, Italic: true}}
}

func (s *state) link(text, url string) []prettify.StyledSegment {
	fg := s.theme.Palette[12].Ptr()
	switch s.opts.LinkStyle {
	case LinkInlineURL:
		return []prettify.StyledSegment{{Text: fmt.Sprintf("%s (%s)", text, url), Fg: fg, Underline: true}}
	case LinkFootnote:
		n, ok := s.footnotes[url]
		if !ok {
			s.urls = append(s.urls, url)
			n = len(s.urls)
			s.footnotes[url] = n
		}
		return []prettify.StyledSegment{
			{Text: text, Fg: fg, Underline: true},
			{Text: fmt.Sprintf("[%d]", n), Fg: s.theme.DimColor().Ptr()},
		}
	}
	return []prettify.StyledSegment{{Text: text, Fg: fg, Underline: true, Link: url}}
}

// references appends the footnote list: a blank line, a short rule, then
// one "[n]: url" line per collected link.
func (s *state) references() {
	if len(s.urls) == 0 {
		return
	}
	dim := s.theme.DimColor().Ptr()
	s.b.Push(prettify.PlainLine(""), prettify.NoSource)
	s.b.PushSegments(prettify.NoSource, prettify.StyledSegment{Text: strings.Repeat("─", min(s.width, 40)), Fg: dim})
	for i, url := range s.urls {
		s.b.PushSegments(prettify.NoSource,
			prettify.StyledSegment{Text: fmt.Sprintf("[%d]", i+1), Fg: dim, Bold: true},
			prettify.StyledSegment{Text: ": " + url, Fg: s.theme.Palette[12].Ptr(), Underline: true, Link: url},
		)
	}
}

func (s *state) codeBg() prettify.Color {
	return colorful.Blend(s.theme.Bg, s.theme.Fg, 0.1)
}

// fence renders a code block: a label line for the opening fence, then one
// highlighted line per code line. The closing fence renders nothing.
func (r *Renderer) fence(s *state, blk block) {
	var bg *prettify.Color
	if s.opts.CodeBlockBackground {
		bg = s.codeBg().Ptr()
	}
	source := strings.Join(blk.code, "\n")
	lang := blk.lang
	if r.languages != nil {
		lang = r.languages.DetectLanguage(blk.lang, source)
	}
	label := blk.lang
	if label == "" {
		label = strings.ToLower(lang)
	}
	if label != "" {
		label = " " + label + " "
	}
	s.b.PushSegments(blk.start, pad(prettify.StyledSegment{Text: label, Fg: s.theme.DimColor().Ptr(), Bg: bg, Bold: true}, s.width))

	var tokens [][]prettify.Token
	if r.tokenizer != nil && lang != "" {
		tokens = r.tokenizer.TokenizeLines(lang, source, s.theme)
	}
	for i, code := range blk.code {
		var segs []prettify.StyledSegment
		if i < len(tokens) && len(tokens) == len(blk.code) {
			for _, tok := range tokens[i] {
				segs = append(segs, prettify.StyledSegment{Text: tok.Text, Fg: tok.Style.Fg, Bg: bg, Bold: tok.Style.Bold, Italic: tok.Style.Italic})
			}
		} else {
			segs = []prettify.StyledSegment{{Text: code, Bg: bg}}
		}
		if bg != nil {
			if w := lineWidth(segs); w < s.width {
				segs = append(segs, prettify.StyledSegment{Text: strings.Repeat(" ", s.width-w), Bg: bg})
			}
		}
		s.b.PushSegments(blk.start+1+i, segs...)
	}
}

func pad(seg prettify.StyledSegment, width int) prettify.StyledSegment {
	if seg.Bg == nil {
		return seg
	}
	if w := runewidth.StringWidth(seg.Text); w < width {
		seg.Text += strings.Repeat(" ", width-w)
	}
	return seg
}

func lineWidth(segs []prettify.StyledSegment) int {
	w := 0
	for _, s := range segs {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// table renders a pipe table through the shared table layout. Borders map to
// the nearest table source line.
func (s *state) table(blk block) {
	t := table.Table{Align: blk.align}
	headerFg := s.headerColor(3).Ptr()
	for _, cell := range blk.header {
		segs := s.inline(cell)
		for i := range segs {
			if segs[i].Fg == nil {
				segs[i].Fg = headerFg
			}
		}
		t.Header = append(t.Header, table.Cell(segs))
	}
	for _, row := range blk.rows {
		var cells []table.Cell
		for _, cell := range row {
			cells = append(cells, table.Cell(s.inline(cell)))
		}
		t.Rows = append(t.Rows, cells)
	}
	lines, rows := table.Render(t, s.opts.TableStyle, s.theme, s.width)
	for i, line := range lines {
		source := blk.start
		switch rows[i] {
		case table.BorderRow:
			if i > 0 {
				source = blk.end - 1
			}
		case table.SeparatorRow:
			source = blk.start + 1
		default:
			if rows[i] > 0 {
				source = blk.start + 1 + rows[i]
			}
		}
		s.b.Push(line, source)
	}
}
