package lipgloss

import (
	"image"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/colorful"
	"github.com/muesli/termenv"
)

// halfBlock shows the upper pixel as foreground and the lower as background.
const halfBlock = "▀"

// Printer converts rendered content to ANSI-styled terminal lines.
type Printer struct {
	renderer *lipgloss.Renderer
	bg       prettify.Color
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithRenderer sets a custom lipgloss renderer, which decides the color profile.
func WithRenderer(r *lipgloss.Renderer) PrinterOption {
	return func(p *Printer) {
		p.renderer = r
	}
}

// NewPrinter creates a printer. Translucent graphic pixels are composited
// over bg.
func NewPrinter(bg prettify.Color, opts ...PrinterOption) *Printer {
	p := &Printer{renderer: lipgloss.DefaultRenderer(), bg: bg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Segment renders one styled segment. Links become OSC 8 hyperlinks unless
// the profile has no color support.
func (p *Printer) Segment(s prettify.StyledSegment) string {
	style := p.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if s.Fg != nil {
		style = style.Foreground(lipgloss.Color(s.Fg.Hex()))
	}
	if s.Bg != nil {
		style = style.Background(lipgloss.Color(s.Bg.Hex()))
	}
	if s.Bold {
		style = style.Bold(true)
	}
	if s.Italic {
		style = style.Italic(true)
	}
	if s.Underline {
		style = style.Underline(true)
	}
	if s.Strikethrough {
		style = style.Strikethrough(true)
	}
	out := style.Render(s.Text)
	if s.Link != "" && p.renderer.ColorProfile() != termenv.Ascii {
		out = termenv.Hyperlink(s.Link, out)
	}
	return out
}

// Line renders all segments of a line.
func (p *Printer) Line(l prettify.StyledLine) string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(p.Segment(s))
	}
	return sb.String()
}

// Lines renders every line of c. Inline graphics are previewed with
// half-block cells over their blank placeholder lines.
func (p *Printer) Lines(c prettify.RenderedContent) []string {
	out := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		out[i] = p.Line(l)
	}
	if p.renderer.ColorProfile() == termenv.Ascii {
		return out
	}
	for _, g := range c.Graphics {
		p.preview(out, c.Lines, g)
	}
	return out
}

// Fprint writes c to w, one line per terminal row.
func (p *Printer) Fprint(w io.Writer, c prettify.RenderedContent) error {
	for _, line := range p.Lines(c) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) preview(out []string, lines []prettify.StyledLine, g prettify.InlineGraphic) {
	if g.PixelWidth <= 0 || g.PixelHeight <= 0 || g.WidthCells <= 0 || len(g.RGBA) < 4*g.PixelWidth*g.PixelHeight {
		return
	}
	var rows []int
	for r := g.Row; r < g.Row+g.HeightCells && r < len(lines); r++ {
		if r >= 0 && lines[r].Text() == "" {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return
	}
	img := &image.NRGBA{
		Pix:    g.RGBA,
		Stride: 4 * g.PixelWidth,
		Rect:   image.Rect(0, 0, g.PixelWidth, g.PixelHeight),
	}
	small := imaging.Resize(img, g.WidthCells, 2*len(rows), imaging.Box)
	for i, r := range rows {
		var sb strings.Builder
		for x := 0; x < g.WidthCells; x++ {
			top := p.pixel(small, x, 2*i)
			bottom := p.pixel(small, x, 2*i+1)
			sb.WriteString(p.renderer.NewStyle().
				Foreground(lipgloss.Color(top.Hex())).
				Background(lipgloss.Color(bottom.Hex())).
				Render(halfBlock))
		}
		out[r] = sb.String()
	}
}

func (p *Printer) pixel(img *image.NRGBA, x, y int) prettify.Color {
	c := img.NRGBAAt(x, y)
	return colorful.Blend(p.bg, prettify.RGB(c.R, c.G, c.B), float64(c.A)/255)
}
