// Package diagram renders fenced diagram blocks through a cascade of
// backends: native layout, a local command, a Kroki server, and finally
// colored source text.
package diagram

import (
	"bytes"
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fwojciec/prettify"
)

var _ prettify.Renderer = (*Renderer)(nil)

var fenceRE = regexp.MustCompile("^\\s*```\\s*([\\w-]+)\\s*$")

// Engine selects which backend renders diagrams.
type Engine string

// Engines.
const (
	EngineAuto         Engine = "auto" // Native, local, Kroki, then text
	EngineNative       Engine = "native"
	EngineLocal        Engine = "local"
	EngineKroki        Engine = "kroki"
	EngineTextFallback Engine = "text_fallback"
)

// Options control diagram rendering.
type Options struct {
	Engine      Engine              `toml:"engine"`
	KrokiServer string              `toml:"kroki_server"`
	Cache       bool                `toml:"cache"`
	Languages   map[string]Language `toml:"languages"` // Merged over DefaultLanguages
}

// DefaultOptions returns the default diagram options.
func DefaultOptions() Options {
	return Options{Engine: EngineAuto, Cache: true}
}

// Renderer renders diagram fences. Backends are optional; a missing backend
// is skipped like a failing one.
type Renderer struct {
	opts      Options
	languages map[string]Language

	graphs     prettify.GraphRenderer
	rasterizer prettify.Rasterizer
	runner     prettify.CommandRunner
	client     prettify.DiagramClient
	cache      prettify.RasterCache
	logger     *log.Logger
	tempDir    string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithNative enables the native tier: g lays out DOT source as SVG and r
// rasterizes it.
func WithNative(g prettify.GraphRenderer, r prettify.Rasterizer) Option {
	return func(d *Renderer) {
		d.graphs = g
		d.rasterizer = r
	}
}

// WithRunner enables the local command tier.
func WithRunner(r prettify.CommandRunner) Option {
	return func(d *Renderer) {
		d.runner = r
	}
}

// WithClient enables the Kroki tier.
func WithClient(c prettify.DiagramClient) Option {
	return func(d *Renderer) {
		d.client = c
	}
}

// WithCache stores rasters in c when Options.Cache is set.
func WithCache(c prettify.RasterCache) Option {
	return func(d *Renderer) {
		d.cache = c
	}
}

// WithLogger sets the logger that records tier attempts and failures.
func WithLogger(l *log.Logger) Option {
	return func(d *Renderer) {
		d.logger = l
	}
}

// WithTempDir sets where the local tier creates its scratch directories.
// The default is the system temporary directory.
func WithTempDir(dir string) Option {
	return func(d *Renderer) {
		d.tempDir = dir
	}
}

// NewRenderer creates a diagram renderer.
func NewRenderer(opts Options, options ...Option) *Renderer {
	if opts.Engine == "" {
		opts.Engine = EngineAuto
	}
	r := &Renderer{
		opts:      opts,
		languages: mergeLanguages(opts.Languages),
		logger:    log.Default(),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

func (r *Renderer) FormatID() string    { return "diagrams" }
func (r *Renderer) DisplayName() string { return "Diagrams" }
func (r *Renderer) Badge() string       { return "DG" }

// Supports reports whether tag is a known diagram language.
func (r *Renderer) Supports(tag string) bool {
	_, ok := r.languages[tag]
	return ok
}

// Render implements prettify.Renderer. Diagram fences are rendered through
// the cascade; every other line passes through unstyled. It never fails.
func (r *Renderer) Render(ctx context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	var b prettify.Builder
	lines := block.Lines
	for i := 0; i < len(lines); {
		m := fenceRE.FindStringSubmatch(lines[i])
		if m == nil || !r.Supports(m[1]) {
			b.Push(prettify.PlainLine(lines[i]), i)
			i++
			continue
		}
		start := i
		i++
		for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			i++
		}
		b.Append(r.RenderFence(ctx, m[1], lines[start+1:i], start, cfg))
		if i < len(lines) {
			i++ // Closing fence
		}
	}
	return b.Content(r.Badge()), nil
}

// RenderFence renders the body of one diagram fence whose opening line is
// source line firstSource. The result is either an inline graphic over
// blank placeholder lines or colored source text, never both.
func (r *Renderer) RenderFence(ctx context.Context, tag string, lines []string, firstSource int, cfg prettify.RendererConfig) prettify.RenderedContent {
	lang, ok := r.languages[tag]
	if !ok {
		lang = Language{DisplayName: tag}
	}
	source := strings.Join(lines, "\n")
	if data := r.raster(ctx, tag, lang, source, cfg.Theme); data != nil {
		c, err := r.graphic(lang, data, len(lines), firstSource, cfg)
		if err == nil {
			return c
		}
		r.logger.Debug("diagram decode failed", "tag", tag, "err", err)
	}
	return r.fallback(lang, lines, firstSource, cfg.Theme)
}

// graphic decodes raster bytes and lays out the header line and the blank
// placeholder lines the image is composited over.
func (r *Renderer) graphic(lang Language, data []byte, sourceLines, firstSource int, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return prettify.RenderedContent{}, err
	}
	rgba := imaging.Clone(img)
	pw, ph := rgba.Bounds().Dx(), rgba.Bounds().Dy()

	cellH := cfg.CellHeight
	if cellH <= 0 {
		cellH = 16
	}
	rows := int(math.Ceil(float64(ph) / cellH))
	width := cfg.Width
	if width <= 0 || width > 80 {
		width = 80
	}
	if cfg.CellWidth > 0 {
		width = min(width, int(math.Ceil(float64(pw)/cfg.CellWidth)))
	}

	theme := cfg.Theme
	var b prettify.Builder
	b.PushSegments(firstSource,
		prettify.StyledSegment{Text: " " + lang.DisplayName + " ", Fg: theme.Bg.Ptr(), Bg: theme.Palette[2].Ptr(), Bold: true},
		prettify.StyledSegment{Text: " (rendered)", Fg: theme.Palette[10].Ptr()},
	)
	for i := 0; i < rows; i++ {
		source := prettify.NoSource
		if i < sourceLines {
			source = firstSource + 1 + i
		}
		b.Push(prettify.PlainLine(""), source)
	}
	b.AddGraphic(prettify.InlineGraphic{
		RGBA:        rgba.Pix,
		Row:         1,
		WidthCells:  width,
		HeightCells: rows + 1,
		PixelWidth:  pw,
		PixelHeight: ph,
	})
	return b.Content(r.Badge()), nil
}

// fallback renders the diagram source as colored text under a header.
func (r *Renderer) fallback(lang Language, lines []string, firstSource int, theme prettify.ThemeColors) prettify.RenderedContent {
	var b prettify.Builder
	b.PushSegments(firstSource,
		prettify.StyledSegment{Text: " " + lang.DisplayName + " ", Fg: theme.Bg.Ptr(), Bg: theme.Palette[4].Ptr(), Bold: true},
		prettify.StyledSegment{Text: " (source)", Fg: theme.DimColor().Ptr()},
	)
	syn := syntaxFor(lang)
	for i, line := range lines {
		b.Push(sourceLine(line, syn, theme), firstSource+1+i)
	}
	return b.Content(r.Badge())
}

func sourceLine(line string, syn syntax, theme prettify.ThemeColors) prettify.StyledLine {
	seg := prettify.StyledSegment{Text: "  " + line}
	trimmed := strings.TrimSpace(line)
	switch {
	case hasAnyPrefix(trimmed, syn.comments):
		seg.Fg, seg.Italic = theme.DimColor().Ptr(), true
	case hasAnyPrefix(trimmed, syn.keywords):
		seg.Fg, seg.Bold = theme.KeyColor().Ptr(), true
	case strings.Contains(trimmed, `"`):
		seg.Fg = theme.StringColor().Ptr()
	}
	return prettify.NewLine(seg)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
