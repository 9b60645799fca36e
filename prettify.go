// Package prettify provides domain types for detecting and rendering captured terminal output.
package prettify

import (
	"context"
	"strings"
	"time"
)

// ContentBlock is a captured slice of terminal output plus the context it was captured in.
// A block is immutable once built.
type ContentBlock struct {
	Lines            []string  `json:"lines"`
	PrecedingCommand string    `json:"preceding_command,omitempty"` // Empty when unknown
	StartRow         int       `json:"start_row"`
	EndRow           int       `json:"end_row"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewContentBlock builds a block from raw text, splitting on newlines.
// A single trailing newline does not produce an empty final line.
func NewContentBlock(text, command string) ContentBlock {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	end := len(lines) - 1
	if end < 0 {
		end = 0
	}
	return ContentBlock{
		Lines:            lines,
		PrecedingCommand: command,
		EndRow:           end,
		Timestamp:        time.Now(),
	}
}

// FirstLines returns up to n lines from the start of the block.
func (b ContentBlock) FirstLines(n int) []string {
	if n >= len(b.Lines) {
		return b.Lines
	}
	return b.Lines[:n]
}

// LastLines returns up to n lines from the end of the block.
func (b ContentBlock) LastLines(n int) []string {
	if n >= len(b.Lines) {
		return b.Lines
	}
	return b.Lines[len(b.Lines)-n:]
}

// FullText returns the block's lines joined with newlines.
func (b ContentBlock) FullText() string {
	return strings.Join(b.Lines, "\n")
}

// DetectionSource records how a detection result was produced.
type DetectionSource int

// Detection sources.
const (
	AutoDetected DetectionSource = iota
	UserForced
)

func (s DetectionSource) String() string {
	if s == UserForced {
		return "user_forced"
	}
	return "auto_detected"
}

// DetectionResult is the outcome of running a detector against a block.
type DetectionResult struct {
	FormatID     string          `json:"format_id"`
	Confidence   float64         `json:"confidence"`    // In [0, 1]
	MatchedRules []string        `json:"matched_rules"` // Rule IDs, for explainability
	Source       DetectionSource `json:"source"`
}

// RendererConfig carries everything a renderer needs to know about the display.
type RendererConfig struct {
	Width      int         // Terminal width in columns
	Theme      ThemeColors // Resolved theme colors
	CellWidth  float64     // Cell width in pixels, 0 when unknown
	CellHeight float64     // Cell height in pixels, 0 when unknown
}

// StyledSegment is a run of text sharing one style.
type StyledSegment struct {
	Text          string
	Fg            *Color // nil means terminal default
	Bg            *Color // nil means terminal default
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Link          string // Hyperlink target, empty for none
}

// StyledLine is an ordered list of segments. Their concatenation is the visible text.
type StyledLine struct {
	Segments []StyledSegment
}

// NewLine returns a line made of the given segments.
func NewLine(segs ...StyledSegment) StyledLine {
	return StyledLine{Segments: segs}
}

// PlainLine returns an unstyled line.
func PlainLine(text string) StyledLine {
	return StyledLine{Segments: []StyledSegment{{Text: text}}}
}

// Text returns the visible text of the line.
func (l StyledLine) Text() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// NoSource marks a rendered line that has no corresponding source line.
const NoSource = -1

// SourceLineMapping links a rendered line to the source line it came from.
type SourceLineMapping struct {
	RenderedLine int
	SourceLine   int // NoSource for synthetic lines
}

// HasSource reports whether the rendered line maps back to a source line.
func (m SourceLineMapping) HasSource() bool {
	return m.SourceLine != NoSource
}

// InlineGraphic is a bitmap composited over blank placeholder lines.
type InlineGraphic struct {
	RGBA        []byte // Row-major RGBA pixels, 4 bytes per pixel
	Row         int    // Top-left cell row, relative to the rendered lines
	Col         int    // Top-left cell column
	WidthCells  int
	HeightCells int
	PixelWidth  int
	PixelHeight int
}

// RenderedContent is a renderer's complete output.
type RenderedContent struct {
	Lines       []StyledLine
	LineMapping []SourceLineMapping
	Graphics    []InlineGraphic
	Badge       string
}

// SourceLineFor returns the source line for a rendered line, or NoSource.
func (c RenderedContent) SourceLineFor(rendered int) int {
	if rendered < 0 || rendered >= len(c.LineMapping) {
		return NoSource
	}
	return c.LineMapping[rendered].SourceLine
}

// RenderedLineFor returns the first rendered line that maps to source, or NoSource.
func (c RenderedContent) RenderedLineFor(source int) int {
	for _, m := range c.LineMapping {
		if m.SourceLine == source {
			return m.RenderedLine
		}
	}
	return NoSource
}

// NearestSourceLine returns the source line of the first mapped line at or
// after rendered, looking backwards when none follows. It returns 0 when no
// line has a source.
func (c RenderedContent) NearestSourceLine(rendered int) int {
	rendered = max(0, min(rendered, len(c.LineMapping)-1))
	for i := rendered; i < len(c.LineMapping); i++ {
		if c.LineMapping[i].HasSource() {
			return c.LineMapping[i].SourceLine
		}
	}
	for i := rendered - 1; i >= 0; i-- {
		if c.LineMapping[i].HasSource() {
			return c.LineMapping[i].SourceLine
		}
	}
	return 0
}

// NearestRenderedLine returns the first rendered line whose source is at or
// after source, or the last rendered line when none is.
func (c RenderedContent) NearestRenderedLine(source int) int {
	for _, m := range c.LineMapping {
		if m.HasSource() && m.SourceLine >= source {
			return m.RenderedLine
		}
	}
	return max(0, len(c.LineMapping)-1)
}

// Detector scores a block against one format.
type Detector interface {
	// FormatID returns the format this detector recognizes.
	FormatID() string
	// DisplayName returns a human readable format name.
	DisplayName() string
	// QuickMatch is a cheap pre-check over the first lines of a block.
	// Returning false skips Detect entirely.
	QuickMatch(firstLines []string) bool
	// Detect returns a result when the block matches with enough confidence.
	Detect(block ContentBlock) (DetectionResult, bool)
}

// Renderer turns a block of a known format into styled output.
type Renderer interface {
	FormatID() string
	DisplayName() string
	Badge() string
	// Render returns the styled output for block. Implementations must be safe
	// for concurrent use and must not retain block.
	Render(ctx context.Context, block ContentBlock, cfg RendererConfig) (RenderedContent, error)
}
