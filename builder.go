package prettify

// Builder accumulates rendered lines together with their source mapping so the
// two slices can never drift apart.
type Builder struct {
	lines    []StyledLine
	mapping  []SourceLineMapping
	graphics []InlineGraphic
}

// Push appends a line mapped to source. Use NoSource for synthetic lines.
func (b *Builder) Push(line StyledLine, source int) {
	b.mapping = append(b.mapping, SourceLineMapping{RenderedLine: len(b.lines), SourceLine: source})
	b.lines = append(b.lines, line)
}

// PushSegments appends a line built from segs.
func (b *Builder) PushSegments(source int, segs ...StyledSegment) {
	b.Push(StyledLine{Segments: segs}, source)
}

// Len returns the number of lines pushed so far.
func (b *Builder) Len() int {
	return len(b.lines)
}

// AppendToLast adds segments to the most recent line. It is a no-op when empty.
func (b *Builder) AppendToLast(segs ...StyledSegment) {
	if len(b.lines) == 0 {
		return
	}
	last := &b.lines[len(b.lines)-1]
	last.Segments = append(last.Segments, segs...)
}

// AddGraphic records an inline graphic whose row is relative to this builder.
func (b *Builder) AddGraphic(g InlineGraphic) {
	b.graphics = append(b.graphics, g)
}

// Append merges another rendered content, shifting its rows to follow the
// lines already pushed.
func (b *Builder) Append(c RenderedContent) {
	offset := len(b.lines)
	for i, line := range c.Lines {
		source := NoSource
		if i < len(c.LineMapping) {
			source = c.LineMapping[i].SourceLine
		}
		b.Push(line, source)
	}
	for _, g := range c.Graphics {
		g.Row += offset
		b.graphics = append(b.graphics, g)
	}
}

// Content returns the accumulated output with the given badge.
func (b *Builder) Content(badge string) RenderedContent {
	return RenderedContent{
		Lines:       b.lines,
		LineMapping: b.mapping,
		Graphics:    b.graphics,
		Badge:       badge,
	}
}
