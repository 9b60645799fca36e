// Package yamltree renders YAML documents as an indented tree with depth guides.
package yamltree

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/tree"
	"gopkg.in/yaml.v3"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Options control YAML rendering.
type Options struct {
	MaxDepthExpanded int `toml:"max_depth_expanded"`
}

// DefaultOptions returns the default YAML options.
func DefaultOptions() Options {
	return Options{MaxDepthExpanded: 4}
}

// Renderer renders YAML.
type Renderer struct {
	opts Options
}

// NewRenderer creates a YAML renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "yaml" }
func (r *Renderer) DisplayName() string { return "YAML" }
func (r *Renderer) Badge() string       { return "YAML" }

// Render implements prettify.Renderer. Input yaml.v3 cannot parse is echoed
// as plain lines.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	var b prettify.Builder
	entries, err := structure(block.FullText())
	if err != nil {
		for i, line := range block.Lines {
			b.Push(prettify.PlainLine(line), i)
		}
		return b.Content(r.Badge()), nil
	}

	p := painter{theme: cfg.Theme}
	depth, skip := 0, -1
	for i, line := range block.Lines {
		e, structural := entries[i+1]
		if structural {
			depth = e.depth
		}
		if skip >= 0 {
			if !structural || e.depth > skip {
				continue
			}
			skip = -1
		}
		content := strings.TrimSpace(line)
		switch {
		case content == "":
			b.Push(prettify.PlainLine(""), i)
		case content == "---" || content == "...":
			b.PushSegments(i, p.dim(content))
		case !structural:
			// Comments and block scalar bodies sit under the last structural line.
			segs := []prettify.StyledSegment{tree.Guide(depth+1, cfg.Theme)}
			if strings.HasPrefix(content, "#") {
				segs[0] = tree.Guide(depth, cfg.Theme)
				segs = append(segs, tree.Annotation(content, cfg.Theme))
			} else {
				segs = append(segs, prettify.StyledSegment{Text: content, Fg: cfg.Theme.StringColor().Ptr()})
			}
			b.PushSegments(i, segs...)
		case e.child != nil && e.depth >= r.opts.MaxDepthExpanded:
			segs := append([]prettify.StyledSegment{tree.Guide(e.depth, cfg.Theme)}, p.collapsedLine(content, e)...)
			b.PushSegments(i, segs...)
			skip = e.depth
		default:
			segs := append([]prettify.StyledSegment{tree.Guide(e.depth, cfg.Theme)}, p.line(content)...)
			b.PushSegments(i, segs...)
		}
	}
	return b.Content(r.Badge()), nil
}

// entry describes a source line that starts a node.
type entry struct {
	depth int
	child *yaml.Node // Block collection owned by the line, nil otherwise
}

// structure decodes every document in text and indexes the lines that start
// nodes, keyed by 1-based line number.
func structure(text string) (map[int]entry, error) {
	entries := make(map[int]entry)
	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		for _, n := range doc.Content {
			walk(entries, n, 0)
		}
	}
}

func isBlock(n *yaml.Node) bool {
	return (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) &&
		n.Style&yaml.FlowStyle == 0 && len(n.Content) > 0
}

func set(entries map[int]entry, line int, e entry) {
	if _, ok := entries[line]; !ok {
		entries[line] = e
	}
}

func walk(entries map[int]entry, n *yaml.Node, depth int) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if isBlock(v) && v.Line > k.Line {
				set(entries, k.Line, entry{depth: depth, child: v})
				walk(entries, v, depth+1)
				continue
			}
			set(entries, k.Line, entry{depth: depth})
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if isBlock(item) {
				set(entries, item.Line, entry{depth: depth, child: item})
				walk(entries, item, depth+1)
				continue
			}
			set(entries, item.Line, entry{depth: depth})
		}
	default:
		set(entries, n.Line, entry{depth: depth})
	}
}

var keyRE = regexp.MustCompile(`^("[^"]*"|'[^']*'|[^\s#'"\[\{-][^:#]*?|-[^\s:#][^:#]*?)\s*:(\s|$)`)

type painter struct {
	theme prettify.ThemeColors
}

func (p painter) dim(text string) prettify.StyledSegment {
	return prettify.StyledSegment{Text: text, Fg: p.theme.DimColor().Ptr()}
}

// line styles one structural line with its indentation already removed.
func (p painter) line(content string) []prettify.StyledSegment {
	if strings.HasPrefix(content, "#") {
		return []prettify.StyledSegment{tree.Annotation(content, p.theme)}
	}
	var segs []prettify.StyledSegment
	for content == "-" || strings.HasPrefix(content, "- ") {
		segs = append(segs, p.dim("- "))
		content = strings.TrimLeft(strings.TrimPrefix(content, "-"), " ")
	}
	if m := keyRE.FindStringSubmatchIndex(content); m != nil {
		key := content[m[2]:m[3]]
		segs = append(segs,
			prettify.StyledSegment{Text: key, Fg: p.theme.KeyColor().Ptr()},
			p.dim(":"),
		)
		rest := content[m[3]:]
		rest = rest[strings.Index(rest, ":")+1:]
		if strings.TrimSpace(rest) == "" {
			return segs
		}
		segs = append(segs, prettify.StyledSegment{Text: " "})
		content = strings.TrimSpace(rest)
	}
	return append(segs, p.value(content)...)
}

// collapsedLine renders the owning line followed by a summary of its children.
func (p painter) collapsedLine(content string, e entry) []prettify.StyledSegment {
	kind, open, close, n := tree.Object, "{", "}", len(e.child.Content)/2
	if e.child.Kind == yaml.SequenceNode {
		kind, open, close, n = tree.Array, "[", "]", len(e.child.Content)
	}
	summary := tree.Collapsed(open, close, kind, n, p.theme)
	if strings.HasPrefix(content, "-") {
		return append([]prettify.StyledSegment{p.dim("- ")}, summary...)
	}
	segs := append(p.line(content), prettify.StyledSegment{Text: " "})
	return append(segs, summary...)
}

// value styles a scalar, splitting off a trailing comment.
func (p painter) value(v string) []prettify.StyledSegment {
	if v == "" {
		return nil
	}
	start := 0
	if q := v[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(v[1:], q); end >= 0 {
			start = end + 2
		}
	}
	var comment string
	if i := strings.Index(v[start:], " #"); i >= 0 {
		v, comment = strings.TrimRight(v[:start+i], " "), v[start+i:]
	}
	segs := []prettify.StyledSegment{p.scalar(v)}
	if comment != "" {
		segs = append(segs, tree.Annotation(comment, p.theme))
	}
	return segs
}

var numberRE = regexp.MustCompile(`^[-+]?(\d[\d_]*(\.\d*)?([eE][-+]?\d+)?|0x[0-9a-fA-F]+|0o[0-7]+|\.inf|\.nan)$`)

func (p painter) scalar(v string) prettify.StyledSegment {
	seg := prettify.StyledSegment{Text: v}
	switch {
	case v == "|" || v == ">" || strings.HasPrefix(v, "|") || strings.HasPrefix(v, ">"):
		seg.Fg = p.theme.DimColor().Ptr()
	case strings.HasPrefix(v, `"`) || strings.HasPrefix(v, "'"):
		seg.Fg = p.theme.StringColor().Ptr()
	case v == "null" || v == "~" || v == "Null" || v == "NULL":
		seg.Fg = p.theme.DimColor().Ptr()
		seg.Italic = true
	case isBool(v):
		seg.Fg = p.theme.Palette[5].Ptr()
	case numberRE.MatchString(v):
		seg.Fg = p.theme.NumberColor().Ptr()
	case strings.HasPrefix(v, "&") || strings.HasPrefix(v, "*") || strings.HasPrefix(v, "!"):
		seg.Fg = p.theme.Palette[13].Ptr()
	case strings.HasPrefix(v, "{") || strings.HasPrefix(v, "["):
	default:
		seg.Fg = p.theme.StringColor().Ptr()
	}
	return seg
}

func isBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no", "on", "off":
		return true
	}
	return false
}
