package svg

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/prettify/colorful"
	"golang.org/x/image/colornames"
)

// style is the inherited presentation state. A nil paint draws nothing.
type style struct {
	fill        color.Color
	stroke      color.Color
	strokeWidth float64
	opacity     float64
	fontFamily  string
	fontSize    float64
	bold        bool
	anchor      string
}

func defaultStyle() style {
	return style{
		fill:        color.Black,
		strokeWidth: 1,
		opacity:     1,
		fontFamily:  "sans-serif",
		fontSize:    14,
		anchor:      "start",
	}
}

// apply returns s updated with el's presentation attributes and its style
// declarations, which take precedence.
func (s style) apply(el *etree.Element) style {
	props := map[string]string{}
	for _, a := range el.Attr {
		props[a.Key] = a.Value
	}
	for _, decl := range strings.Split(el.SelectAttrValue("style", ""), ";") {
		if k, v, ok := strings.Cut(decl, ":"); ok {
			props[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	if v, ok := props["fill"]; ok {
		s.fill = parsePaint(v, s.fill)
	}
	if v, ok := props["stroke"]; ok {
		s.stroke = parsePaint(v, s.stroke)
	}
	if v, ok := props["stroke-width"]; ok {
		if w, ok := length(v); ok {
			s.strokeWidth = w
		}
	}
	if v, ok := props["opacity"]; ok {
		if o, err := strconv.ParseFloat(v, 64); err == nil {
			s.opacity *= o
		}
	}
	if v, ok := props["font-family"]; ok {
		s.fontFamily = v
	}
	if v, ok := props["font-size"]; ok {
		if size, ok := length(v); ok {
			s.fontSize = size
		}
	}
	if v, ok := props["font-weight"]; ok {
		n, err := strconv.Atoi(v)
		s.bold = v == "bold" || v == "bolder" || err == nil && n >= 600
	}
	if v, ok := props["text-anchor"]; ok {
		s.anchor = v
	}
	return s
}

// parsePaint parses an SVG paint value. Unsupported values keep current.
func parsePaint(v string, current color.Color) color.Color {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case v == "none" || v == "transparent":
		return nil
	case v == "currentcolor":
		return current
	case strings.HasPrefix(v, "#"):
		c, err := colorful.ParseHex(v)
		if err != nil {
			return current
		}
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		parts := numbers(v)
		if len(parts) != 3 {
			return current
		}
		return color.RGBA{R: clamp(parts[0]), G: clamp(parts[1]), B: clamp(parts[2]), A: 0xff}
	}
	if c, ok := colornames.Map[v]; ok {
		return c
	}
	return current
}

func clamp(v float64) uint8 {
	return uint8(max(0, min(255, v)))
}

// withOpacity scales the alpha of c.
func withOpacity(c color.Color, opacity float64) color.Color {
	if c == nil || opacity >= 1 {
		return c
	}
	r, g, b, a := c.RGBA()
	o := max(0, opacity)
	return color.NRGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(float64(a) * o)}
}
