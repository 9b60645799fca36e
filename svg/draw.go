package svg

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

type faceKey struct {
	family string
	bold   bool
	size   float64
}

// drawer paints one document. It is not shared between calls.
type drawer struct {
	dc    *gg.Context
	fonts *FontIndex
	scale float64 // Root user unit to pixel factor, for widths and font sizes
	faces map[faceKey]font.Face
}

func (d *drawer) children(el *etree.Element, s style) {
	for _, child := range el.ChildElements() {
		d.element(child, s)
	}
}

func (d *drawer) element(el *etree.Element, parent style) {
	s := parent.apply(el)
	d.dc.Push()
	defer d.dc.Pop()
	d.transform(el.SelectAttrValue("transform", ""))

	attr := func(name string) float64 {
		v, _ := length(el.SelectAttrValue(name, "0"))
		return v
	}
	switch el.Tag {
	case "g", "a", "svg", "switch":
		d.children(el, s)
	case "rect":
		w, h := attr("width"), attr("height")
		if w <= 0 || h <= 0 {
			return
		}
		if rx := math.Max(attr("rx"), attr("ry")); rx > 0 {
			d.dc.DrawRoundedRectangle(attr("x"), attr("y"), w, h, rx)
		} else {
			d.dc.DrawRectangle(attr("x"), attr("y"), w, h)
		}
		d.paint(s)
	case "circle":
		d.dc.DrawCircle(attr("cx"), attr("cy"), attr("r"))
		d.paint(s)
	case "ellipse":
		d.dc.DrawEllipse(attr("cx"), attr("cy"), attr("rx"), attr("ry"))
		d.paint(s)
	case "line":
		d.dc.DrawLine(attr("x1"), attr("y1"), attr("x2"), attr("y2"))
		s.fill = nil
		d.paint(s)
	case "polygon", "polyline":
		pts := numbers(el.SelectAttrValue("points", ""))
		if len(pts) < 4 {
			return
		}
		d.dc.MoveTo(pts[0], pts[1])
		for i := 2; i+1 < len(pts); i += 2 {
			d.dc.LineTo(pts[i], pts[i+1])
		}
		if el.Tag == "polygon" {
			d.dc.ClosePath()
		}
		d.paint(s)
	case "path":
		tracePath(d.dc, el.SelectAttrValue("d", ""))
		d.paint(s)
	case "text":
		d.text(el, s)
	}
}

// paint fills and then strokes the current path.
func (d *drawer) paint(s style) {
	if fill := withOpacity(s.fill, s.opacity); fill != nil {
		d.dc.SetColor(fill)
		d.dc.FillPreserve()
	}
	if stroke := withOpacity(s.stroke, s.opacity); stroke != nil && s.strokeWidth > 0 {
		d.dc.SetColor(stroke)
		d.dc.SetLineWidth(s.strokeWidth * d.scale)
		d.dc.StrokePreserve()
	}
	d.dc.ClearPath()
}

func (d *drawer) text(el *etree.Element, s style) {
	content := strings.Join(strings.Fields(textContent(el)), " ")
	fill := withOpacity(s.fill, s.opacity)
	if content == "" || fill == nil {
		return
	}
	var x, y float64
	if xs := numbers(el.SelectAttrValue("x", "")); len(xs) > 0 {
		x = xs[0]
	}
	if ys := numbers(el.SelectAttrValue("y", "")); len(ys) > 0 {
		y = ys[0]
	}
	ax := 0.0
	switch s.anchor {
	case "middle":
		ax = 0.5
	case "end":
		ax = 1
	}
	d.dc.SetFontFace(d.face(s))
	d.dc.SetColor(fill)
	d.dc.DrawStringAnchored(content, x, y, ax, 0)
}

func (d *drawer) face(s style) font.Face {
	key := faceKey{family: s.fontFamily, bold: s.bold, size: s.fontSize * d.scale}
	if f, ok := d.faces[key]; ok {
		return f
	}
	f := d.fonts.Face(key.family, key.bold, key.size)
	d.faces[key] = f
	return f
}

func textContent(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			sb.WriteString(textContent(t))
		}
	}
	return sb.String()
}

var transformRE = regexp.MustCompile(`(\w+)\s*\(([^)]*)\)`)

// transform applies translate, scale and rotate functions. Other transform
// functions are ignored.
func (d *drawer) transform(v string) {
	for _, m := range transformRE.FindAllStringSubmatch(v, -1) {
		args := numbers(m[2])
		switch m[1] {
		case "translate":
			if len(args) == 1 {
				args = append(args, 0)
			}
			if len(args) == 2 {
				d.dc.Translate(args[0], args[1])
			}
		case "scale":
			if len(args) == 1 {
				args = append(args, args[0])
			}
			if len(args) == 2 {
				d.dc.Scale(args[0], args[1])
			}
		case "rotate":
			switch len(args) {
			case 1:
				d.dc.Rotate(gg.Radians(args[0]))
			case 3:
				d.dc.RotateAbout(gg.Radians(args[0]), args[1], args[2])
			}
		}
	}
}

var pathTokenRE = regexp.MustCompile(`[MmLlHhVvCcSsQqTtAaZz]|[-+]?(?:\d*\.\d+|\d+\.?)(?:[eE][-+]?\d+)?`)

// arity is the number of arguments each path command consumes.
var arity = map[byte]int{'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0}

// tracePath adds the path data d to the context's current path. Elliptical
// arcs are approximated by a line to their end point.
func tracePath(dc *gg.Context, d string) {
	var (
		cmd          byte
		args         []float64
		x, y         float64 // Current point
		sx, sy       float64 // Subpath start
		cx, cy       float64 // Last control point, for S and T
		lastWasCurve bool
	)
	flush := func() {
		upper := cmd &^ 0x20
		n := arity[upper]
		a := args[:n]
		rel := cmd != upper
		abs := func(i int) (float64, float64) {
			if rel {
				return x + a[i], y + a[i+1]
			}
			return a[i], a[i+1]
		}
		curve := false
		switch upper {
		case 'M':
			x, y = abs(0)
			sx, sy = x, y
			dc.MoveTo(x, y)
			// Extra coordinate pairs after a move are line segments.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			x, y = abs(0)
			dc.LineTo(x, y)
		case 'H':
			if rel {
				x += a[0]
			} else {
				x = a[0]
			}
			dc.LineTo(x, y)
		case 'V':
			if rel {
				y += a[0]
			} else {
				y = a[0]
			}
			dc.LineTo(x, y)
		case 'C':
			x1, y1 := abs(0)
			x2, y2 := abs(2)
			ex, ey := abs(4)
			dc.CubicTo(x1, y1, x2, y2, ex, ey)
			cx, cy, x, y, curve = x2, y2, ex, ey, true
		case 'S':
			x1, y1 := x, y
			if lastWasCurve {
				x1, y1 = 2*x-cx, 2*y-cy
			}
			x2, y2 := abs(0)
			ex, ey := abs(2)
			dc.CubicTo(x1, y1, x2, y2, ex, ey)
			cx, cy, x, y, curve = x2, y2, ex, ey, true
		case 'Q':
			x1, y1 := abs(0)
			ex, ey := abs(2)
			dc.QuadraticTo(x1, y1, ex, ey)
			cx, cy, x, y, curve = x1, y1, ex, ey, true
		case 'T':
			x1, y1 := x, y
			if lastWasCurve {
				x1, y1 = 2*x-cx, 2*y-cy
			}
			ex, ey := abs(0)
			dc.QuadraticTo(x1, y1, ex, ey)
			cx, cy, x, y, curve = x1, y1, ex, ey, true
		case 'A':
			x, y = abs(5)
			dc.LineTo(x, y)
		case 'Z':
			dc.ClosePath()
			x, y = sx, sy
		}
		lastWasCurve = curve
		args = args[:0]
	}
	for _, tok := range pathTokenRE.FindAllString(d, -1) {
		if c := tok[0]; (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			cmd, args = c, nil
			if c == 'Z' || c == 'z' {
				flush()
			}
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || cmd == 0 {
			continue
		}
		args = append(args, v)
		if n := arity[cmd&^0x20]; n > 0 && len(args) == n {
			flush()
		}
	}
}
