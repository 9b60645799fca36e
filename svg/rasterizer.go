// Package svg rasterizes SVG documents to PNG in-process. It covers the
// subset diagram layout engines emit: groups with translate/scale/rotate
// transforms, basic shapes, paths and text.
package svg

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"
	"github.com/fwojciec/prettify"
	"golang.org/x/image/font"
)

// MaxDimension is the largest accepted width or height in pixels.
const MaxDimension = 4096

var _ prettify.Rasterizer = (*Rasterizer)(nil)

// Rasterizer converts SVG to PNG bytes.
type Rasterizer struct {
	fonts  *FontIndex
	logger *log.Logger
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithFontIndex sets the font index used for text. The default is the
// shared system index.
func WithFontIndex(x *FontIndex) Option {
	return func(r *Rasterizer) {
		r.fonts = x
	}
}

// WithLogger sets the logger for rasterization diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Rasterizer) {
		r.logger = l
	}
}

// NewRasterizer creates a rasterizer.
func NewRasterizer(opts ...Option) *Rasterizer {
	r := &Rasterizer{fonts: DefaultFontIndex(), logger: log.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Rasterize implements prettify.Rasterizer. The canvas is filled with bg
// before drawing.
func (r *Rasterizer) Rasterize(svg string, bg prettify.Color) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(RepairFontFamily(svg)); err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	root := doc.SelectElement("svg")
	if root == nil {
		return nil, errors.New("parse svg: missing <svg> root element")
	}
	vp, err := viewportOf(root)
	if err != nil {
		return nil, err
	}
	w, h := int(math.Ceil(vp.width)), int(math.Ceil(vp.height))
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("svg dimensions %dx%d out of range", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB255(int(bg.R), int(bg.G), int(bg.B))
	dc.Clear()
	dc.Scale(vp.sx, vp.sy)
	dc.Translate(-vp.minX, -vp.minY)

	d := &drawer{dc: dc, fonts: r.fonts, scale: math.Min(vp.sx, vp.sy), faces: map[faceKey]font.Face{}}
	d.children(root, defaultStyle())

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	r.logger.Debug("rasterized svg", "width", w, "height", h, "bytes", buf.Len())
	return buf.Bytes(), nil
}

type viewport struct {
	width, height float64 // Output size in pixels
	minX, minY    float64
	sx, sy        float64 // User units to pixels
}

var numberListRE = regexp.MustCompile(`[-+]?(?:\d*\.\d+|\d+\.?)(?:[eE][-+]?\d+)?`)

func viewportOf(root *etree.Element) (viewport, error) {
	vp := viewport{sx: 1, sy: 1}
	var box []float64
	if v := root.SelectAttrValue("viewBox", ""); v != "" {
		box = numbers(v)
		if len(box) != 4 {
			return vp, fmt.Errorf("invalid viewBox %q", v)
		}
		vp.minX, vp.minY = box[0], box[1]
	}
	width, wok := length(root.SelectAttrValue("width", ""))
	height, hok := length(root.SelectAttrValue("height", ""))
	switch {
	case box != nil && !wok && !hok:
		width, height = box[2], box[3]
	case box != nil && !wok:
		width = height * box[2] / box[3]
	case box != nil && !hok:
		height = width * box[3] / box[2]
	}
	vp.width, vp.height = width, height
	if box != nil && box[2] > 0 && box[3] > 0 {
		vp.sx, vp.sy = width/box[2], height/box[3]
	}
	return vp, nil
}

// length parses an absolute SVG length in pixels. Percentages and missing
// values report false.
func length(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	units := map[string]float64{"px": 1, "pt": 4.0 / 3, "pc": 16, "in": 96, "cm": 96 / 2.54, "mm": 96 / 25.4}
	factor := 1.0
	for u, f := range units {
		if strings.HasSuffix(s, u) {
			s, factor = strings.TrimSuffix(s, u), f
			break
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v * factor, true
}

func numbers(s string) []float64 {
	var out []float64
	for _, n := range numberListRE.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(n, 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}
