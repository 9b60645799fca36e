// Package colorful derives theme colors with go-colorful: tints for subtle
// backgrounds and hex parsing for configured palettes.
package colorful

import (
	"fmt"

	"github.com/fwojciec/prettify"
	"github.com/lucasb-eyer/go-colorful"
)

func toColorful(c prettify.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) prettify.Color {
	r, g, b := c.Clamped().RGB255()
	return prettify.RGB(r, g, b)
}

// Blend mixes from toward to in Lab space. t=0 returns from, t=1 returns to.
func Blend(from, to prettify.Color, t float64) prettify.Color {
	switch {
	case t <= 0:
		return from
	case t >= 1:
		return to
	}
	return fromColorful(toColorful(from).BlendLab(toColorful(to), t))
}

// Tint returns accent blended mostly into bg, for backgrounds that must keep
// text readable. strength is the share of accent, in [0, 1].
func Tint(accent, bg prettify.Color, strength float64) prettify.Color {
	return Blend(bg, accent, strength)
}

// Scale multiplies the lightness of c, keeping its hue.
func Scale(c prettify.Color, factor float64) prettify.Color {
	h, s, l := toColorful(c).Hsl()
	return fromColorful(colorful.Hsl(h, s, min(l*factor, 1)))
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (prettify.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return prettify.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// MustParseHex is like ParseHex but panics on error. Use it for palette literals.
func MustParseHex(s string) prettify.Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
