package prettify

import "fmt"

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// RGB returns the color with the given components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Ptr returns a pointer to a copy of c, for optional segment colors.
func (c Color) Ptr() *Color {
	return &c
}

// Hex returns the color in "#rrggbb" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ThemeColors are the resolved colors renderers paint with.
// Palette follows the ANSI layout: 0-7 normal, 8-15 bright.
type ThemeColors struct {
	Fg      Color
	Bg      Color
	Palette [16]Color
}

// DimColor is used for guides, comments and other de-emphasized text.
func (t ThemeColors) DimColor() Color { return t.Palette[8] }

// StringColor is used for string values.
func (t ThemeColors) StringColor() Color { return t.Palette[2] }

// KeyColor is used for object keys.
func (t ThemeColors) KeyColor() Color { return t.Palette[6] }

// ErrorColor is used for error text.
func (t ThemeColors) ErrorColor() Color { return t.Palette[1] }

// NumberColor is used for numeric values.
func (t ThemeColors) NumberColor() Color { return t.Palette[11] }

// AccentColor is used for emphasized UI text.
func (t ThemeColors) AccentColor() Color { return t.Palette[14] }

// Theme provides the colors for rendering.
// Different implementations can provide light/dark variants.
type Theme interface {
	Name() string
	Colors() ThemeColors
}
