// Package lipgloss provides themes and an ANSI printer for rendered content
// using the Lipgloss styling library.
package lipgloss

import (
	"fmt"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/colorful"
)

// Compile-time interface verification.
var _ prettify.Theme = (*Theme)(nil)

// Theme implements prettify.Theme with a fixed palette.
type Theme struct {
	name   string
	colors prettify.ThemeColors
}

// Name returns the theme name used in configuration.
func (t *Theme) Name() string {
	return t.name
}

// Colors returns the resolved theme colors.
func (t *Theme) Colors() prettify.ThemeColors {
	return t.colors
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return MochaTheme()
}

// MochaTheme returns the Catppuccin Mocha palette for dark terminal backgrounds.
func MochaTheme() *Theme {
	return newTheme("mocha", "#cdd6f4", "#1e1e2e", [16]string{
		"#45475a", // Surface 1
		"#f38ba8", // Red
		"#a6e3a1", // Green
		"#f9e2af", // Yellow
		"#89b4fa", // Blue
		"#f5c2e7", // Pink
		"#94e2d5", // Teal
		"#bac2de", // Subtext 1
		"#6c7086", // Overlay 0
		"#f38ba8",
		"#a6e3a1",
		"#fab387", // Peach
		"#89b4fa",
		"#cba6f7", // Mauve
		"#89dceb", // Sky
		"#a6adc8", // Subtext 0
	})
}

// LatteTheme returns the Catppuccin Latte palette for light terminal backgrounds.
func LatteTheme() *Theme {
	return newTheme("latte", "#4c4f69", "#eff1f5", [16]string{
		"#5c5f77",
		"#d20f39",
		"#40a02b",
		"#df8e1d",
		"#1e66f5",
		"#ea76cb",
		"#179299",
		"#6c6f85",
		"#9ca0b0",
		"#d20f39",
		"#40a02b",
		"#fe640b",
		"#1e66f5",
		"#8839ef",
		"#04a5e5",
		"#7c7f93",
	})
}

func newTheme(name, fg, bg string, palette [16]string) *Theme {
	t := &Theme{name: name}
	t.colors.Fg = colorful.MustParseHex(fg)
	t.colors.Bg = colorful.MustParseHex(bg)
	for i, hex := range palette {
		t.colors.Palette[i] = colorful.MustParseHex(hex)
	}
	return t
}

// ThemeNames returns the names accepted by ThemeByName.
func ThemeNames() []string {
	return []string{"latte", "mocha"}
}

// ThemeByName returns the named theme. An empty name selects the default.
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case "", "mocha":
		return MochaTheme(), nil
	case "latte":
		return LatteTheme(), nil
	}
	return nil, fmt.Errorf("unknown theme %q (want one of %v)", name, ThemeNames())
}
