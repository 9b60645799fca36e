package svg_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blue = prettify.RGB(0, 0, 255)

func noFonts() *svg.FontIndex {
	return svg.NewFontIndex(func() []string { return nil })
}

func rasterize(t *testing.T, doc string, bg prettify.Color) image.Image {
	t.Helper()
	data, err := svg.NewRasterizer(svg.WithFontIndex(noFonts())).Rasterize(doc, bg)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func rgb(c color.Color) [3]uint8 {
	r, g, b, _ := c.RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func TestRasterizer_FillsBackgroundAndShapes(t *testing.T) {
	t.Parallel()

	img := rasterize(t, `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="10">
		<rect x="0" y="0" width="10" height="10" fill="#ff0000"/>
	</svg>`, blue)

	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.Equal(t, [3]uint8{255, 0, 0}, rgb(img.At(5, 5)))
	assert.Equal(t, [3]uint8{0, 0, 255}, rgb(img.At(15, 5)))
}

func TestRasterizer_ViewBoxScales(t *testing.T) {
	t.Parallel()

	img := rasterize(t, `<svg width="40" height="20" viewBox="0 0 20 10">
		<g transform="translate(0 0)"><rect width="10" height="10" style="fill: lime"/></g>
	</svg>`, blue)

	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
	assert.Equal(t, [3]uint8{0, 255, 0}, rgb(img.At(10, 10)))
	assert.Equal(t, [3]uint8{0, 0, 255}, rgb(img.At(30, 10)))
}

func TestRasterizer_PointUnits(t *testing.T) {
	t.Parallel()

	img := rasterize(t, `<svg width="30pt" height="15pt" viewBox="0.00 0.00 30.00 15.00"></svg>`, blue)

	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
}

func TestRasterizer_PathsAndPolygons(t *testing.T) {
	t.Parallel()

	img := rasterize(t, `<svg width="40" height="20">
		<polygon points="0,0 20,0 20,20 0,20" fill="white"/>
		<path d="M20,0 h20 v20 h-20 Z" fill="black"/>
	</svg>`, blue)

	assert.Equal(t, [3]uint8{255, 255, 255}, rgb(img.At(10, 10)))
	assert.Equal(t, [3]uint8{0, 0, 0}, rgb(img.At(30, 10)))
}

func TestRasterizer_DrawsText(t *testing.T) {
	t.Parallel()

	img := rasterize(t, `<svg width="60" height="30">
		<text x="30" y="20" text-anchor="middle" font-family="Times,serif" font-size="16" fill="white">Hi</text>
	</svg>`, prettify.RGB(0, 0, 0))

	lit := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !lit; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rgb(img.At(x, y)) != [3]uint8{0, 0, 0} {
				lit = true
				break
			}
		}
	}
	assert.True(t, lit)
}

func TestRasterizer_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"invalid xml", `<svg width="10" height="10"><rect></svg>`},
		{"no svg root", `<html></html>`},
		{"zero size", `<svg width="0" height="10"></svg>`},
		{"over ceiling", `<svg width="5000" height="10"></svg>`},
		{"bad viewBox", `<svg viewBox="0 0 10"></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svg.NewRasterizer(svg.WithFontIndex(noFonts())).Rasterize(tt.doc, blue)
			assert.Error(t, err)
		})
	}
}

func TestRasterizer_RepairsFontFamily(t *testing.T) {
	t.Parallel()

	doc := `<svg width="10" height="10"><text x="0" y="8" font-family="Inter, "Segoe UI", sans-serif">a</text></svg>`
	_, err := svg.NewRasterizer(svg.WithFontIndex(noFonts())).Rasterize(doc, blue)
	assert.NoError(t, err)
}

func TestRepairFontFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "inner quotes",
			in:   `<text font-family="Inter, "Segoe UI", sans-serif">`,
			want: `<text font-family="Inter, 'Segoe UI', sans-serif">`,
		},
		{
			name: "closing before space",
			in:   `<text font-family=""Fira Code"" x="1">`,
			want: `<text font-family="'Fira Code'" x="1">`,
		},
		{
			name: "well formed",
			in:   `<text font-family="sans-serif"/>`,
			want: `<text font-family="sans-serif"/>`,
		},
		{
			name: "no attribute",
			in:   `<rect/>`,
			want: `<rect/>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, svg.RepairFontFamily(tt.in))
		})
	}
}

func TestFontIndex_ListsOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	x := svg.NewFontIndex(func() []string {
		calls.Add(1)
		return []string{"/nonexistent/DejaVuSans.ttf", "/nonexistent/Other.otf"}
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, x.Font("DejaVu Sans", false))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, x.Len())
}
