package mock

import (
	"context"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var (
	_ prettify.Rasterizer    = (*Rasterizer)(nil)
	_ prettify.GraphRenderer = (*GraphRenderer)(nil)
	_ prettify.DiagramClient = (*DiagramClient)(nil)
	_ prettify.CommandRunner = (*CommandRunner)(nil)
	_ prettify.CommandFilter = (*CommandFilter)(nil)
	_ prettify.RasterCache   = (*RasterCache)(nil)
)

// Rasterizer is a mock implementation of prettify.Rasterizer.
type Rasterizer struct {
	RasterizeFn func(svg string, bg prettify.Color) ([]byte, error)
}

func (r *Rasterizer) Rasterize(svg string, bg prettify.Color) ([]byte, error) {
	return r.RasterizeFn(svg, bg)
}

// GraphRenderer is a mock implementation of prettify.GraphRenderer.
type GraphRenderer struct {
	RenderSVGFn func(ctx context.Context, source string) (string, error)
}

func (g *GraphRenderer) RenderSVG(ctx context.Context, source string) (string, error) {
	return g.RenderSVGFn(ctx, source)
}

// DiagramClient is a mock implementation of prettify.DiagramClient.
type DiagramClient struct {
	RenderPNGFn func(ctx context.Context, diagramType, source string) ([]byte, error)
}

func (c *DiagramClient) RenderPNG(ctx context.Context, diagramType, source string) ([]byte, error) {
	return c.RenderPNGFn(ctx, diagramType, source)
}

// CommandRunner is a mock implementation of prettify.CommandRunner.
type CommandRunner struct {
	RunFn func(ctx context.Context, name string, args ...string) error
}

func (c *CommandRunner) Run(ctx context.Context, name string, args ...string) error {
	return c.RunFn(ctx, name, args...)
}

// RasterCache is a mock implementation of prettify.RasterCache.
type RasterCache struct {
	GetFn func(key string) ([]byte, bool)
	PutFn func(key string, data []byte) error
}

func (c *RasterCache) Get(key string) ([]byte, bool) {
	return c.GetFn(key)
}

func (c *RasterCache) Put(key string, data []byte) error {
	return c.PutFn(key, data)
}

// CommandFilter is a mock implementation of prettify.CommandFilter.
type CommandFilter struct {
	FilterFn func(ctx context.Context, input []byte, name string, args ...string) ([]byte, error)
}

func (f *CommandFilter) Filter(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	return f.FilterFn(ctx, input, name, args...)
}
