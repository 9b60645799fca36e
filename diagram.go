package prettify

import "context"

// Rasterizer converts an SVG document to PNG bytes on a solid background.
type Rasterizer interface {
	Rasterize(svg string, bg Color) ([]byte, error)
}

// GraphRenderer lays out diagram source in-process and returns SVG.
type GraphRenderer interface {
	RenderSVG(ctx context.Context, source string) (string, error)
}

// DiagramClient renders diagram source through a remote service.
type DiagramClient interface {
	// RenderPNG posts source for the given diagram type and returns PNG bytes.
	RenderPNG(ctx context.Context, diagramType, source string) ([]byte, error)
}

// CommandRunner runs an external command to completion.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// CommandFilter pipes input through an external command and returns its stdout.
type CommandFilter interface {
	Filter(ctx context.Context, input []byte, name string, args ...string) ([]byte, error)
}

// RasterCache stores rendered diagram images by content key.
type RasterCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, data []byte) error
}
