package mock

import (
	"context"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var (
	_ prettify.Detector = (*Detector)(nil)
	_ prettify.Renderer = (*Renderer)(nil)
)

// Detector is a mock implementation of prettify.Detector.
type Detector struct {
	ID           string
	QuickMatchFn func(firstLines []string) bool
	DetectFn     func(block prettify.ContentBlock) (prettify.DetectionResult, bool)
}

func (d *Detector) FormatID() string    { return d.ID }
func (d *Detector) DisplayName() string { return d.ID }

func (d *Detector) QuickMatch(firstLines []string) bool {
	return d.QuickMatchFn(firstLines)
}

func (d *Detector) Detect(block prettify.ContentBlock) (prettify.DetectionResult, bool) {
	return d.DetectFn(block)
}

// Renderer is a mock implementation of prettify.Renderer.
type Renderer struct {
	ID       string
	RenderFn func(ctx context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error)
}

func (r *Renderer) FormatID() string    { return r.ID }
func (r *Renderer) DisplayName() string { return r.ID }
func (r *Renderer) Badge() string       { return r.ID }

func (r *Renderer) Render(ctx context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	return r.RenderFn(ctx, block, cfg)
}
