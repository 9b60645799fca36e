// Package graphviz lays out DOT diagrams in-process with go-graphviz.
package graphviz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fwojciec/prettify"
	"github.com/goccy/go-graphviz"
)

var _ prettify.GraphRenderer = (*Renderer)(nil)

// Renderer renders DOT source to SVG.
type Renderer struct{}

// NewRenderer creates a DOT renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderSVG implements prettify.GraphRenderer.
func (r *Renderer) RenderSVG(ctx context.Context, source string) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(source))
	if err != nil {
		return "", fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
