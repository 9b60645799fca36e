package mock

import (
	"context"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var (
	_ prettify.Viewer    = (*Viewer)(nil)
	_ prettify.Clipboard = (*Clipboard)(nil)
)

// Viewer is a mock implementation of prettify.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, block prettify.ContentBlock, rendered prettify.RenderedContent) error
}

func (v *Viewer) View(ctx context.Context, block prettify.ContentBlock, rendered prettify.RenderedContent) error {
	return v.ViewFn(ctx, block, rendered)
}

// Clipboard is a mock implementation of prettify.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
