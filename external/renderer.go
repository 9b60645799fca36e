// Package external renders user-configured formats by piping the block
// through an external command.
package external

import (
	"context"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/prettify"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Renderer sends the block to a command on stdin and shows its stdout with
// escape sequences removed. Output line i maps to source line i while the
// source has that many lines.
type Renderer struct {
	id      string
	name    string
	command string
	args    []string
	filter  prettify.CommandFilter
}

// NewRenderer creates a renderer for format id that runs command with args.
func NewRenderer(id, name, command string, args []string, filter prettify.CommandFilter) *Renderer {
	return &Renderer{id: id, name: name, command: command, args: args, filter: filter}
}

func (r *Renderer) FormatID() string    { return r.id }
func (r *Renderer) DisplayName() string { return r.name }

// Badge is the first three characters of the format id, upper-cased.
func (r *Renderer) Badge() string {
	runes := []rune(r.id)
	return strings.ToUpper(string(runes[:min(3, len(runes))]))
}

// Render implements prettify.Renderer.
func (r *Renderer) Render(ctx context.Context, block prettify.ContentBlock, _ prettify.RendererConfig) (prettify.RenderedContent, error) {
	out, err := r.filter.Filter(ctx, []byte(block.FullText()), r.command, r.args...)
	if err != nil {
		return prettify.RenderedContent{}, err
	}
	text := strings.TrimSuffix(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	var b prettify.Builder
	if text == "" {
		return b.Content(r.Badge()), nil
	}
	for i, line := range strings.Split(text, "\n") {
		source := prettify.NoSource
		if i < len(block.Lines) {
			source = i
		}
		b.Push(prettify.PlainLine(ansi.Strip(line)), source)
	}
	return b.Content(r.Badge()), nil
}
