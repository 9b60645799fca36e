package diagram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/fs"
)

// errUnavailable marks a tier with nothing configured for a language.
var errUnavailable = errors.New("not configured")

type tier struct {
	name   Engine
	render func(ctx context.Context, lang Language, source string, theme prettify.ThemeColors) ([]byte, error)
}

func (r *Renderer) tiers() []tier {
	native := tier{EngineNative, r.native}
	local := tier{EngineLocal, r.local}
	kroki := tier{EngineKroki, r.kroki}
	switch r.opts.Engine {
	case EngineNative:
		return []tier{native}
	case EngineLocal:
		return []tier{local}
	case EngineKroki:
		return []tier{kroki}
	case EngineTextFallback:
		return nil
	}
	return []tier{native, local, kroki}
}

// raster runs the configured tiers in order and returns the first non-empty
// raster, or nil when every tier failed. Failures are logged, never returned.
func (r *Renderer) raster(ctx context.Context, tag string, lang Language, source string, theme prettify.ThemeColors) []byte {
	tiers := r.tiers()
	if len(tiers) == 0 {
		return nil
	}
	var key string
	if r.cache != nil && r.opts.Cache {
		key = fs.Key(tag, string(r.opts.Engine), theme.Bg.Hex(), source)
		if data, ok := r.cache.Get(key); ok {
			r.logger.Debug("diagram cache hit", "tag", tag)
			return data
		}
	}
	for _, t := range tiers {
		data, err := t.render(ctx, lang, source, theme)
		if err == nil && len(data) == 0 {
			err = errors.New("empty output")
		}
		if err != nil {
			r.logger.Debug("diagram tier failed", "tier", t.name, "tag", tag, "err", err)
			continue
		}
		r.logger.Debug("diagram tier succeeded", "tier", t.name, "tag", tag, "bytes", len(data))
		if key != "" {
			if err := r.cache.Put(key, data); err != nil {
				r.logger.Debug("diagram cache write failed", "err", err)
			}
		}
		return data
	}
	return nil
}

// native lays out DOT source in-process and rasterizes the SVG on the
// theme background.
func (r *Renderer) native(ctx context.Context, lang Language, source string, theme prettify.ThemeColors) ([]byte, error) {
	if lang.KrokiType != nativeType || r.graphs == nil || r.rasterizer == nil {
		return nil, errUnavailable
	}
	svg, err := r.graphs.RenderSVG(ctx, source)
	if err != nil {
		return nil, err
	}
	return r.rasterizer.Rasterize(svg, theme.Bg)
}

// local writes source to a scratch directory, runs the language's command
// with the path placeholders substituted, and reads the output file back.
// The scratch directory is unique per call and always removed.
func (r *Renderer) local(ctx context.Context, lang Language, source string, _ prettify.ThemeColors) ([]byte, error) {
	if lang.Command == "" || r.runner == nil {
		return nil, errUnavailable
	}
	dir, err := os.MkdirTemp(r.tempDir, "prettify-diagram-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input."+lang.InputExtension())
	output := filepath.Join(dir, "output.png")
	if err := os.WriteFile(input, []byte(source), 0600); err != nil {
		return nil, fmt.Errorf("write diagram source: %w", err)
	}
	args := make([]string, len(lang.Args))
	for i, a := range lang.Args {
		switch a {
		case InputPlaceholder:
			args[i] = input
		case OutputPlaceholder:
			args[i] = output
		default:
			args[i] = a
		}
	}
	if err := r.runner.Run(ctx, lang.Command, args...); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read diagram output: %w", err)
	}
	return data, nil
}

func (r *Renderer) kroki(ctx context.Context, lang Language, source string, _ prettify.ThemeColors) ([]byte, error) {
	if lang.KrokiType == "" || r.client == nil {
		return nil, errUnavailable
	}
	return r.client.RenderPNG(ctx, lang.KrokiType, source)
}
