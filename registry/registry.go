// Package registry resolves a block's format and dispatches rendering.
//
// Detectors are tried in ascending priority order and the first one whose
// result clears the registry threshold wins. The registry is read-only after
// setup and safe for concurrent Resolve and Render calls.
package registry

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/prettify"
)

// DefaultThreshold is the registry-wide confidence threshold.
const DefaultThreshold = 0.6

type entry struct {
	priority int
	detector prettify.Detector
}

// Registry holds detectors and renderers keyed by format id.
type Registry struct {
	detectors []entry
	renderers map[string]prettify.Renderer
	threshold float64
	logger    *log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithThreshold sets the confidence a detection must reach to win.
func WithThreshold(v float64) Option {
	return func(r *Registry) { r.threshold = v }
}

// WithLogger sets the logger used for detection tracing.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		renderers: make(map[string]prettify.Renderer),
		threshold: DefaultThreshold,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the registry-wide confidence threshold.
func (r *Registry) Threshold() float64 { return r.threshold }

// RegisterDetector adds d. Lower priorities are tried first; equal
// priorities keep registration order.
func (r *Registry) RegisterDetector(priority int, d prettify.Detector) {
	idx := sort.Search(len(r.detectors), func(i int) bool {
		return r.detectors[i].priority > priority
	})
	r.detectors = append(r.detectors, entry{})
	copy(r.detectors[idx+1:], r.detectors[idx:])
	r.detectors[idx] = entry{priority: priority, detector: d}
}

// RegisterRenderer sets the renderer for formatID, replacing any previous one.
func (r *Registry) RegisterRenderer(formatID string, rend prettify.Renderer) {
	r.renderers[formatID] = rend
}

// Detectors returns the detectors in the order Resolve tries them.
func (r *Registry) Detectors() []prettify.Detector {
	out := make([]prettify.Detector, len(r.detectors))
	for i, e := range r.detectors {
		out[i] = e.detector
	}
	return out
}

// Renderer returns the renderer registered for formatID.
func (r *Registry) Renderer(formatID string) (prettify.Renderer, bool) {
	rend, ok := r.renderers[formatID]
	return rend, ok
}

// Formats returns the ids of all registered renderers, sorted.
func (r *Registry) Formats() []string {
	ids := make([]string, 0, len(r.renderers))
	for id := range r.renderers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve returns the first detection, in priority order, that clears the
// threshold. The second result is false when nothing matched.
func (r *Registry) Resolve(block prettify.ContentBlock) (prettify.DetectionResult, bool) {
	first := block.FirstLines(30)
	for _, e := range r.detectors {
		d := e.detector
		if !d.QuickMatch(first) {
			r.logger.Debug("quick match failed", "format", d.FormatID(), "priority", e.priority)
			continue
		}
		res, ok := d.Detect(block)
		if !ok {
			r.logger.Debug("no detection", "format", d.FormatID(), "priority", e.priority)
			continue
		}
		if res.Confidence < r.threshold {
			r.logger.Debug("below threshold", "format", d.FormatID(), "confidence", res.Confidence, "threshold", r.threshold)
			continue
		}
		r.logger.Debug("detected", "format", res.FormatID, "confidence", res.Confidence, "rules", res.MatchedRules)
		res.Source = prettify.AutoDetected
		return res, true
	}
	r.logger.Debug("no format matched", "lines", len(block.Lines))
	return prettify.DetectionResult{}, false
}

// Detect runs the detector for formatID regardless of priority and threshold.
// The result is tagged UserForced. It returns false for an unknown format.
func (r *Registry) Detect(block prettify.ContentBlock, formatID string) (prettify.DetectionResult, bool) {
	for _, e := range r.detectors {
		if e.detector.FormatID() != formatID {
			continue
		}
		res, ok := e.detector.Detect(block)
		if !ok {
			res = prettify.DetectionResult{FormatID: formatID}
		}
		res.Source = prettify.UserForced
		return res, true
	}
	if _, ok := r.renderers[formatID]; ok {
		return prettify.DetectionResult{FormatID: formatID, Source: prettify.UserForced}, true
	}
	return prettify.DetectionResult{}, false
}

// Render renders block with the renderer registered for formatID.
func (r *Registry) Render(ctx context.Context, formatID string, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	rend, ok := r.renderers[formatID]
	if !ok {
		return prettify.RenderedContent{}, &prettify.RenderError{Kind: prettify.RenderFailed, Format: formatID, Err: prettify.ErrUnknownFormat}
	}
	out, err := rend.Render(ctx, block, cfg)
	if err != nil {
		return prettify.RenderedContent{}, err
	}
	if len(out.Lines) != len(out.LineMapping) {
		return prettify.RenderedContent{}, prettify.Errorf(prettify.RenderFailed, formatID,
			"%d lines but %d mappings", len(out.Lines), len(out.LineMapping))
	}
	if len(out.Lines) == 0 && len(block.Lines) > 0 {
		return prettify.RenderedContent{}, prettify.Errorf(prettify.RenderFailed, formatID, "empty output for %d input lines", len(block.Lines))
	}
	return out, nil
}

// Explain describes how every detector scored block, in priority order.
func (r *Registry) Explain(block prettify.ContentBlock) []Explanation {
	first := block.FirstLines(30)
	out := make([]Explanation, 0, len(r.detectors))
	for _, e := range r.detectors {
		ex := Explanation{FormatID: e.detector.FormatID(), Priority: e.priority}
		ex.QuickMatch = e.detector.QuickMatch(first)
		if ex.QuickMatch {
			ex.Result, ex.Matched = e.detector.Detect(block)
		}
		out = append(out, ex)
	}
	return out
}

// Explanation is one detector's verdict on a block.
type Explanation struct {
	FormatID   string
	Priority   int
	QuickMatch bool
	Matched    bool
	Result     prettify.DetectionResult
}

func (e Explanation) String() string {
	switch {
	case !e.QuickMatch:
		return fmt.Sprintf("%-12s skipped (quick match)", e.FormatID)
	case !e.Matched:
		return fmt.Sprintf("%-12s no match", e.FormatID)
	default:
		return fmt.Sprintf("%-12s %.2f %v", e.FormatID, e.Result.Confidence, e.Result.MatchedRules)
	}
}
