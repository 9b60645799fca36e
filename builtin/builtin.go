// Package builtin assembles the default registry: every detector and
// renderer, configured from a config.Config.
package builtin

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/chroma"
	"github.com/fwojciec/prettify/config"
	"github.com/fwojciec/prettify/csv"
	"github.com/fwojciec/prettify/detect"
	"github.com/fwojciec/prettify/diagram"
	"github.com/fwojciec/prettify/diff"
	"github.com/fwojciec/prettify/external"
	"github.com/fwojciec/prettify/fs"
	"github.com/fwojciec/prettify/gitdiff"
	"github.com/fwojciec/prettify/graphviz"
	"github.com/fwojciec/prettify/jsontree"
	"github.com/fwojciec/prettify/kroki"
	"github.com/fwojciec/prettify/logs"
	"github.com/fwojciec/prettify/markdown"
	"github.com/fwojciec/prettify/process"
	"github.com/fwojciec/prettify/registry"
	"github.com/fwojciec/prettify/sqlresults"
	"github.com/fwojciec/prettify/stacktrace"
	"github.com/fwojciec/prettify/svg"
	"github.com/fwojciec/prettify/tomltree"
	"github.com/fwojciec/prettify/worddiff"
	"github.com/fwojciec/prettify/xmltree"
	"github.com/fwojciec/prettify/yamltree"
)

// Default detector priorities. Lower runs first.
const (
	PriorityDiagrams   = 10
	PriorityDiff       = 20
	PriorityStackTrace = 30
	PriorityLog        = 40
	PrioritySQLResults = 45
	PriorityJSON       = 50
	PriorityMarkdown   = 60
	PriorityXML        = 70
	PriorityTOML       = 75
	PriorityYAML       = 80
	PriorityCSV        = 85
)

type settings struct {
	logger   *log.Logger
	cacheDir string
	offline  bool
	local    bool
}

// Option configures NewRegistry.
type Option func(*settings)

// WithLogger sets the logger shared by the registry and the diagram cascade.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithCacheDir sets where rendered diagrams are cached. The default is the
// XDG cache directory.
func WithCacheDir(dir string) Option {
	return func(s *settings) {
		s.cacheDir = dir
	}
}

// WithOffline leaves the Kroki tier unconfigured.
func WithOffline() Option {
	return func(s *settings) {
		s.offline = true
	}
}

// WithoutLocalCommands leaves the local command tier unconfigured.
func WithoutLocalCommands() Option {
	return func(s *settings) {
		s.local = false
	}
}

// NewRegistry builds a registry with every built-in format. Detectors the
// configuration disables are not registered; their renderers still are, so
// forced rendering keeps working.
func NewRegistry(cfg config.Config, opts ...Option) (*registry.Registry, error) {
	s := &settings{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		local:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := registry.New(
		registry.WithThreshold(cfg.ConfidenceThreshold),
		registry.WithLogger(s.logger),
	)

	tokenizer := chroma.NewTokenizer()
	languages := chroma.NewDetector()
	diagrams := newDiagramRenderer(cfg.Diagrams, s)

	renderers := []prettify.Renderer{
		diagrams,
		diff.NewRenderer(cfg.Renderers.Diff, gitdiff.NewParser(),
			diff.WithWordDiffer(worddiff.NewDiffer()),
			diff.WithSyntax(tokenizer, languages),
		),
		stacktrace.NewRenderer(cfg.Renderers.StackTrace),
		logs.NewRenderer(cfg.Renderers.Log),
		jsontree.NewRenderer(cfg.Renderers.JSON),
		markdown.NewRenderer(cfg.Renderers.Markdown,
			markdown.WithSyntax(tokenizer, languages),
			markdown.WithDiagrams(diagrams),
		),
		xmltree.NewRenderer(cfg.Renderers.XML),
		tomltree.NewRenderer(cfg.Renderers.TOML),
		yamltree.NewRenderer(cfg.Renderers.YAML),
		sqlresults.NewRenderer(cfg.Renderers.SQLResults),
		csv.NewRenderer(cfg.Renderers.CSV),
	}
	for _, r := range renderers {
		reg.RegisterRenderer(r.FormatID(), r)
	}

	detectors := []struct {
		priority int
		detector *detect.Detector
	}{
		{PriorityDiagrams, detect.Diagrams(diagramTags(cfg.Diagrams))},
		{PriorityDiff, detect.Diff()},
		{PriorityStackTrace, detect.StackTrace()},
		{PriorityLog, detect.Log()},
		{PriorityJSON, detect.JSON()},
		{PriorityMarkdown, detect.Markdown()},
		{PriorityXML, detect.XML()},
		{PriorityTOML, detect.TOML()},
		{PriorityYAML, detect.YAML()},
		{PrioritySQLResults, detect.SQLResults()},
		{PriorityCSV, detect.CSV()},
	}
	for _, d := range detectors {
		dc := cfg.Detector(d.detector.FormatID())
		if !dc.IsEnabled() {
			s.logger.Debug("detector disabled", "format", d.detector.FormatID())
			continue
		}
		overrides, err := dc.RuleOverrides()
		if err != nil {
			return nil, err
		}
		rules, err := dc.UserRules()
		if err != nil {
			return nil, err
		}
		d.detector.ApplyOverrides(overrides)
		d.detector.MergeUserRules(rules)
		reg.RegisterDetector(dc.PriorityOr(d.priority), d.detector)
	}
	if err := registerCustom(reg, cfg.CustomRenderers, s); err != nil {
		return nil, err
	}
	return reg, nil
}

// registerCustom adds the user-configured formats. An entry without patterns
// is only reachable by forcing its format; one without a command can be
// detected but not rendered. A custom id may not shadow a built-in format.
func registerCustom(reg *registry.Registry, custom []config.CustomRenderer, s *settings) error {
	if len(custom) == 0 {
		return nil
	}
	builtins := reg.Formats()
	runner := process.NewRunner()
	for _, c := range custom {
		if slices.Contains(builtins, c.ID) {
			return fmt.Errorf("custom renderer %q: id is a built-in format", c.ID)
		}
		if c.RenderCommand != "" {
			reg.RegisterRenderer(c.ID, external.NewRenderer(c.ID, c.DisplayName(), c.RenderCommand, c.RenderArgs, runner))
		}
		if len(c.DetectPatterns) > 0 {
			d, err := detect.Custom(c.ID, c.DisplayName(), c.DetectPatterns)
			if err != nil {
				return err
			}
			reg.RegisterDetector(c.ResolvedPriority(), d)
		}
		s.logger.Debug("custom renderer registered", "format", c.ID, "command", c.RenderCommand, "patterns", len(c.DetectPatterns))
	}
	return nil
}

func newDiagramRenderer(opts diagram.Options, s *settings) *diagram.Renderer {
	options := []diagram.Option{
		diagram.WithNative(graphviz.NewRenderer(), svg.NewRasterizer(svg.WithLogger(s.logger))),
		diagram.WithLogger(s.logger),
	}
	if s.local {
		options = append(options, diagram.WithRunner(process.NewRunner()))
	}
	if !s.offline {
		options = append(options, diagram.WithClient(kroki.NewClient(opts.KrokiServer)))
	}
	if opts.Cache {
		dir := s.cacheDir
		if dir == "" {
			dir = fs.DefaultCacheDir()
		}
		options = append(options, diagram.WithCache(fs.NewRasterCache(dir)))
	}
	return diagram.NewRenderer(opts, options...)
}

// diagramTags returns the built-in fence tags plus configured ones.
func diagramTags(opts diagram.Options) []string {
	tags := diagram.Tags()
	for tag := range opts.Languages {
		if _, ok := diagram.DefaultLanguages()[tag]; !ok {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}
