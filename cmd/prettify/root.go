package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/bubbletea"
	"github.com/fwojciec/prettify/builtin"
	"github.com/fwojciec/prettify/clipboard"
	"github.com/fwojciec/prettify/config"
	"github.com/fwojciec/prettify/jsonl"
	plg "github.com/fwojciec/prettify/lipgloss"
	"github.com/fwojciec/prettify/registry"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"

	defaultWidth = 100
)

// ErrNoInput is returned when stdin is a terminal and no file was given.
var ErrNoInput = errors.New("no input: pipe content or provide a file path")

// Deps holds the collaborators the commands use.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Loader prettify.BlockLoader
	Store  prettify.ReportStore

	// NewViewer builds the interactive viewer for the resolved theme.
	NewViewer func(theme prettify.Theme) prettify.Viewer

	// TerminalWidth reports the width of Stdout; false when it is not a terminal.
	TerminalWidth func() (int, bool)

	// RegistryOptions are appended to the options NewRegistry receives.
	RegistryOptions []builtin.Option
}

// DefaultDeps wires the process streams and the real implementations.
func DefaultDeps() Deps {
	return Deps{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Loader: jsonl.NewLoader(),
		Store:  jsonl.NewStore(),
		NewViewer: func(theme prettify.Theme) prettify.Viewer {
			opts := []bubbletea.ModelOption{bubbletea.WithTheme(theme)}
			if c, err := clipboard.Detect(); err == nil {
				opts = append(opts, bubbletea.WithClipboard(c))
			}
			return bubbletea.NewViewer(opts...)
		},
		TerminalWidth: func() (int, bool) {
			fd := int(os.Stdout.Fd())
			if !term.IsTerminal(fd) {
				return 0, false
			}
			w, _, err := term.GetSize(fd)
			return w, err == nil && w > 0
		},
	}
}

type globalOpts struct {
	configPath string
	themeName  string
	verbose    bool
	width      int
	color      string
}

// app is the state shared by every subcommand, filled in before RunE.
type app struct {
	Deps
	opts globalOpts

	logger   *log.Logger
	theme    *plg.Theme
	registry *registry.Registry
}

// NewRootCommand builds the prettify command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &app{Deps: deps}
	root := &cobra.Command{
		Use:   "prettify",
		Short: "Detect and pretty-print terminal output",
		Long: `prettify recognizes the format of a block of terminal output (JSON, diffs,
logs, stack traces, Markdown, YAML, TOML, XML, diagrams) and renders it
with colors, structure and inline graphics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(deps.Stdin)
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/prettify/config.toml)")
	flags.StringVar(&a.opts.themeName, "theme", "", "color theme: "+strings.Join(plg.ThemeNames(), " or ")+" (overrides the config)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.IntVarP(&a.opts.width, "width", "w", 0, "render width in columns (default: terminal width)")
	flags.StringVar(&a.opts.color, "color", colorAuto, "color output: auto, always or never")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newDetectCmd(a))
	root.AddCommand(newViewCmd(a))
	root.AddCommand(newReplayCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := log.InfoLevel
	if a.opts.verbose {
		level = log.DebugLevel
	}
	a.logger = newLogger(a.Stderr, level)
	cmd.SetContext(withLogger(cmd.Context(), a.logger))

	switch a.opts.color {
	case colorAuto, colorAlways, colorNever:
	default:
		return fmt.Errorf("invalid --color %q (want auto, always or never)", a.opts.color)
	}

	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	name := cfg.Theme.Name
	if a.opts.themeName != "" {
		name = a.opts.themeName
	}
	a.theme, err = plg.ThemeByName(name)
	if err != nil {
		return err
	}

	opts := append([]builtin.Option{builtin.WithLogger(a.logger)}, a.RegistryOptions...)
	a.registry, err = builtin.NewRegistry(cfg, opts...)
	if err != nil {
		return err
	}
	a.logger.Debug("ready", "theme", a.theme.Name(), "threshold", a.registry.Threshold(), "formats", a.registry.Formats())
	return nil
}

func (a *app) rendererConfig() prettify.RendererConfig {
	width := a.opts.width
	if width <= 0 {
		width = defaultWidth
		if a.TerminalWidth != nil {
			if w, ok := a.TerminalWidth(); ok {
				width = w
			}
		}
	}
	return prettify.RendererConfig{Width: width, Theme: a.theme.Colors()}
}

func (a *app) printer(w io.Writer) *plg.Printer {
	r := lipgloss.NewRenderer(w)
	switch a.opts.color {
	case colorAlways:
		r.SetColorProfile(termenv.TrueColor)
	case colorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return plg.NewPrinter(a.theme.Colors().Bg, plg.WithRenderer(r))
}

// input is one unit of content read from stdin or a file.
type input struct {
	name string
	text string
}

// readInputs reads each named file, or stdin when there are none. "-" names stdin.
func (a *app) readInputs(args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, name := range args {
		if name != "-" {
			data, err := os.ReadFile(name)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input{name: name, text: string(data)})
			continue
		}
		if f, ok := a.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, ErrNoInput
		}
		data, err := io.ReadAll(a.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		inputs = append(inputs, input{name: "stdin", text: string(data)})
	}
	return inputs, nil
}

// resolve picks the format for block. A forced format must be registered.
func (a *app) resolve(block prettify.ContentBlock, format string) (prettify.DetectionResult, bool, error) {
	if format == "" {
		res, ok := a.registry.Resolve(block)
		return res, ok, nil
	}
	res, ok := a.registry.Detect(block, format)
	if !ok {
		return res, false, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(a.registry.Formats(), ", "))
	}
	return res, true, nil
}

// plain renders block unstyled, one line per source line.
func plain(block prettify.ContentBlock) prettify.RenderedContent {
	var b prettify.Builder
	for i, line := range block.Lines {
		b.Push(prettify.PlainLine(line), i)
	}
	return b.Content("")
}

func record(index int, block prettify.ContentBlock, res prettify.DetectionResult, ok bool) prettify.DetectionRecord {
	rec := prettify.DetectionRecord{
		Index:   index,
		Command: block.PrecedingCommand,
		Lines:   len(block.Lines),
	}
	if ok {
		rec.FormatID = res.FormatID
		rec.Confidence = res.Confidence
		rec.MatchedRules = res.MatchedRules
	}
	return rec
}
