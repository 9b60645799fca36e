// Package bubbletea provides a terminal UI viewer for rendered content using
// the Bubble Tea framework.
package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/colorful"
	plg "github.com/fwojciec/prettify/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Compile-time interface verification.
var _ prettify.Viewer = (*Viewer)(nil)

const (
	tabWidth        = 8
	statusBarHeight = 1
)

// Model is the Bubble Tea model for viewing one rendered block. It toggles
// between the rendered lines and the raw source, keeping the scroll position
// anchored through the line mapping.
type Model struct {
	block     prettify.ContentBlock
	rendered  prettify.RenderedContent
	colors    prettify.ThemeColors
	printer   *plg.Printer
	renderer  *lipgloss.Renderer
	clipboard prettify.Clipboard

	viewport   viewport.Model
	keymap     KeyMap
	showRaw    bool
	width      int
	ready      bool
	pendingKey string
	message    string // Transient status, cleared by the next key
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	renderer  *lipgloss.Renderer
	theme     prettify.Theme
	clipboard prettify.Clipboard
	raw       bool
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.renderer = r
	}
}

// WithTheme sets the theme used for the status bar and graphic previews.
func WithTheme(t prettify.Theme) ModelOption {
	return func(cfg *modelConfig) {
		cfg.theme = t
	}
}

// WithClipboard enables copying the raw source.
func WithClipboard(c prettify.Clipboard) ModelOption {
	return func(cfg *modelConfig) {
		cfg.clipboard = c
	}
}

// WithRawView starts the viewer on the raw source.
func WithRawView() ModelOption {
	return func(cfg *modelConfig) {
		cfg.raw = true
	}
}

// NewModel creates a new Model for block and its rendered output.
func NewModel(block prettify.ContentBlock, rendered prettify.RenderedContent, opts ...ModelOption) Model {
	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.theme == nil {
		cfg.theme = plg.DefaultTheme()
	}
	colors := cfg.theme.Colors()

	var printerOpts []plg.PrinterOption
	if cfg.renderer != nil {
		printerOpts = append(printerOpts, plg.WithRenderer(cfg.renderer))
	}
	return Model{
		block:     block,
		rendered:  rendered,
		colors:    colors,
		printer:   plg.NewPrinter(colors.Bg, printerOpts...),
		renderer:  cfg.renderer,
		clipboard: cfg.clipboard,
		keymap:    DefaultKeyMap(),
		showRaw:   cfg.raw,
	}
}

// ShowingRaw reports whether the raw source is displayed.
func (m Model) ShowingRaw() bool {
	return m.showRaw
}

// YOffset returns the first visible line of the current view.
func (m Model) YOffset() int {
	return m.viewport.YOffset
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""

		// Handle multi-key sequences (gg for go to top)
		if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
			m.viewport.GotoTop()
			m.pendingKey = ""
			return m, nil
		}
		if key.Matches(msg, m.keymap.GotoTop) {
			m.pendingKey = "g"
			return m, nil
		}
		m.pendingKey = ""

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.GotoBottom):
			m.viewport.GotoBottom()
			return m, nil
		case key.Matches(msg, m.keymap.HalfPageUp):
			m.viewport.HalfPageUp()
			return m, nil
		case key.Matches(msg, m.keymap.HalfPageDown):
			m.viewport.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keymap.Up):
			m.viewport.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keymap.Down):
			m.viewport.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keymap.ToggleRaw):
			m.toggleRaw()
			return m, nil
		case key.Matches(msg, m.keymap.Copy):
			m.copySource()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-statusBarHeight)
			m.viewport.SetContent(m.content())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - statusBarHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusBarView())
}

// toggleRaw switches views, translating the scroll offset through the line
// mapping so the same content stays on top.
func (m *Model) toggleRaw() {
	offset := m.viewport.YOffset
	if m.showRaw {
		offset = m.rendered.NearestRenderedLine(offset)
	} else {
		offset = m.rendered.NearestSourceLine(offset)
	}
	m.showRaw = !m.showRaw
	m.viewport.SetContent(m.content())
	m.viewport.SetYOffset(offset)
}

func (m *Model) copySource() {
	if m.clipboard == nil {
		m.message = "no clipboard"
		return
	}
	if err := m.clipboard.Copy(m.block.FullText()); err != nil {
		m.message = "copy failed: " + err.Error()
		return
	}
	m.message = fmt.Sprintf("copied %d lines", len(m.block.Lines))
}

func (m Model) content() string {
	if m.showRaw {
		lines := make([]string, len(m.block.Lines))
		for i, l := range m.block.Lines {
			lines[i], _ = expandTabs(l, 0)
		}
		return strings.Join(lines, "\n")
	}
	rendered := m.rendered
	rendered.Lines = make([]prettify.StyledLine, len(m.rendered.Lines))
	for i, l := range m.rendered.Lines {
		rendered.Lines[i] = expandLine(l)
	}
	return strings.Join(m.printer.Lines(rendered), "\n")
}

// expandLine expands tabs across segment boundaries.
func expandLine(l prettify.StyledLine) prettify.StyledLine {
	out := prettify.StyledLine{Segments: make([]prettify.StyledSegment, len(l.Segments))}
	col := 0
	for i, s := range l.Segments {
		s.Text, col = expandTabs(s.Text, col)
		out.Segments[i] = s
	}
	return out
}

// expandTabs converts tabs to spaces on 8-column stops, starting at column
// col. It returns the expanded text and the column after it.
func expandTabs(s string, col int) (string, int) {
	if !strings.Contains(s, "\t") {
		return s, col + runewidth.StringWidth(s)
	}
	var sb strings.Builder
	for _, r := range s {
		if r == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String(), col
}

// newStyle creates a new lipgloss style using the model's renderer.
func (m Model) newStyle() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// statusBarView renders the badge, view mode, position and key help.
func (m Model) statusBarView() string {
	surface := lipgloss.Color(colorful.Blend(m.colors.Bg, m.colors.Fg, 0.15).Hex())
	barStyle := m.newStyle().
		Background(surface).
		Foreground(lipgloss.Color(m.colors.Fg.Hex()))
	dimStyle := m.newStyle().
		Background(surface).
		Foreground(lipgloss.Color(m.colors.DimColor().Hex()))
	badgeStyle := m.newStyle().
		Background(lipgloss.Color(m.colors.AccentColor().Hex())).
		Foreground(lipgloss.Color(m.colors.Bg.Hex())).
		Bold(true)

	mode, total := "rendered", len(m.rendered.Lines)
	if m.showRaw {
		mode, total = "raw", len(m.block.Lines)
	}
	sep := dimStyle.Render(" │ ")
	content := badgeStyle.Render(" "+m.rendered.Badge+" ") +
		barStyle.Render(" "+mode) + sep +
		barStyle.Render(fmt.Sprintf("line %d/%d", min(m.viewport.YOffset+1, total), total)) + sep +
		barStyle.Render(m.scrollPosition())
	if m.message != "" {
		content += sep + barStyle.Render(m.message)
	}
	help := dimStyle.Render(m.helpText())

	gap := m.width - lipgloss.Width(content) - lipgloss.Width(help)
	if gap > 0 {
		content += barStyle.Render(strings.Repeat(" ", gap))
	}
	return content + help
}

func (m Model) helpText() string {
	parts := make([]string, 0, 4)
	for _, b := range m.keymap.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, "  ") + " "
}

// scrollPosition returns a string indicating the scroll position.
func (m Model) scrollPosition() string {
	if m.viewport.AtTop() {
		return "Top"
	}
	if m.viewport.AtBottom() {
		return "Bot"
	}
	return fmt.Sprintf("%2d%%", int(m.viewport.ScrollPercent()*100))
}

// Viewer implements prettify.Viewer using a Bubble Tea TUI.
type Viewer struct {
	opts []ModelOption
}

// NewViewer creates a new Viewer. The options apply to every model it shows.
func NewViewer(opts ...ModelOption) *Viewer {
	return &Viewer{opts: opts}
}

// View displays the block and blocks until the user exits or ctx is done.
func (v *Viewer) View(ctx context.Context, block prettify.ContentBlock, rendered prettify.RenderedContent) error {
	m := NewModel(block, rendered, v.opts...)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
