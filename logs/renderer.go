// Package logs renders application log output: level coloring, dimmed
// timestamps, embedded JSON payloads and folded stack frames after errors.
package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/prettify"
)

var _ prettify.Renderer = (*Renderer)(nil)

// Options control log rendering.
type Options struct {
	MaxVisibleFrames int  `toml:"max_visible_frames"`
	ExpandJSON       bool `toml:"expand_json"`
}

// DefaultOptions returns the default log options.
func DefaultOptions() Options {
	return Options{MaxVisibleFrames: 3, ExpandJSON: true}
}

// Renderer renders log output. It never fails.
type Renderer struct {
	opts Options
}

// NewRenderer creates a log renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) FormatID() string    { return "log" }
func (r *Renderer) DisplayName() string { return "Log Output" }
func (r *Renderer) Badge() string       { return "LOG" }

// Render implements prettify.Renderer.
func (r *Renderer) Render(_ context.Context, block prettify.ContentBlock, cfg prettify.RendererConfig) (prettify.RenderedContent, error) {
	var b prettify.Builder
	theme := cfg.Theme
	for i := 0; i < len(block.Lines); i++ {
		entry := Parse(block.Lines[i])
		b.PushSegments(i, r.segments(entry, theme)...)
		if !entry.Level.IsError() {
			continue
		}

		end := i + 1
		for end < len(block.Lines) && IsFrame(block.Lines[end]) {
			end++
		}
		frames := end - (i + 1)
		if frames == 0 {
			continue
		}
		visible := min(frames, max(r.opts.MaxVisibleFrames, 0))
		for j := i + 1; j < i+1+visible; j++ {
			b.PushSegments(j, prettify.StyledSegment{Text: block.Lines[j], Fg: theme.DimColor().Ptr()})
		}
		if hidden := frames - visible; hidden > 0 {
			b.PushSegments(prettify.NoSource, prettify.StyledSegment{
				Text:   fmt.Sprintf("    ... %d more stack frames", hidden),
				Fg:     theme.DimColor().Ptr(),
				Italic: true,
			})
		}
		i = end - 1
	}
	return b.Content(r.Badge()), nil
}

func (r *Renderer) segments(e Entry, theme prettify.ThemeColors) []prettify.StyledSegment {
	var segs []prettify.StyledSegment
	if e.Timestamp != "" {
		segs = append(segs, prettify.StyledSegment{Text: e.Timestamp + " ", Fg: theme.DimColor().Ptr()})
	}
	if e.LevelText != "" {
		level := prettify.StyledSegment{
			Text: e.LevelText,
			Fg:   e.Level.color(theme).Ptr(),
			Bg:   e.Level.background(theme),
			Bold: e.Level >= Warn,
		}
		if e.Bracketed {
			bracket := prettify.StyledSegment{Fg: theme.DimColor().Ptr(), Bg: level.Bg}
			open, close := bracket, bracket
			open.Text, close.Text = "[", "] "
			segs = append(segs, open, level, close)
		} else {
			level.Text += " "
			segs = append(segs, level)
		}
	}

	msg := prettify.StyledSegment{Text: e.Message}
	if e.Level.IsError() {
		msg.Fg = e.Level.color(theme).Ptr()
		msg.Bold = true
	}
	if r.opts.ExpandJSON {
		if start, end, ok := embeddedJSON(e.Message); ok {
			before, after := msg, msg
			before.Text, after.Text = e.Message[:start], e.Message[end:]
			payload := prettify.StyledSegment{Text: e.Message[start:end], Fg: theme.KeyColor().Ptr()}
			for _, s := range []prettify.StyledSegment{before, payload, after} {
				if s.Text != "" {
					segs = append(segs, s)
				}
			}
			return segs
		}
	}
	return append(segs, msg)
}

// embeddedJSON locates a JSON object inside a message, spanning from the
// first '{' to the last '}'.
func embeddedJSON(msg string) (start, end int, ok bool) {
	start = strings.IndexByte(msg, '{')
	end = strings.LastIndexByte(msg, '}') + 1
	if start < 0 || end <= start {
		return 0, 0, false
	}
	return start, end, json.Valid([]byte(msg[start:end]))
}

// Level is a log severity. Unknown is the zero value.
type Level int

// Log levels.
const (
	Unknown Level = iota
	Trace
	Debug
	Info
	Warn
	Error
	Fatal
)

// ParseLevel maps a level keyword to a Level, ignoring case.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return Trace
	case "DEBUG":
		return Debug
	case "INFO":
		return Info
	case "WARN", "WARNING":
		return Warn
	case "ERROR", "ERR":
		return Error
	case "FATAL", "CRITICAL", "CRIT":
		return Fatal
	}
	return Unknown
}

// IsError reports whether the level is ERROR or FATAL.
func (l Level) IsError() bool {
	return l == Error || l == Fatal
}

func (l Level) color(theme prettify.ThemeColors) prettify.Color {
	switch l {
	case Info, Unknown:
		return theme.Palette[2]
	case Warn:
		return theme.Palette[3]
	case Error, Fatal:
		return theme.Palette[9]
	default:
		return theme.DimColor()
	}
}

// background tints FATAL lines with a third of the theme's red.
func (l Level) background(theme prettify.ThemeColors) *prettify.Color {
	if l != Fatal {
		return nil
	}
	red := theme.ErrorColor()
	return prettify.RGB(red.R/3, red.G/3, red.B/3).Ptr()
}

// Entry is one log line split into its parts.
type Entry struct {
	Timestamp string
	Level     Level
	LevelText string // Level as written in the source, without brackets
	Bracketed bool   // Level was written as [LEVEL]
	Message   string
}

const levels = `TRACE|DEBUG|INFO|WARN(?:ING)?|ERROR|ERR|FATAL|CRIT(?:ICAL)?`

// levelToken matches a level keyword, optionally wrapped in brackets.
const levelToken = `(\[(?:` + levels + `)\]|(?:` + levels + `))`

var (
	timestampLevelRE = regexp.MustCompile(`^(\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}\S*)\s+` + levelToken + `\s*(.*)`)
	syslogRE         = regexp.MustCompile(`^((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d+\s+\d{2}:\d{2}:\d{2})\s+(.*)`)
	levelPrefixRE    = regexp.MustCompile(`^\s*` + levelToken + `\s+(.*)`)
)

// withLevel sets the level fields from a matched level token.
func (e Entry) withLevel(token string) Entry {
	text, bracketed := strings.TrimPrefix(token, "["), false
	if text != token {
		text, bracketed = strings.TrimSuffix(text, "]"), true
	}
	e.Level, e.LevelText, e.Bracketed = ParseLevel(text), text, bracketed
	return e
}

// Parse splits a line using the first matching shape: timestamp and level,
// syslog, then a bare level prefix. Anything else is all message.
func Parse(line string) Entry {
	if m := timestampLevelRE.FindStringSubmatch(line); m != nil {
		return Entry{Timestamp: m[1], Message: m[3]}.withLevel(m[2])
	}
	if m := syslogRE.FindStringSubmatch(line); m != nil {
		e := Entry{Timestamp: m[1], Message: m[2]}
		if lm := levelPrefixRE.FindStringSubmatch(m[2]); lm != nil {
			e.Message = lm[2]
			e = e.withLevel(lm[1])
		}
		return e
	}
	if m := levelPrefixRE.FindStringSubmatch(line); m != nil {
		return Entry{Message: m[2]}.withLevel(m[1])
	}
	return Entry{Message: line}
}

var frameExtensions = []string{".java:", ".py:", ".rs:", ".js:", ".ts:", ".go:", ".rb:", ".kt:"}

// IsFrame reports whether a line looks like a stack frame following an error.
func IsFrame(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "at ") || strings.HasPrefix(trimmed, "Caused by:") {
		return true
	}
	if len(trimmed) == len(line) {
		return false
	}
	for _, ext := range frameExtensions {
		if strings.Contains(trimmed, ext) {
			return true
		}
	}
	return false
}
