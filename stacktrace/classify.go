package stacktrace

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the role of a line within a trace.
type Kind int

// Line kinds.
const (
	Other Kind = iota
	Header
	CausedBy
	Frame
)

// Location is a source position found in a frame.
type Location struct {
	Path   string
	Line   int // 0 when absent
	Column int // 0 when absent
}

// Target returns the link target in path:line[:col] form.
func (l Location) Target() string {
	switch {
	case l.Line == 0:
		return l.Path
	case l.Column == 0:
		return l.Path + ":" + strconv.Itoa(l.Line)
	}
	return l.Path + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column)
}

// Line is a classified trace line.
type Line struct {
	Kind     Kind
	Text     string
	App      bool      // Frames only
	Location *Location // Frames only, nil when no path was found
}

var (
	javaFrameRE   = regexp.MustCompile(`^\s+at\s+([\w.$<>]+)\(([\w.]+):(\d+)\)`)
	pythonFrameRE = regexp.MustCompile(`^\s+File "([^"]+)", line (\d+)`)
	jsFrameRE     = regexp.MustCompile(`^\s+at\s+(?:\S+\s+)?\(?(.+?):(\d+):(\d+)\)?$`)
	rustLocRE     = regexp.MustCompile(`([\w/\\.-]+\.rs):(\d+)(?::(\d+))?`)
	goLocRE       = regexp.MustCompile(`([\w/\\.@-]+\.go):(\d+)`)

	headerREs = []*regexp.Regexp{
		regexp.MustCompile(`^([\w.$]+(?:Error|Exception|Panic)):?(\s|$)`),
		regexp.MustCompile(`^Exception in thread `),
		regexp.MustCompile(`^Traceback \(most recent call last\):`),
		regexp.MustCompile(`^thread '.*' panicked at`),
		regexp.MustCompile(`^goroutine \d+ \[`),
		regexp.MustCompile(`^panic: `),
	}
)

// Classify assigns a kind to one line. Frames are application code when
// their text contains any of appPackages, or always when appPackages is empty.
func Classify(line string, appPackages []string) Line {
	if strings.HasPrefix(line, "Caused by:") {
		return Line{Kind: CausedBy, Text: line}
	}
	for _, re := range headerREs {
		if re.MatchString(line) {
			return Line{Kind: Header, Text: line}
		}
	}
	loc := locate(line)
	indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
	if loc == nil && !indented && !strings.HasPrefix(line, "at ") {
		return Line{Kind: Other, Text: line}
	}
	return Line{Kind: Frame, Text: line, App: isApp(line, appPackages), Location: loc}
}

func isApp(line string, appPackages []string) bool {
	if len(appPackages) == 0 {
		return true
	}
	for _, pkg := range appPackages {
		if strings.Contains(line, pkg) {
			return true
		}
	}
	return false
}

// locate extracts a file location, trying the Java, Python, JavaScript, Rust
// and Go shapes in that order.
func locate(line string) *Location {
	if m := javaFrameRE.FindStringSubmatch(line); m != nil {
		return &Location{Path: m[2], Line: atoi(m[3])}
	}
	if m := pythonFrameRE.FindStringSubmatch(line); m != nil {
		return &Location{Path: m[1], Line: atoi(m[2])}
	}
	if m := jsFrameRE.FindStringSubmatch(line); m != nil {
		return &Location{Path: m[1], Line: atoi(m[2]), Column: atoi(m[3])}
	}
	if m := rustLocRE.FindStringSubmatch(line); m != nil {
		return &Location{Path: m[1], Line: atoi(m[2]), Column: atoi(m[3])}
	}
	if m := goLocRE.FindStringSubmatch(line); m != nil {
		return &Location{Path: m[1], Line: atoi(m[2])}
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
