package table

import (
	"regexp"
	"strings"
)

var separatorCellRE = regexp.MustCompile(`^:?-+:?$`)

// SplitRow splits a pipe table row into trimmed cell texts. Escaped pipes
// (\|) stay inside their cell. It returns nil when line has no pipe.
func SplitRow(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "|") {
		return nil
	}
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

// ParseSeparator parses an alignment row such as "|:---|:-:|--:|". The
// second result is false when line is not a valid separator.
func ParseSeparator(line string) ([]Align, bool) {
	cells := SplitRow(line)
	if len(cells) == 0 {
		return nil, false
	}
	aligns := make([]Align, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, " ", "")
		if !separatorCellRE.MatchString(c) {
			return nil, false
		}
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[i] = AlignCenter
		case right:
			aligns[i] = AlignRight
		default:
			aligns[i] = AlignLeft
		}
	}
	return aligns, true
}
