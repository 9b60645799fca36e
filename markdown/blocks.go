package markdown

import (
	"regexp"
	"strings"

	"github.com/fwojciec/prettify/table"
)

var fenceOpenRE = regexp.MustCompile("^(\\s*)(```+|~~~+)\\s*([\\w+#.-]*)\\s*$")

type blockKind int

const (
	blockLine blockKind = iota
	blockFence
	blockTable
)

// block is one element found by the first pass. start is the index of its
// first source line and end is one past its last.
type block struct {
	kind       blockKind
	start, end int

	// Fences.
	lang   string
	code   []string
	closed bool

	// Tables.
	header []string
	align  []table.Align
	rows   [][]string
}

// classify groups source lines into fences, tables and single lines.
// An unclosed fence runs to the end of the input.
func classify(lines []string) []block {
	var blocks []block
	for i := 0; i < len(lines); {
		if m := fenceOpenRE.FindStringSubmatch(lines[i]); m != nil {
			b := block{kind: blockFence, start: i, lang: m[3]}
			delim := m[2]
			i++
			for i < len(lines) {
				line := strings.TrimSpace(lines[i])
				i++
				if strings.HasPrefix(line, delim[:3]) && strings.Trim(line, delim[:1]) == "" && len(line) >= len(delim) {
					b.closed = true
					break
				}
				b.code = append(b.code, lines[i-1])
			}
			b.end = i
			blocks = append(blocks, b)
			continue
		}
		if i+1 < len(lines) && isTableRow(lines[i]) {
			if align, ok := table.ParseSeparator(lines[i+1]); ok {
				b := block{kind: blockTable, start: i, header: table.SplitRow(lines[i]), align: align}
				i += 2
				for i < len(lines) && isTableRow(lines[i]) {
					if _, sep := table.ParseSeparator(lines[i]); sep {
						break
					}
					b.rows = append(b.rows, table.SplitRow(lines[i]))
					i++
				}
				b.end = i
				blocks = append(blocks, b)
				continue
			}
		}
		blocks = append(blocks, block{kind: blockLine, start: i, end: i + 1})
		i++
	}
	return blocks
}

func isTableRow(line string) bool {
	return strings.Contains(line, "|")
}
