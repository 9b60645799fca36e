package table

import (
	"strconv"
	"strings"

	"github.com/fwojciec/prettify"
)

// InferAlign right-aligns every column in which more than half of the
// non-empty, non-NULL cells parse as numbers. Other columns align left.
func InferAlign(rows [][]string) []Align {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	aligns := make([]Align, cols)
	for c := range aligns {
		numeric, total := 0, 0
		for _, r := range rows {
			if c >= len(r) {
				continue
			}
			v := strings.TrimSpace(r[c])
			if v == "" || IsNull(v) {
				continue
			}
			total++
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				numeric++
			}
		}
		if total > 0 && numeric*2 > total {
			aligns[c] = AlignRight
		}
	}
	return aligns
}

// IsNull reports whether v is a SQL NULL marker.
func IsNull(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "null")
}

// ValueCell builds the cell for a data value. NULL is dimmed and italic.
func ValueCell(v string, theme prettify.ThemeColors) Cell {
	if IsNull(v) {
		return Cell{{Text: v, Fg: theme.DimColor().Ptr(), Italic: true}}
	}
	return Cell{{Text: v}}
}

// RowCount formats a row count footer such as "(3 rows)".
func RowCount(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return "(" + strconv.Itoa(n) + " rows)"
}
