package gitdiff

import (
	"strconv"
	"strings"

	"github.com/fwojciec/prettify"
)

// ScanLines is the lenient parser. It accepts git sections ("diff --git")
// and plain "---"/"+++" pairs and never fails; input without either yields
// an empty diff.
func ScanLines(lines []string) *prettify.Diff {
	d := &prettify.Diff{}
	for i := 0; i < len(lines); {
		switch {
		case strings.HasPrefix(lines[i], "diff --git "):
			var f prettify.FileDiff
			f, i = scanGitFile(lines, i)
			d.Files = append(d.Files, f)
		case strings.HasPrefix(lines[i], "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ "):
			f := prettify.FileDiff{
				OldPath: strings.TrimSpace(lines[i][4:]),
				NewPath: strings.TrimSpace(lines[i+1][4:]),
			}
			i += 2
			for i < len(lines) && !strings.HasPrefix(lines[i], "--- ") && !strings.HasPrefix(lines[i], "diff --git ") {
				if !strings.HasPrefix(lines[i], "@@ ") {
					i++
					continue
				}
				var h prettify.Hunk
				h, i = scanHunk(lines, i)
				f.Hunks = append(f.Hunks, h)
			}
			d.Files = append(d.Files, f)
		default:
			i++
		}
	}
	return d
}

func scanGitFile(lines []string, i int) (prettify.FileDiff, int) {
	var f prettify.FileDiff
	f.OldPath, f.NewPath = gitPaths(lines[i])
	f.Header = append(f.Header, lines[i])
	i++
	for i < len(lines) && !isFileBoundary(lines[i]) && !strings.HasPrefix(lines[i], "@@ ") {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "new file mode"):
			f.Operation = prettify.FileAdded
		case strings.HasPrefix(line, "deleted file mode"):
			f.Operation = prettify.FileDeleted
		case strings.HasPrefix(line, "rename from"):
			f.Operation = prettify.FileRenamed
		case strings.HasPrefix(line, "copy from"):
			f.Operation = prettify.FileCopied
		case strings.HasPrefix(line, "Binary files"):
			f.IsBinary = true
		}
		f.Header = append(f.Header, line)
		i++
	}
	if i < len(lines) && strings.HasPrefix(lines[i], "--- ") {
		f.OldPath = strings.TrimSpace(lines[i][4:])
		i++
		if i < len(lines) && strings.HasPrefix(lines[i], "+++ ") {
			f.NewPath = strings.TrimSpace(lines[i][4:])
			i++
		}
	}
	for i < len(lines) && !strings.HasPrefix(lines[i], "diff --git ") {
		if !strings.HasPrefix(lines[i], "@@ ") {
			i++
			continue
		}
		var h prettify.Hunk
		h, i = scanHunk(lines, i)
		f.Hunks = append(f.Hunks, h)
	}
	return f, i
}

func isFileBoundary(line string) bool {
	return strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "diff --git ")
}

// isFileHeader reports whether lines[i] starts a "---", "+++", "@@" triple.
func isFileHeader(lines []string, i int) bool {
	return i+2 < len(lines) &&
		strings.HasPrefix(lines[i], "--- ") &&
		strings.HasPrefix(lines[i+1], "+++ ") &&
		strings.HasPrefix(lines[i+2], "@@ ")
}

// gitPaths splits the "a/x b/x" pair of a git section header.
func gitPaths(line string) (string, string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	if idx := strings.Index(rest, " b/"); idx >= 0 {
		return rest[:idx], rest[idx+1:]
	}
	if old, new, ok := strings.Cut(rest, " "); ok {
		return old, new
	}
	return rest, rest
}

func scanHunk(lines []string, i int) (prettify.Hunk, int) {
	h, _ := ParseHunkHeader(lines[i])
	oldNum, newNum := h.OldStart, h.NewStart
	oldLeft := h.OldCount
	for i++; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "@@ ") || strings.HasPrefix(line, "diff --git ") {
			break
		}
		// While the hunk still owes old lines, "--- x" is a deleted "-- x"
		// unless a full file header follows.
		if strings.HasPrefix(line, "--- ") && (oldLeft <= 0 || isFileHeader(lines, i)) {
			break
		}
		if strings.HasPrefix(line, `\`) {
			continue
		}
		var l prettify.Line
		switch {
		case strings.HasPrefix(line, "+"):
			l = prettify.Line{Type: prettify.LineAdded, Content: line[1:], NewLineNum: newNum}
			newNum++
		case strings.HasPrefix(line, "-"):
			l = prettify.Line{Type: prettify.LineDeleted, Content: line[1:], OldLineNum: oldNum}
			oldNum++
			oldLeft--
		default:
			l = prettify.Line{Type: prettify.LineContext, Content: strings.TrimPrefix(line, " "), OldLineNum: oldNum, NewLineNum: newNum}
			oldNum++
			newNum++
			oldLeft--
		}
		h.Lines = append(h.Lines, l)
	}
	return h, i
}

// ParseHunkHeader parses "@@ -a[,b] +c[,d] @@ section". Omitted counts
// default to 1. The second result is false when line is not a hunk header.
func ParseHunkHeader(line string) (prettify.Hunk, bool) {
	h := prettify.Hunk{OldStart: 1, OldCount: 1, NewStart: 1, NewCount: 1}
	rest, ok := strings.CutPrefix(line, "@@ ")
	if !ok {
		return h, false
	}
	ranges, section, ok := strings.Cut(rest, " @@")
	if !ok {
		return h, false
	}
	h.Section = strings.TrimSpace(section)
	for _, part := range strings.Fields(ranges) {
		switch part[0] {
		case '-':
			h.OldStart, h.OldCount = parseRange(part[1:])
		case '+':
			h.NewStart, h.NewCount = parseRange(part[1:])
		}
	}
	return h, true
}

func parseRange(s string) (start, count int) {
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		start = 1
	}
	count = 1
	if hasCount {
		if n, err := strconv.Atoi(countStr); err == nil {
			count = n
		}
	}
	return start, count
}
