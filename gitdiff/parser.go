// Package gitdiff parses unified diffs into prettify.Diff values.
//
// Git-style patches go through bluekeyes/go-gitdiff. Input it rejects, such as
// hand-edited hunks whose counts do not add up, falls back to a lenient
// line scanner.
package gitdiff

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/prettify"
)

var _ prettify.Parser = (*Parser)(nil)

// Parser parses unified diff content.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns the parsed result. It returns an empty
// diff, not an error, when the input has no file headers.
func (p *Parser) Parse(r io.Reader) (*prettify.Diff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := splitLines(string(data))

	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil || len(files) == 0 {
		return ScanLines(lines), nil
	}

	result := &prettify.Diff{Files: make([]prettify.FileDiff, 0, len(files))}
	for _, f := range files {
		result.Files = append(result.Files, convertFile(f))
	}
	attachHeaders(result, lines)
	return result, nil
}

func splitLines(s string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines
}

// attachHeaders copies the raw extended header lines of git sections onto the
// parsed files. go-gitdiff folds them into structured fields.
func attachHeaders(d *prettify.Diff, lines []string) {
	headers := ScanLines(lines)
	if len(headers.Files) != len(d.Files) {
		return
	}
	for i := range d.Files {
		d.Files[i].Header = headers.Files[i].Header
	}
}

func convertFile(f *gitdiff.File) prettify.FileDiff {
	fd := prettify.FileDiff{
		OldPath:  f.OldName,
		NewPath:  f.NewName,
		IsBinary: f.IsBinary,
	}

	switch {
	case f.IsNew:
		fd.Operation = prettify.FileAdded
	case f.IsDelete:
		fd.Operation = prettify.FileDeleted
	case f.IsRename:
		fd.Operation = prettify.FileRenamed
	case f.IsCopy:
		fd.Operation = prettify.FileCopied
	default:
		fd.Operation = prettify.FileModified
	}

	fd.Hunks = make([]prettify.Hunk, 0, len(f.TextFragments))
	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, convertFragment(frag))
	}
	return fd
}

func convertFragment(frag *gitdiff.TextFragment) prettify.Hunk {
	h := prettify.Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
		Section:  frag.Comment,
	}

	oldNum, newNum := h.OldStart, h.NewStart
	for _, l := range frag.Lines {
		line := prettify.Line{Content: strings.TrimSuffix(strings.TrimSuffix(l.Line, "\n"), "\r")}
		switch l.Op {
		case gitdiff.OpAdd:
			line.Type = prettify.LineAdded
			line.NewLineNum = newNum
			newNum++
		case gitdiff.OpDelete:
			line.Type = prettify.LineDeleted
			line.OldLineNum = oldNum
			oldNum++
		default:
			line.Type = prettify.LineContext
			line.OldLineNum = oldNum
			line.NewLineNum = newNum
			oldNum++
			newNum++
		}
		h.Lines = append(h.Lines, line)
	}
	return h
}
