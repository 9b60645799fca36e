package prettify

import "io"

// Diff represents a complete diff containing one or more file changes.
type Diff struct {
	Files []FileDiff
}

// FileDiff represents changes to a single file.
type FileDiff struct {
	OldPath   string   // Empty for new files
	NewPath   string   // Empty for deleted files
	Operation FileOp   // Added, Deleted, Modified, Renamed, Copied
	IsBinary  bool     // Binary files have no hunks
	Header    []string // Raw header lines before ---/+++, e.g. "diff --git", "index"
	Hunks     []Hunk
}

// Stats returns the number of added and deleted lines in the file.
func (f FileDiff) Stats() (added, deleted int) {
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineAdded:
				added++
			case LineDeleted:
				deleted++
			}
		}
	}
	return added, deleted
}

// FileOp represents the type of operation performed on a file.
type FileOp int

// File operation types.
const (
	FileModified FileOp = iota
	FileAdded
	FileDeleted
	FileRenamed
	FileCopied
)

// Hunk represents a contiguous block of changes within a file.
type Hunk struct {
	OldStart int    // From @@ -X,...
	OldCount int    // From @@ -X,Y ... (1 when omitted)
	NewStart int    // From @@ ...,+X
	NewCount int    // From @@ ...,+X,Y (1 when omitted)
	Section  string // Optional text after the closing @@
	Lines    []Line
}

// Line represents a single line within a hunk.
type Line struct {
	Type       LineType
	Content    string // Without the leading +/-/space marker and without newline
	OldLineNum int    // 0 if line is Added
	NewLineNum int    // 0 if line is Deleted
}

// LineType represents the type of a diff line.
type LineType int

// Line types.
const (
	LineContext LineType = iota
	LineAdded
	LineDeleted
)

// Parser parses unified diff text.
type Parser interface {
	Parse(r io.Reader) (*Diff, error)
}

// Segment represents a portion of text within a line for word-level diffing.
type Segment struct {
	Text    string // The text content of this segment
	Changed bool   // True if this segment differs between old/new versions
}

// WordDiffer computes word-level differences between two strings.
type WordDiffer interface {
	// Diff returns segments for both the old and new strings,
	// marking which portions changed between them.
	Diff(old, new string) (oldSegs, newSegs []Segment)
}
