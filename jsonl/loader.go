// Package jsonl reads capture corpora and writes detection reports as JSONL.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var _ prettify.BlockLoader = (*Loader)(nil)

// maxLineSize is the maximum size for a single JSONL line (4MB).
// This accommodates large captured outputs while preventing memory issues.
const maxLineSize = 4 * 1024 * 1024

// capture is one corpus record. It holds either pre-split lines or raw text.
type capture struct {
	Text             string    `json:"text"`
	Command          string    `json:"command"`
	Lines            []string  `json:"lines"`
	PrecedingCommand string    `json:"preceding_command"`
	StartRow         int       `json:"start_row"`
	EndRow           int       `json:"end_row"`
	Timestamp        time.Time `json:"timestamp"`
}

func (c capture) block() prettify.ContentBlock {
	command := c.PrecedingCommand
	if command == "" {
		command = c.Command
	}
	if c.Lines == nil {
		b := prettify.NewContentBlock(c.Text, command)
		b.StartRow += c.StartRow
		b.EndRow += c.StartRow
		if !c.Timestamp.IsZero() {
			b.Timestamp = c.Timestamp
		}
		return b
	}
	return prettify.ContentBlock{
		Lines:            c.Lines,
		PrecedingCommand: command,
		StartRow:         c.StartRow,
		EndRow:           c.EndRow,
		Timestamp:        c.Timestamp,
	}
}

// Loader loads captured blocks from JSONL files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a JSONL file and returns one block per record. The path "-"
// reads standard input.
func (l *Loader) Load(path string) ([]prettify.ContentBlock, error) {
	if path == "-" {
		return l.Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.Decode(f)
}

// Decode reads capture records from r.
func (l *Loader) Decode(r io.Reader) ([]prettify.ContentBlock, error) {
	captures, err := decode[capture](r)
	if err != nil {
		return nil, err
	}
	blocks := make([]prettify.ContentBlock, len(captures))
	for i, c := range captures {
		blocks[i] = c.block()
	}
	return blocks, nil
}

// decode unmarshals one T per non-blank line.
func decode[T any](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		out = append(out, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
