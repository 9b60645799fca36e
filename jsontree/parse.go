package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

type kind int

const (
	kindObject kind = iota
	kindArray
	kindString
	kindNumber
	kindBool
	kindNull
)

// value is a decoded JSON value that keeps key order and source lines.
type value struct {
	kind    kind
	text    string // Scalar text; strings are unquoted
	fields  []field
	items   []*value
	line    int // Source line of the first token
	endLine int // Source line of the closing delimiter
}

type field struct {
	key  string
	line int
	val  *value
}

// lineIndex maps byte offsets to zero-based line numbers.
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	var idx lineIndex
	for i, c := range data {
		if c == '\n' {
			idx = append(idx, i)
		}
	}
	return idx
}

func (l lineIndex) at(offset int64) int {
	return sort.SearchInts(l, int(offset))
}

func parse(data []byte) (*value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	lines := newLineIndex(data)
	v, err := parseValue(dec, lines)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

func parseValue(dec *json.Decoder, lines lineIndex) (*value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	line := lines.at(dec.InputOffset() - 1)
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := &value{kind: kindObject, line: line}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %v, not a string", kt)
				}
				keyLine := lines.at(dec.InputOffset() - 1)
				child, err := parseValue(dec, lines)
				if err != nil {
					return nil, err
				}
				v.fields = append(v.fields, field{key: key, line: keyLine, val: child})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			v.endLine = lines.at(dec.InputOffset() - 1)
			return v, nil
		case '[':
			v := &value{kind: kindArray, line: line}
			for dec.More() {
				child, err := parseValue(dec, lines)
				if err != nil {
					return nil, err
				}
				v.items = append(v.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			v.endLine = lines.at(dec.InputOffset() - 1)
			return v, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return &value{kind: kindString, text: t, line: line, endLine: line}, nil
	case json.Number:
		return &value{kind: kindNumber, text: t.String(), line: line, endLine: line}, nil
	case bool:
		return &value{kind: kindBool, text: fmt.Sprint(t), line: line, endLine: line}, nil
	case nil:
		return &value{kind: kindNull, text: "null", line: line, endLine: line}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
