package jsonl

import (
	"encoding/json"
	"io"

	"github.com/fwojciec/prettify"
)

// Writer streams detection records to w, one JSON object per line.
type Writer struct {
	enc *json.Encoder
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Write appends one record.
func (w *Writer) Write(rec prettify.DetectionRecord) error {
	return w.enc.Encode(rec)
}
