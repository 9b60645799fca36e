package jsonl

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var _ prettify.ReportStore = (*Store)(nil)

// Store persists and retrieves detection reports as JSONL.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads records from a JSONL file. Returns an empty slice if the file doesn't exist.
func (s *Store) Load(path string) ([]prettify.DetectionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return decode[prettify.DetectionRecord](f)
}

// Save writes records to a JSONL file, creating parent directories if needed.
func (s *Store) Save(path string, records []prettify.DetectionRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := NewWriter(f)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return f.Close()
}
