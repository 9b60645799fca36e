package mock

import "github.com/fwojciec/prettify"

// Compile-time interface verification.
var (
	_ prettify.BlockLoader = (*BlockLoader)(nil)
	_ prettify.ReportStore = (*ReportStore)(nil)
)

// BlockLoader is a mock implementation of prettify.BlockLoader.
type BlockLoader struct {
	LoadFn func(path string) ([]prettify.ContentBlock, error)
}

func (l *BlockLoader) Load(path string) ([]prettify.ContentBlock, error) {
	return l.LoadFn(path)
}

// ReportStore is a mock implementation of prettify.ReportStore.
type ReportStore struct {
	LoadFn func(path string) ([]prettify.DetectionRecord, error)
	SaveFn func(path string, records []prettify.DetectionRecord) error
}

func (s *ReportStore) Load(path string) ([]prettify.DetectionRecord, error) {
	return s.LoadFn(path)
}

func (s *ReportStore) Save(path string, records []prettify.DetectionRecord) error {
	return s.SaveFn(path, records)
}
