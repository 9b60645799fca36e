package prettify

import "context"

// Viewer displays a rendered block interactively.
type Viewer interface {
	// View blocks until the user exits.
	View(ctx context.Context, block ContentBlock, rendered RenderedContent) error
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}

// DetectionRecord is one entry of a detection report.
type DetectionRecord struct {
	Index        int      `json:"index"` // Position in the input corpus (0-based)
	Command      string   `json:"command,omitempty"`
	Lines        int      `json:"lines"`
	FormatID     string   `json:"format_id,omitempty"` // Empty when nothing matched
	Confidence   float64  `json:"confidence"`
	MatchedRules []string `json:"matched_rules,omitempty"`
	Rendered     int      `json:"rendered_lines"`
	Error        string   `json:"error,omitempty"`
}

// BlockLoader loads captured blocks from a source.
type BlockLoader interface {
	Load(path string) ([]ContentBlock, error)
}

// ReportStore persists detection records.
type ReportStore interface {
	Load(path string) ([]DetectionRecord, error)
	Save(path string, records []DetectionRecord) error
}
