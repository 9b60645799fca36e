package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/prettify"
	"github.com/go-enry/go-enry/v2"
)

// Compile-time interface verification.
var _ prettify.LanguageDetector = (*Detector)(nil)

// Detector resolves fence tags and file names to chroma lexer names.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectLanguage returns the chroma lexer name for tag, which may be a fence
// language tag ("go", "py") or a file name ("main.go"). When tag is empty or
// unknown, the language is guessed from source: first by shebang, then by
// go-enry's classifier, then by chroma's own analysers.
func (d *Detector) DetectLanguage(tag, source string) string {
	tag = strings.TrimSpace(tag)
	if tag != "" {
		if l := lexers.Get(tag); l != nil {
			return l.Config().Name
		}
		if l := lexers.Match(filepath.Base(tag)); l != nil {
			return l.Config().Name
		}
	}
	if strings.TrimSpace(source) == "" {
		return ""
	}
	return guess(source)
}

func guess(source string) string {
	content := []byte(source)
	if lang, ok := enry.GetLanguageByShebang(content); ok {
		if l := lexers.Get(lang); l != nil {
			return l.Config().Name
		}
	}
	if lang, ok := enry.GetLanguageByClassifier(content, candidates); ok {
		if l := lexers.Get(lang); l != nil {
			return l.Config().Name
		}
	}
	if l := lexers.Analyse(source); l != nil {
		return l.Config().Name
	}
	return ""
}

// candidates restricts the classifier to languages common in terminal output.
var candidates = []string{
	"Go", "Python", "JavaScript", "TypeScript", "Rust", "Java", "C", "C++",
	"Ruby", "Shell", "SQL", "JSON", "YAML", "HTML", "CSS", "Lua", "Kotlin",
}
