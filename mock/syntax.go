package mock

import "github.com/fwojciec/prettify"

// Compile-time interface verification.
var (
	_ prettify.Tokenizer        = (*Tokenizer)(nil)
	_ prettify.LanguageDetector = (*LanguageDetector)(nil)
	_ prettify.WordDiffer       = (*WordDiffer)(nil)
)

// Tokenizer is a mock implementation of prettify.Tokenizer.
type Tokenizer struct {
	TokenizeLinesFn func(language, source string, theme prettify.ThemeColors) [][]prettify.Token
}

func (t *Tokenizer) TokenizeLines(language, source string, theme prettify.ThemeColors) [][]prettify.Token {
	return t.TokenizeLinesFn(language, source, theme)
}

// LanguageDetector is a mock implementation of prettify.LanguageDetector.
type LanguageDetector struct {
	DetectLanguageFn func(tag, source string) string
}

func (d *LanguageDetector) DetectLanguage(tag, source string) string {
	return d.DetectLanguageFn(tag, source)
}

// WordDiffer is a mock implementation of prettify.WordDiffer.
type WordDiffer struct {
	DiffFn func(old, new string) (oldSegs, newSegs []prettify.Segment)
}

func (d *WordDiffer) Diff(old, new string) (oldSegs, newSegs []prettify.Segment) {
	return d.DiffFn(old, new)
}
