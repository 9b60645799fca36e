package prettify

// Token represents a syntax-highlighted run of code.
type Token struct {
	Text  string // The text content of this token
	Style Style  // Visual style to apply
}

// Style represents the visual styling for a token.
type Style struct {
	Fg     *Color // nil for default
	Bold   bool
	Italic bool
}

// Tokenizer extracts syntax tokens from source code.
type Tokenizer interface {
	// TokenizeLines tokenizes source with full context and splits the tokens
	// by line. Returns nil if the language is not supported.
	TokenizeLines(language, source string, theme ThemeColors) [][]Token
}

// LanguageDetector resolves code fence tags to language names.
type LanguageDetector interface {
	// DetectLanguage returns the canonical language for a fence tag, guessing
	// from source when the tag is empty or unknown. Returns "" when it cannot tell.
	DetectLanguage(tag, source string) string
}
