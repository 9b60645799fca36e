// Package chroma provides syntax highlighting and language detection using
// the chroma library, with go-enry guessing languages of untagged code.
package chroma

import (
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var _ prettify.Tokenizer = (*Tokenizer)(nil)

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc func(prettify.ThemeColors) StyleFunc
}

// NewTokenizer creates a chroma-based tokenizer that paints tokens with
// StyleFromTheme.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{styleFunc: StyleFromTheme}
}

// TokenizeLines tokenizes source code with full context, then splits tokens by line.
// This correctly handles multi-line constructs like /* */ comments.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source.
func (t *Tokenizer) TokenizeLines(language, source string, theme prettify.ThemeColors) [][]prettify.Token {
	if source == "" {
		return [][]prettify.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}

	// Coalesce for better performance with consecutive tokens of the same type
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	style := t.styleFunc(theme)
	var all []prettify.Token
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		all = append(all, prettify.Token{Text: token.Value, Style: style(token.Type)})
	}
	return splitTokensByLine(all)
}

// splitTokensByLine splits a flat list of tokens into per-line token slices.
// Handles tokens that span multiple lines by splitting them at newline boundaries.
func splitTokensByLine(tokens []prettify.Token) [][]prettify.Token {
	if len(tokens) == 0 {
		return [][]prettify.Token{}
	}

	var result [][]prettify.Token
	var currentLine []prettify.Token

	for _, tok := range tokens {
		if !strings.Contains(tok.Text, "\n") {
			currentLine = append(currentLine, tok)
			continue
		}

		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if part != "" {
				currentLine = append(currentLine, prettify.Token{Text: part, Style: tok.Style})
			}
			// Every part but the last ends a line.
			if i < len(parts)-1 {
				result = append(result, currentLine)
				currentLine = nil
			}
		}
	}

	if len(currentLine) > 0 {
		result = append(result, currentLine)
	}

	return result
}
