package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/prettify"
)

// StyleFunc maps chroma token types to prettify styles.
type StyleFunc func(chromalib.TokenType) prettify.Style

// StyleFromTheme returns a function that maps chroma token types to styles
// painted from the theme's ANSI palette.
func StyleFromTheme(t prettify.ThemeColors) StyleFunc {
	return func(tt chromalib.TokenType) prettify.Style {
		switch {
		case tt == chromalib.KeywordType:
			return prettify.Style{Fg: t.Palette[3].Ptr(), Bold: true}
		case tt.InCategory(chromalib.Keyword):
			return prettify.Style{Fg: t.Palette[5].Ptr(), Bold: true}
		case tt.InCategory(chromalib.Comment):
			return prettify.Style{Fg: t.DimColor().Ptr(), Italic: true}
		case tt.InSubCategory(chromalib.String):
			return prettify.Style{Fg: t.StringColor().Ptr()}
		case tt.InSubCategory(chromalib.Number):
			return prettify.Style{Fg: t.NumberColor().Ptr()}
		case tt.InCategory(chromalib.Operator):
			return prettify.Style{Fg: t.Palette[6].Ptr()}
		case tt == chromalib.NameFunction, tt == chromalib.NameFunctionMagic:
			return prettify.Style{Fg: t.Palette[4].Ptr()}
		case tt == chromalib.NameBuiltin, tt == chromalib.NameBuiltinPseudo:
			return prettify.Style{Fg: t.Palette[14].Ptr()}
		case tt == chromalib.NameConstant, tt == chromalib.KeywordConstant:
			return prettify.Style{Fg: t.NumberColor().Ptr()}
		case tt == chromalib.NameTag:
			return prettify.Style{Fg: t.Palette[4].Ptr(), Bold: true}
		case tt == chromalib.NameAttribute:
			return prettify.Style{Fg: t.KeyColor().Ptr()}
		case tt == chromalib.Punctuation:
			return prettify.Style{Fg: t.DimColor().Ptr()}
		default:
			return prettify.Style{}
		}
	}
}
