package xmltree

import (
	"regexp"
	"strings"
)

type tokenKind int

const (
	tokOpen tokenKind = iota
	tokClose
	tokSelfClosing
	tokText
	tokComment
	tokDecl // <?...?> and <!DOCTYPE ...>
	tokCDATA
)

type token struct {
	kind  tokenKind
	name  string // Tag name for open, close and self-closing tags
	attrs string // Raw attribute text
	text  string // Raw text for everything else
}

var (
	openRE  = regexp.MustCompile(`^<([a-zA-Z_][\w:.-]*)((?:\s+[^>]*?)?)\s*(/?)>`)
	closeRE = regexp.MustCompile(`^</([a-zA-Z_][\w:.-]*)\s*>`)
	attrRE  = regexp.MustCompile(`([\w:.-]+)\s*=\s*("[^"]*"|'[^']*')`)
)

// lexer splits lines into tokens. It carries multi-line comment and CDATA
// state from one line to the next.
type lexer struct {
	inComment bool
	inCDATA   bool
}

func (l *lexer) line(s string) []token {
	var toks []token
	rest := strings.TrimSpace(s)
	for rest != "" {
		switch {
		case l.inComment:
			end := strings.Index(rest, "-->")
			if end < 0 {
				return append(toks, token{kind: tokComment, text: rest})
			}
			toks = append(toks, token{kind: tokComment, text: rest[:end+3]})
			rest = rest[end+3:]
			l.inComment = false
		case l.inCDATA:
			end := strings.Index(rest, "]]>")
			if end < 0 {
				return append(toks, token{kind: tokCDATA, text: rest})
			}
			toks = append(toks, token{kind: tokCDATA, text: rest[:end+3]})
			rest = rest[end+3:]
			l.inCDATA = false
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest[4:], "-->")
			if end < 0 {
				l.inComment = true
				return append(toks, token{kind: tokComment, text: rest})
			}
			toks = append(toks, token{kind: tokComment, text: rest[:end+7]})
			rest = rest[end+7:]
		case strings.HasPrefix(rest, "<![CDATA["):
			end := strings.Index(rest, "]]>")
			if end < 0 {
				l.inCDATA = true
				return append(toks, token{kind: tokCDATA, text: rest})
			}
			toks = append(toks, token{kind: tokCDATA, text: rest[:end+3]})
			rest = rest[end+3:]
		case strings.HasPrefix(rest, "<?"):
			end := strings.Index(rest, "?>")
			if end < 0 {
				return append(toks, token{kind: tokDecl, text: rest})
			}
			toks = append(toks, token{kind: tokDecl, text: rest[:end+2]})
			rest = rest[end+2:]
		case strings.HasPrefix(rest, "<!"):
			end := strings.Index(rest, ">")
			if end < 0 {
				return append(toks, token{kind: tokDecl, text: rest})
			}
			toks = append(toks, token{kind: tokDecl, text: rest[:end+1]})
			rest = rest[end+1:]
		case strings.HasPrefix(rest, "</"):
			m := closeRE.FindStringSubmatch(rest)
			if m == nil {
				return append(toks, token{kind: tokText, text: rest})
			}
			toks = append(toks, token{kind: tokClose, name: m[1]})
			rest = rest[len(m[0]):]
		case strings.HasPrefix(rest, "<"):
			m := openRE.FindStringSubmatch(rest)
			if m == nil {
				return append(toks, token{kind: tokText, text: rest})
			}
			kind := tokOpen
			if m[3] == "/" {
				kind = tokSelfClosing
			}
			toks = append(toks, token{kind: kind, name: m[1], attrs: strings.TrimSpace(m[2])})
			rest = rest[len(m[0]):]
		default:
			end := strings.Index(rest, "<")
			if end < 0 {
				end = len(rest)
			}
			if text := strings.TrimSpace(rest[:end]); text != "" {
				toks = append(toks, token{kind: tokText, text: text})
			}
			rest = rest[end:]
		}
		rest = strings.TrimLeft(rest, " \t")
	}
	return toks
}
