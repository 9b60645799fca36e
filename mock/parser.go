// Package mock provides test doubles for prettify interfaces.
package mock

import (
	"io"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var _ prettify.Parser = (*Parser)(nil)

// Parser is a mock implementation of prettify.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*prettify.Diff, error)
}

func (p *Parser) Parse(r io.Reader) (*prettify.Diff, error) {
	return p.ParseFn(r)
}
