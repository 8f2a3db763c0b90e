package pinexpr

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// Parser parses pin expression tokens. Built once and reused, wrapping
// a participle.Parser[T] the same way the rest of this module's
// grammars do.
type Parser struct {
	parser *participle.Parser[Expr]
}

// NewParser builds a pin-expression parser.
func NewParser() (*Parser, error) {
	p, err := participle.Build[Expr](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("pinexpr: failed to build parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// ParseString parses a single pin expression token, e.g. "in[2]" or
// "in[2]->to_lut_input".
func (p *Parser) ParseString(token string) (*Expr, error) {
	expr, err := p.parser.ParseString("", token)
	if err != nil {
		return nil, fmt.Errorf("pinexpr: parse %q: %w", token, err)
	}
	return expr, nil
}
