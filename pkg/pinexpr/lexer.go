package pinexpr

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes the cluster-internal pin expression language:
// `port_name[index]` or `port_name[index]->interconnect_name`. Built
// the same way as a simple ordered-rule lexer, over lexer.MustSimple
// and SimpleRules, just for a much smaller grammar.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
})
