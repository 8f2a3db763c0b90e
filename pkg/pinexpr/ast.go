package pinexpr

// Expr is a parsed cluster-internal pin expression: `port[index]` or
// `port[index]->interconnect`. The declarative grammar tags follow the
// same struct-tag shape used by this module's other participle
// grammars.
type Expr struct {
	Port         string  `@Ident`
	Index        int     `LBracket @Int RBracket`
	Interconnect *string `( Arrow @Ident )?`
}

// HasInterconnect reports whether expr named an upstream interconnect
// (an internal pin), as opposed to a bare "open"/top-level token.
func (e *Expr) HasInterconnect() bool {
	return e.Interconnect != nil
}
