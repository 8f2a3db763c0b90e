package pinexpr

import (
	"fmt"

	"github.com/fpgacore/atomnet/pkg/archmodel"
)

const errSource = "pinexpr"

// ResolvePin matches expr's port name and index against node's ports.
// Callers decide which node to pass: the parent pb_graph_node when expr
// appears at an input/clock port of a child, or the child itself when
// expr appears at one of the child's own output ports.
func ResolvePin(node *archmodel.PbGraphNode, expr *Expr) (*archmodel.PbGraphPin, error) {
	return ResolvePinAmong(node.Ports, expr)
}

// ResolvePinAmong matches expr against an explicit pool of ports rather
// than a single node's own Ports. packednet uses this to resolve a
// pin expression against the combined pool of a node and its siblings
// or children: the parent node and the table of sibling pb_graph_nodes
// form the resolution context a pin expression is matched against.
func ResolvePinAmong(ports []*archmodel.PbGraphPort, expr *Expr) (*archmodel.PbGraphPin, error) {
	for _, port := range ports {
		if port.Name != expr.Port {
			continue
		}
		if expr.Index < 0 || expr.Index >= port.Width {
			return nil, fmt.Errorf("%s: unknown pin: index %d out of range for port %q (width %d): %w",
				errSource, expr.Index, expr.Port, port.Width, errUnknownPin)
		}
		return port.Pins[expr.Index], nil
	}
	return nil, fmt.Errorf("%s: unknown pin: no port %q in pool: %w", errSource, expr.Port, errUnknownPin)
}

// ResolveEdge finds pin's outgoing edge whose interconnect name matches
// expr.Interconnect. Ties are architecturally disallowed (distinct
// interconnects have distinct names within a scope); the first match is
// returned.
func ResolveEdge(pin *archmodel.PbGraphPin, expr *Expr) (*archmodel.Edge, error) {
	if expr.Interconnect == nil {
		return nil, fmt.Errorf("%s: unknown interconnect: expression %q names no interconnect: %w", errSource, expr.Port, errUnknownInterconnect)
	}
	want := *expr.Interconnect
	for _, e := range pin.Edges {
		if e.InterconnectName == want {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s: unknown interconnect: %q: %w", errSource, want, errUnknownInterconnect)
}

// Resolve resolves expr's pin against node, and if expr names an
// interconnect, resolves the matching outgoing edge too.
func Resolve(node *archmodel.PbGraphNode, expr *Expr) (*archmodel.PbGraphPin, *archmodel.Edge, error) {
	pin, err := ResolvePin(node, expr)
	if err != nil {
		return nil, nil, err
	}
	if !expr.HasInterconnect() {
		return pin, nil, nil
	}
	edge, err := ResolveEdge(pin, expr)
	if err != nil {
		return nil, nil, err
	}
	return pin, edge, nil
}
