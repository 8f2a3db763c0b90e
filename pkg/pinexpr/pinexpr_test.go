package pinexpr

import (
	"testing"

	"github.com/fpgacore/atomnet/pkg/archmodel"
)

func TestParseBareExpr(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	expr, err := p.ParseString("in[2]")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if expr.Port != "in" || expr.Index != 2 || expr.HasInterconnect() {
		t.Fatalf("got %+v", expr)
	}
}

func TestParseInterconnectExpr(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	expr, err := p.ParseString("out[0]->to_lut_in_mux")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if expr.Port != "out" || expr.Index != 0 || !expr.HasInterconnect() || *expr.Interconnect != "to_lut_in_mux" {
		t.Fatalf("got %+v", expr)
	}
}

func buildNode() (*archmodel.PbGraphNode, *archmodel.PbGraphPin) {
	node := &archmodel.PbGraphNode{TypeName: "lut4"}
	port := &archmodel.PbGraphPort{Owner: node, Name: "in", Direction: archmodel.PortInput, Width: 4}
	pins := make([]*archmodel.PbGraphPin, 4)
	for i := range pins {
		pins[i] = &archmodel.PbGraphPin{Port: port, Bit: i}
	}
	port.Pins = pins
	node.Ports = []*archmodel.PbGraphPort{port}
	target := pins[2]
	pins[0].Edges = []*archmodel.Edge{{InterconnectName: "mux0", To: target}}
	return node, target
}

func TestResolvePinAndEdge(t *testing.T) {
	node, _ := buildNode()
	expr := &Expr{Port: "in", Index: 0}
	pin, edge, err := Resolve(node, expr)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pin != node.Ports[0].Pins[0] {
		t.Fatalf("resolved wrong pin")
	}
	if edge != nil {
		t.Fatalf("bare expression should not resolve an edge")
	}

	ic := "mux0"
	expr2 := &Expr{Port: "in", Index: 0, Interconnect: &ic}
	_, edge2, err := Resolve(node, expr2)
	if err != nil {
		t.Fatalf("Resolve with interconnect: %v", err)
	}
	if edge2 == nil || edge2.InterconnectName != "mux0" {
		t.Fatalf("got edge %+v", edge2)
	}
}

func TestResolveUnknownPin(t *testing.T) {
	node, _ := buildNode()
	_, _, err := Resolve(node, &Expr{Port: "missing", Index: 0})
	if !IsUnknownPin(err) {
		t.Fatalf("want UnknownPin, got %v", err)
	}
}

func TestResolveIndexOutOfRange(t *testing.T) {
	node, _ := buildNode()
	_, _, err := Resolve(node, &Expr{Port: "in", Index: 9})
	if !IsUnknownPin(err) {
		t.Fatalf("want UnknownPin for out-of-range index, got %v", err)
	}
}

func TestResolveUnknownInterconnect(t *testing.T) {
	node, _ := buildNode()
	ic := "nope"
	_, _, err := Resolve(node, &Expr{Port: "in", Index: 0, Interconnect: &ic})
	if !IsUnknownInterconnect(err) {
		t.Fatalf("want UnknownInterconnect, got %v", err)
	}
}
