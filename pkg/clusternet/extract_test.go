package clusternet

import (
	"testing"

	"github.com/fpgacore/atomnet/pkg/archmodel"
	"github.com/fpgacore/atomnet/pkg/atomnet"
	"github.com/fpgacore/atomnet/pkg/packednet"
)

func twoPinTypeWithGlobals(global0, global1 bool) *archmodel.Type {
	pin0 := &archmodel.PbGraphPin{PinCountInCluster: 0, IsGlobalPin: global0}
	pin1 := &archmodel.PbGraphPin{PinCountInCluster: 1, IsGlobalPin: global1}
	port0 := &archmodel.PbGraphPort{Name: "clk", Direction: archmodel.PortClock, Width: 1, Pins: []*archmodel.PbGraphPin{pin0}}
	port1 := &archmodel.PbGraphPort{Name: "in", Direction: archmodel.PortInput, Width: 1, Pins: []*archmodel.PbGraphPin{pin1}}
	pin0.Port, pin1.Port = port0, port1
	root := &archmodel.PbGraphNode{TypeName: "clb", Ports: []*archmodel.PbGraphPort{port0, port1}}
	return &archmodel.Type{Name: "clb", Capacity: 1, NumPins: 2, RoutingPins: 2, Root: root}
}

// twoPinType returns a two-pin type whose pins disagree on globalness
// (pin 0 global, pin 1 not) — used to exercise the mixed-global
// rejection path.
func twoPinType() *archmodel.Type { return twoPinTypeWithGlobals(true, false) }

// buildAtoms creates a "clk" net driven by an INPAD. withSink also adds
// a single sink pin, so occurrence-count bookkeeping in Extract can be
// matched to however many cluster pins a test wires onto the net.
func buildAtoms(t *testing.T, withSink bool) (*atomnet.Store, atomnet.NetID) {
	t.Helper()
	s := atomnet.NewStore()
	drv, err := s.AddBlock("drv", atomnet.BlockInpad, atomnet.ModelInput, nil)
	if err != nil {
		t.Fatalf("AddBlock drv: %v", err)
	}
	drvOut, err := s.AddPort(drv, "out", atomnet.PortOutput, 1)
	if err != nil {
		t.Fatalf("AddPort: %v", err)
	}
	var sinks []atomnet.PinID
	if withSink {
		sink, err := s.AddBlock("sink", atomnet.BlockCombinational, atomnet.ModelNames, nil)
		if err != nil {
			t.Fatalf("AddBlock sink: %v", err)
		}
		sinkIn, err := s.AddPort(sink, "in", atomnet.PortInput, 1)
		if err != nil {
			t.Fatalf("AddPort sink.in: %v", err)
		}
		sinks = s.PortPins(sinkIn)
	}
	netID, err := s.AddNet("clk", s.PortPins(drvOut)[0], sinks)
	if err != nil {
		t.Fatalf("AddNet: %v", err)
	}
	return s, netID
}

func TestExtractDedupesRepeatedNet(t *testing.T) {
	typ := twoPinTypeWithGlobals(true, true)
	atoms, netID := buildAtoms(t, true)

	cb := &packednet.ClusteredBlock{
		Type:             typ,
		Routes:           []packednet.PbRoute{{AtomNetID: netID, PrevPbPin: packednet.InvalidPrevPin}, {AtomNetID: netID, PrevPbPin: packednet.InvalidPrevPin}},
		ExternalNetIndex: []int{-1, -1},
	}

	result, err := Extract([]*packednet.ClusteredBlock{cb}, atoms, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Nets) != 1 {
		t.Fatalf("got %d distinct nets, want 1", len(result.Nets))
	}
	if cb.ExternalNetIndex[0] != 0 || cb.ExternalNetIndex[1] != 0 {
		t.Fatalf("both pins should map to net index 0, got %v", cb.ExternalNetIndex)
	}
	if !atoms.NetIsGlobal(netID) {
		t.Fatalf("net should have been marked global (clk pin is global)")
	}
}

func TestExtractRejectsMixedGlobal(t *testing.T) {
	typ := twoPinType()
	atoms, netID := buildAtoms(t, true)

	// Force both pins (one global, one not) onto the same net.
	cb := &packednet.ClusteredBlock{
		Type:             typ,
		Routes:           []packednet.PbRoute{{AtomNetID: netID, PrevPbPin: packednet.InvalidPrevPin}, {AtomNetID: netID, PrevPbPin: packednet.InvalidPrevPin}},
		ExternalNetIndex: []int{-1, -1},
	}

	_, err := Extract([]*packednet.ClusteredBlock{cb}, atoms, nil)
	if !atomnet.IsKind(err, atomnet.KindConsistency) {
		t.Fatalf("want ConsistencyError, got %v", err)
	}
}

func TestExtractRejectsUndeclaredClock(t *testing.T) {
	typ := twoPinType()
	atoms, netID := buildAtoms(t, false)

	cb := &packednet.ClusteredBlock{
		Type:             typ,
		Routes:           []packednet.PbRoute{{AtomNetID: netID, PrevPbPin: packednet.InvalidPrevPin}, {AtomNetID: atomnet.InvalidNetID, PrevPbPin: packednet.InvalidPrevPin}},
		ExternalNetIndex: []int{-1, -1},
	}

	_, err := Extract([]*packednet.ClusteredBlock{cb}, atoms, []string{"missing_clock"})
	if !atomnet.IsKind(err, atomnet.KindUnknownEntity) {
		t.Fatalf("want UnknownEntity, got %v", err)
	}
}
