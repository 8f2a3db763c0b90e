package atomnet

import "testing"

func buildLUT(t *testing.T, s *Store, name string, numInputs int, row TruthRow) (BlockID, PortID, PortID) {
	t.Helper()
	blk, err := s.AddBlock(name, BlockCombinational, ModelNames, &TruthTable{Rows: []TruthRow{row}})
	if err != nil {
		t.Fatalf("AddBlock(%s): %v", name, err)
	}
	in, err := s.AddPort(blk, "in", PortInput, numInputs)
	if err != nil {
		t.Fatalf("AddPort(in): %v", err)
	}
	out, err := s.AddPort(blk, "out", PortOutput, 1)
	if err != nil {
		t.Fatalf("AddPort(out): %v", err)
	}
	return blk, in, out
}

func TestAddBlockDuplicateName(t *testing.T) {
	s := NewStore()
	if _, err := s.AddBlock("a", BlockCombinational, ModelNames, nil); err != nil {
		t.Fatalf("first AddBlock: %v", err)
	}
	_, err := s.AddBlock("a", BlockCombinational, ModelNames, nil)
	if !IsKind(err, KindDuplicateName) {
		t.Fatalf("want DuplicateName, got %v", err)
	}
}

func TestPinNetBidirectionalConsistency(t *testing.T) {
	s := NewStore()
	_, _, out := buildLUT(t, s, "lut1", 1, TruthRow{LogicTrue, LogicTrue})
	driverPin := s.PortPins(out)[0]

	_, in2, _ := buildLUT(t, s, "lut2", 1, TruthRow{LogicTrue, LogicTrue})
	sinkPin := s.PortPins(in2)[0]

	net, err := s.AddNet("n1", driverPin, []PinID{sinkPin})
	if err != nil {
		t.Fatalf("AddNet: %v", err)
	}

	if s.PinNet(driverPin) != net {
		t.Fatalf("driver pin's net = %v, want %v", s.PinNet(driverPin), net)
	}
	if s.PinNet(sinkPin) != net {
		t.Fatalf("sink pin's net = %v, want %v", s.PinNet(sinkPin), net)
	}
	if s.NetDriver(net) != driverPin {
		t.Fatalf("net driver = %v, want %v", s.NetDriver(net), driverPin)
	}
	sinks := s.NetSinks(net)
	if len(sinks) != 1 || sinks[0] != sinkPin {
		t.Fatalf("net sinks = %v, want [%v]", sinks, sinkPin)
	}
}

func TestRemoveBlockDetachesPinsLeavesNet(t *testing.T) {
	s := NewStore()
	_, _, out := buildLUT(t, s, "lut1", 1, TruthRow{LogicTrue, LogicTrue})
	driverPin := s.PortPins(out)[0]
	blk2, in2, _ := buildLUT(t, s, "lut2", 1, TruthRow{LogicTrue, LogicTrue})
	sinkPin := s.PortPins(in2)[0]

	net, err := s.AddNet("n1", driverPin, []PinID{sinkPin})
	if err != nil {
		t.Fatalf("AddNet: %v", err)
	}

	if err := s.RemoveBlock(blk2); err != nil {
		t.Fatalf("RemoveBlock: %v", err)
	}

	if sinks := s.NetSinks(net); len(sinks) != 0 {
		t.Fatalf("net sinks after RemoveBlock = %v, want empty", sinks)
	}
	if s.PinNet(sinkPin).Valid() {
		t.Fatalf("removed pin still reports a live net")
	}
	if _, ok := s.FindBlockByName("lut2"); ok {
		t.Fatalf("lut2 name still resolves after removal")
	}
}

func TestRemoveNetInvalidatesPinReferences(t *testing.T) {
	s := NewStore()
	_, _, out := buildLUT(t, s, "lut1", 1, TruthRow{LogicTrue, LogicTrue})
	driverPin := s.PortPins(out)[0]
	_, in2, _ := buildLUT(t, s, "lut2", 1, TruthRow{LogicTrue, LogicTrue})
	sinkPin := s.PortPins(in2)[0]

	net, err := s.AddNet("n1", driverPin, []PinID{sinkPin})
	if err != nil {
		t.Fatalf("AddNet: %v", err)
	}
	if err := s.RemoveNet(net); err != nil {
		t.Fatalf("RemoveNet: %v", err)
	}
	if s.PinNet(driverPin).Valid() || s.PinNet(sinkPin).Valid() {
		t.Fatalf("pins still reference removed net")
	}
	if _, ok := s.FindNetByName("n1"); ok {
		t.Fatalf("net name still resolves after removal")
	}
}

func TestOutpadShapeInvariant(t *testing.T) {
	s := NewStore()
	blk, err := s.AddBlock("pad", BlockOutpad, ModelOutput, nil)
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if _, err := s.AddPort(blk, "outpad", PortInput, 1); err != nil {
		t.Fatalf("first input port: %v", err)
	}
	if _, err := s.AddPort(blk, "outpad2", PortInput, 1); !IsKind(err, KindShapeMismatch) {
		t.Fatalf("second input port on OUTPAD: want ShapeMismatch, got %v", err)
	}
	if _, err := s.AddPort(blk, "o", PortOutput, 1); !IsKind(err, KindShapeMismatch) {
		t.Fatalf("output port on OUTPAD: want ShapeMismatch, got %v", err)
	}
}

func TestInpadShapeInvariant(t *testing.T) {
	s := NewStore()
	blk, err := s.AddBlock("pad", BlockInpad, ModelInput, nil)
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if _, err := s.AddPort(blk, "i", PortInput, 1); !IsKind(err, KindShapeMismatch) {
		t.Fatalf("input port on INPAD: want ShapeMismatch, got %v", err)
	}
	if _, err := s.AddPort(blk, "o", PortOutput, 1); err != nil {
		t.Fatalf("output port on INPAD should be allowed: %v", err)
	}
}

func TestTruthTableInconsistentOutputRejected(t *testing.T) {
	s := NewStore()
	bad := &TruthTable{Rows: []TruthRow{
		{LogicTrue, LogicTrue},
		{LogicFalse, LogicFalse},
	}}
	_, err := s.AddBlock("lut", BlockCombinational, ModelNames, bad)
	if !IsKind(err, KindShapeMismatch) {
		t.Fatalf("want ShapeMismatch for inconsistent truth table, got %v", err)
	}
}

func TestExpandMaskOnSetAndOffSet(t *testing.T) {
	// AND2 on-set: only 11 -> 1.
	onSet := &TruthTable{Rows: []TruthRow{{LogicTrue, LogicTrue, LogicTrue}}}
	mask, err := onSet.ExpandMask()
	if err != nil {
		t.Fatalf("ExpandMask: %v", err)
	}
	if mask.Uint64() != 0b1000 {
		t.Fatalf("AND2 on-set mask = %b, want 1000", mask)
	}

	// Same function, off-set encoding: rows list the 3 minterms that are 0.
	offSet := &TruthTable{Rows: []TruthRow{
		{LogicFalse, LogicDontCare, LogicFalse},
		{LogicDontCare, LogicFalse, LogicFalse},
	}}
	mask2, err := offSet.ExpandMask()
	if err != nil {
		t.Fatalf("ExpandMask off-set: %v", err)
	}
	if mask2.Uint64() != mask.Uint64() {
		t.Fatalf("off-set mask = %b, want %b", mask2, mask)
	}
}

func TestExpandMaskEmptyTableIsConstantZero(t *testing.T) {
	empty := &TruthTable{}
	mask, err := empty.ExpandMask()
	if err != nil {
		t.Fatalf("ExpandMask: %v", err)
	}
	if mask.Sign() != 0 {
		t.Fatalf("empty table mask = %v, want 0", mask)
	}
}
