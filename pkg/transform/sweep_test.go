package transform

import (
	"testing"

	"github.com/fpgacore/atomnet/pkg/atomnet"
)

// buildChain wires A(INPAD) -> B(combinational) -> C(OUTPAD), with the
// B->C net marked constant so C is dead from the first pass: each
// sweep pass peels off exactly one link of the chain.
func buildChain(t *testing.T) *atomnet.Store {
	t.Helper()
	s := atomnet.NewStore()

	a, err := s.AddBlock("a", atomnet.BlockInpad, atomnet.ModelInput, nil)
	if err != nil {
		t.Fatalf("AddBlock a: %v", err)
	}
	aOut, err := s.AddPort(a, "out", atomnet.PortOutput, 1)
	if err != nil {
		t.Fatalf("AddPort a.out: %v", err)
	}

	b, err := s.AddBlock("b", atomnet.BlockCombinational, atomnet.ModelNames, identityTruthTable())
	if err != nil {
		t.Fatalf("AddBlock b: %v", err)
	}
	bIn, err := s.AddPort(b, "in", atomnet.PortInput, 1)
	if err != nil {
		t.Fatalf("AddPort b.in: %v", err)
	}
	bOut, err := s.AddPort(b, "out", atomnet.PortOutput, 1)
	if err != nil {
		t.Fatalf("AddPort b.out: %v", err)
	}

	c, err := s.AddBlock("c", atomnet.BlockOutpad, atomnet.ModelOutput, nil)
	if err != nil {
		t.Fatalf("AddBlock c: %v", err)
	}
	cIn, err := s.AddPort(c, "in", atomnet.PortInput, 1)
	if err != nil {
		t.Fatalf("AddPort c.in: %v", err)
	}

	if _, err := s.AddNet("a_net", s.PortPins(aOut)[0], []atomnet.PinID{s.PortPins(bIn)[0]}); err != nil {
		t.Fatalf("AddNet a_net: %v", err)
	}
	bNet, err := s.AddNet("b_net", s.PortPins(bOut)[0], []atomnet.PinID{s.PortPins(cIn)[0]})
	if err != nil {
		t.Fatalf("AddNet b_net: %v", err)
	}
	if err := s.SetNetConstant(bNet, true); err != nil {
		t.Fatalf("SetNetConstant: %v", err)
	}

	return s
}

func TestSweepPassPeelsChainOneLinkAtATime(t *testing.T) {
	s := buildChain(t)

	removed1, err := SweepPass(s)
	if err != nil {
		t.Fatalf("pass 1: %v", err)
	}
	if removed1 != 1 {
		t.Fatalf("pass 1 removed %d, want 1 (c)", removed1)
	}
	if _, ok := s.FindBlockByName("c"); ok {
		t.Fatalf("c should be gone after pass 1")
	}
	if _, ok := s.FindBlockByName("b"); !ok {
		t.Fatalf("b should still be present after pass 1")
	}

	removed2, err := SweepPass(s)
	if err != nil {
		t.Fatalf("pass 2: %v", err)
	}
	if removed2 != 2 {
		t.Fatalf("pass 2 removed %d, want 2 (b and b_net)", removed2)
	}
	if _, ok := s.FindBlockByName("b"); ok {
		t.Fatalf("b should be gone after pass 2")
	}
	if _, ok := s.FindBlockByName("a"); !ok {
		t.Fatalf("a should still be present after pass 2")
	}

	removed3, err := SweepPass(s)
	if err != nil {
		t.Fatalf("pass 3: %v", err)
	}
	if removed3 != 2 {
		t.Fatalf("pass 3 removed %d, want 2 (a and a_net)", removed3)
	}
	if _, ok := s.FindBlockByName("a"); ok {
		t.Fatalf("a should be gone after pass 3")
	}

	removed4, err := SweepPass(s)
	if err != nil {
		t.Fatalf("pass 4: %v", err)
	}
	if removed4 != 0 {
		t.Fatalf("final pass removed %d, want 0", removed4)
	}
}

func TestSweepIterativeMatchesSumOfPasses(t *testing.T) {
	s := buildChain(t)

	total, err := SweepIterative(s)
	if err != nil {
		t.Fatalf("SweepIterative: %v", err)
	}
	if total != 5 {
		t.Fatalf("got %d total removals, want 5 (c, b, b_net, a, a_net)", total)
	}

	again, err := SweepIterative(s)
	if err != nil {
		t.Fatalf("second SweepIterative: %v", err)
	}
	if again != 0 {
		t.Fatalf("sweep_iterative is not idempotent: second run removed %d", again)
	}
}
