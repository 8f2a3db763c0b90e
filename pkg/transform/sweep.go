package transform

import "github.com/fpgacore/atomnet/pkg/atomnet"

// SweepIterative runs one sweep pass repeatedly until a pass removes
// nothing, returning the total number of blocks and nets removed.
// Removal order within a pass does not affect the fixpoint reached.
func SweepIterative(atoms *atomnet.Store) (int, error) {
	total := 0
	for {
		removed, err := SweepPass(atoms)
		if err != nil {
			return total, err
		}
		total += removed
		if removed == 0 {
			return total, nil
		}
	}
}

// SweepPass runs the four dead-logic sweeps once, against a snapshot
// of the netlist taken at the start of the call: unused primary
// inputs, unused or constant-driven primary outputs, dangling
// non-I/O blocks (no fanout), and dangling nets (no driver or no
// sinks). Cascading effects (a block that only becomes dangling
// because this pass removed its sole sink) surface on the next call,
// not within this one.
func SweepPass(atoms *atomnet.Store) (int, error) {
	blocks := atoms.Blocks()
	nets := atoms.Nets()

	var deadBlocks []atomnet.BlockID
	for _, b := range blocks {
		switch atoms.BlockKind(b) {
		case atomnet.BlockInpad:
			if isUnusedInput(atoms, b) {
				deadBlocks = append(deadBlocks, b)
			}
		case atomnet.BlockOutpad:
			if isDeadOutput(atoms, b) {
				deadBlocks = append(deadBlocks, b)
			}
		default:
			if isDanglingBlock(atoms, b) {
				deadBlocks = append(deadBlocks, b)
			}
		}
	}

	var deadNets []atomnet.NetID
	for _, n := range nets {
		if isDanglingNet(atoms, n) {
			deadNets = append(deadNets, n)
		}
	}

	for _, b := range deadBlocks {
		if err := atoms.RemoveBlock(b); err != nil {
			return 0, newErr(atomnet.KindConsistency, "sweep pass", err)
		}
	}
	for _, n := range deadNets {
		if err := atoms.RemoveNet(n); err != nil {
			return 0, newErr(atomnet.KindConsistency, "sweep pass", err)
		}
	}
	return len(deadBlocks) + len(deadNets), nil
}

// isUnusedInput reports whether an INPAD's output drives nothing.
func isUnusedInput(atoms *atomnet.Store, block atomnet.BlockID) bool {
	for _, p := range atoms.BlockPorts(block) {
		if atoms.PortDirection(p) != atomnet.PortOutput {
			continue
		}
		for _, pin := range atoms.PortPins(p) {
			net := atoms.PinNet(pin)
			if !net.Valid() || len(atoms.NetSinks(net)) == 0 {
				return true
			}
		}
	}
	return false
}

// isDeadOutput reports whether an OUTPAD's input is unconnected or
// driven by a constant net. This single check covers both "unused
// output" removal and "constant primary output" removal — there's
// nothing left for a separate constant-output pass to do.
func isDeadOutput(atoms *atomnet.Store, block atomnet.BlockID) bool {
	for _, p := range atoms.BlockPorts(block) {
		if atoms.PortDirection(p) != atomnet.PortInput {
			continue
		}
		for _, pin := range atoms.PortPins(p) {
			net := atoms.PinNet(pin)
			if !net.Valid() || atoms.NetIsConstant(net) {
				return true
			}
		}
	}
	return false
}

// isDanglingBlock reports whether a non-I/O block has no fanout: every
// output pin is either unconnected or drives a net with no sinks.
func isDanglingBlock(atoms *atomnet.Store, block atomnet.BlockID) bool {
	hasOutput := false
	for _, p := range atoms.BlockPorts(block) {
		if atoms.PortDirection(p) != atomnet.PortOutput {
			continue
		}
		for _, pin := range atoms.PortPins(p) {
			hasOutput = true
			net := atoms.PinNet(pin)
			if net.Valid() && len(atoms.NetSinks(net)) > 0 {
				return false
			}
		}
	}
	return hasOutput
}

func isDanglingNet(atoms *atomnet.Store, net atomnet.NetID) bool {
	return !atoms.NetDriver(net).Valid() || len(atoms.NetSinks(net)) == 0
}
