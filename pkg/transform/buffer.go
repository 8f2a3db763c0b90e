// Package transform applies post-ingest cleanup passes to an atom
// netlist: buffer-LUT absorption and iterative dead-logic sweeping.
package transform

import "github.com/fpgacore/atomnet/pkg/atomnet"

// IsBufferLUT reports whether block is a combinational, single-input,
// single-output "names" LUT with a one-row truth table of the form
// "1 1" or "0 0" — an identity buffer eligible for absorption.
func IsBufferLUT(atoms *atomnet.Store, block atomnet.BlockID) bool {
	if atoms.BlockKind(block) != atomnet.BlockCombinational {
		return false
	}
	model := atoms.BlockModel(block)
	if model == nil || model.Name != atomnet.ModelNames {
		return false
	}

	var inPort, outPort atomnet.PortID
	inCount, outCount := 0, 0
	for _, p := range atoms.BlockPorts(block) {
		switch atoms.PortDirection(p) {
		case atomnet.PortInput:
			inCount++
			inPort = p
		case atomnet.PortOutput:
			outCount++
			outPort = p
		default:
			return false
		}
	}
	if inCount != 1 || outCount != 1 || atoms.PortWidth(inPort) != 1 || atoms.PortWidth(outPort) != 1 {
		return false
	}

	inPin := atoms.PortPins(inPort)[0]
	outPin := atoms.PortPins(outPort)[0]
	if !atoms.PinNet(inPin).Valid() || !atoms.PinNet(outPin).Valid() {
		return false
	}

	tt := atoms.BlockTruthTable(block)
	if tt == nil || len(tt.Rows) != 1 || len(tt.Rows[0]) != 2 {
		return false
	}
	row := tt.Rows[0]
	return (row[0] == atomnet.LogicTrue && row[1] == atomnet.LogicTrue) ||
		(row[0] == atomnet.LogicFalse && row[1] == atomnet.LogicFalse)
}

// AbsorbBufferLUTs removes every buffer LUT currently in atoms,
// merging its input and output nets per the driver/sink primary-I/O
// table. A buffer wired directly between a primary input and a
// primary output is left in place, preserving both names. Returns the
// number of LUTs absorbed.
func AbsorbBufferLUTs(atoms *atomnet.Store) (int, error) {
	absorbed := 0
	for _, block := range atoms.Blocks() {
		if !IsBufferLUT(atoms, block) {
			continue
		}
		ok, err := absorbOne(atoms, block)
		if err != nil {
			return absorbed, err
		}
		if ok {
			absorbed++
		}
	}
	return absorbed, nil
}

func absorbOne(atoms *atomnet.Store, block atomnet.BlockID) (bool, error) {
	var inPort, outPort atomnet.PortID
	for _, p := range atoms.BlockPorts(block) {
		switch atoms.PortDirection(p) {
		case atomnet.PortInput:
			inPort = p
		case atomnet.PortOutput:
			outPort = p
		}
	}
	inPin := atoms.PortPins(inPort)[0]
	outPin := atoms.PortPins(outPort)[0]
	nIn := atoms.PinNet(inPin)
	nOut := atoms.PinNet(outPin)

	driver := atoms.NetDriver(nIn)
	sinksOut := atoms.NetSinks(nOut)

	driverIsPI := driver.Valid() && atoms.BlockKind(atoms.PortBlock(atoms.PinPort(driver))) == atomnet.BlockInpad
	sinkIsPO := false
	for _, sink := range sinksOut {
		if atoms.BlockKind(atoms.PortBlock(atoms.PinPort(sink))) == atomnet.BlockOutpad {
			sinkIsPO = true
			break
		}
	}

	if driverIsPI && sinkIsPO {
		return false, nil
	}

	mergedName := atoms.NetName(nOut)
	if driverIsPI && !sinkIsPO {
		mergedName = atoms.NetName(nIn)
	}

	sinksIn := atoms.NetSinks(nIn)
	merged := make([]atomnet.PinID, 0, len(sinksIn)+len(sinksOut))
	for _, sink := range sinksIn {
		if sink != inPin {
			merged = append(merged, sink)
		}
	}
	merged = append(merged, sinksOut...)

	if err := atoms.RemoveBlock(block); err != nil {
		return false, newErr(atomnet.KindConsistency, "buffer absorption", err)
	}
	if err := atoms.RemoveNet(nIn); err != nil {
		return false, newErr(atomnet.KindConsistency, "buffer absorption", err)
	}
	if err := atoms.RemoveNet(nOut); err != nil {
		return false, newErr(atomnet.KindConsistency, "buffer absorption", err)
	}
	if _, err := atoms.AddNet(mergedName, driver, merged); err != nil {
		return false, newErr(atomnet.KindConsistency, "buffer absorption", err)
	}
	return true, nil
}
