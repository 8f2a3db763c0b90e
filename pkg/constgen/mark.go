// Package constgen identifies constant-generator primitives inside an
// already-ingested cluster tree and asserts that the atom netlist
// agrees with what it finds.
package constgen

import (
	"fmt"

	"github.com/fpgacore/atomnet/pkg/archmodel"
	"github.com/fpgacore/atomnet/pkg/atomnet"
	"github.com/fpgacore/atomnet/pkg/packednet"
)

// Result lists every atom block identified as a constant generator.
type Result struct {
	Generators []atomnet.BlockID
}

// Mark recursively descends every cluster's pb tree. A leaf pb is a
// constant generator when it is not a primary input and every input and
// clock pin is unconnected in pb_route. Each generator's output pins
// must already be marked constant in the atom netlist; Mark asserts
// this rather than setting it (the gate-level parser that populated the
// atom netlist is the authority on constant values).
func Mark(clusters []*packednet.ClusteredBlock, atoms *atomnet.Store) (*Result, error) {
	var generators []atomnet.BlockID
	for _, cb := range clusters {
		if err := walk(cb, cb.Root, atoms, &generators); err != nil {
			return nil, err
		}
	}
	return &Result{Generators: generators}, nil
}

func walk(cb *packednet.ClusteredBlock, node *packednet.Pb, atoms *atomnet.Store, generators *[]atomnet.BlockID) error {
	if node.IsLeaf() {
		return checkLeaf(cb, node, atoms, generators)
	}
	for _, slots := range node.Children {
		for _, child := range slots {
			if child == nil {
				continue
			}
			if err := walk(cb, child, atoms, generators); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkLeaf(cb *packednet.ClusteredBlock, node *packednet.Pb, atoms *atomnet.Store, generators *[]atomnet.BlockID) error {
	if !node.AtomBlock.Valid() {
		return nil
	}
	if atoms.BlockKind(node.AtomBlock) == atomnet.BlockInpad {
		return nil
	}

	for _, port := range node.GraphNode.Ports {
		if port.Direction == archmodel.PortOutput {
			continue
		}
		for _, pin := range port.Pins {
			if cb.Routes[pin.PinCountInCluster].AtomNetID.Valid() {
				return nil
			}
		}
	}

	*generators = append(*generators, node.AtomBlock)

	for _, port := range node.GraphNode.Ports {
		if port.Direction != archmodel.PortOutput {
			continue
		}
		for bit := range port.Pins {
			atomPin, err := atomPinByPortName(atoms, node.AtomBlock, port.Name, bit)
			if err != nil {
				return newErr(atomnet.KindUnknownEntity,
					fmt.Sprintf("constant generator %q output %q", atoms.BlockName(node.AtomBlock), port.Name), err)
			}
			if !atoms.PinIsConstant(atomPin) {
				return newErr(atomnet.KindConsistency,
					fmt.Sprintf("constant generator %q output %q", atoms.BlockName(node.AtomBlock), port.Name),
					fmt.Errorf("driver net is not marked constant"))
			}
		}
	}
	return nil
}

func atomPinByPortName(atoms *atomnet.Store, block atomnet.BlockID, name string, bit int) (atomnet.PinID, error) {
	for _, portID := range atoms.BlockPorts(block) {
		if atoms.PortName(portID) != name {
			continue
		}
		pins := atoms.PortPins(portID)
		if bit < 0 || bit >= len(pins) {
			return atomnet.InvalidPinID, fmt.Errorf("bit %d out of range for port %q (width %d)", bit, name, len(pins))
		}
		return pins[bit], nil
	}
	return atomnet.InvalidPinID, fmt.Errorf("atom block %q has no port %q", atoms.BlockName(block), name)
}
