// Package packednet ingests a parsed packed-netlist document (given an
// already-built archmodel.Architecture and a populated atomnet.Store)
// into a tree of ClusteredBlock values: the pb hierarchy instantiated
// inside each cluster, and the pb_route table recording which atom net
// each pin carries.
package packednet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fpgacore/atomnet/pkg/archmodel"
	"github.com/fpgacore/atomnet/pkg/atomnet"
	"github.com/fpgacore/atomnet/pkg/packeddoc"
	"github.com/fpgacore/atomnet/pkg/pinexpr"
)

const tokenOpen = "open"

// Ingest walks doc against arch, cross-referencing every pin expression
// and net name against atoms, and returns one ClusteredBlock per
// top-level cluster instance in document order.
func Ingest(doc *packeddoc.Document, arch *archmodel.Architecture, atoms *atomnet.Store) ([]*ClusteredBlock, error) {
	if doc.Instance != packeddoc.RootInstance {
		return nil, newErr(atomnet.KindSchema, fmt.Sprintf("root instance %q", doc.Instance),
			fmt.Errorf("want %q", packeddoc.RootInstance))
	}

	parser, err := pinexpr.NewParser()
	if err != nil {
		return nil, newErr(atomnet.KindSchema, "pin-expression grammar", err)
	}

	bound := make(map[atomnet.BlockID]bool)
	clusters := make([]*ClusteredBlock, 0, len(doc.Clusters))
	for i := range doc.Clusters {
		cb, err := ingestCluster(i, &doc.Clusters[i], arch, atoms, parser, bound)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, cb)
	}

	for _, id := range atoms.Blocks() {
		switch atoms.BlockKind(id) {
		case atomnet.BlockInpad, atomnet.BlockOutpad:
			// pads sit at the chip boundary and need not be bound to a
			// pb; a pad that is a cluster's own leaf root is bound like
			// any other atom.
			continue
		}
		if !bound[id] {
			return nil, newErr(atomnet.KindConsistency, fmt.Sprintf("atom block %q", atoms.BlockName(id)),
				fmt.Errorf("never bound to a pb"))
		}
	}

	for _, cb := range clusters {
		fillTransitive(cb)
	}

	return clusters, nil
}

// parseInstance splits a "type[slot]" instance string.
func parseInstance(s string) (name string, slot int, err error) {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return "", 0, fmt.Errorf("malformed instance %q", s)
	}
	n, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed slot in instance %q: %w", s, err)
	}
	return s[:open], n, nil
}

func ingestCluster(index int, block *packeddoc.Block, arch *archmodel.Architecture, atoms *atomnet.Store, parser *pinexpr.Parser, bound map[atomnet.BlockID]bool) (*ClusteredBlock, error) {
	typeName, slot, err := parseInstance(block.Instance)
	if err != nil {
		return nil, newErr(atomnet.KindSchema, fmt.Sprintf("cluster %d instance %q", index, block.Instance), err)
	}
	if slot != index {
		return nil, newErr(atomnet.KindShapeMismatch, fmt.Sprintf("cluster %d", index),
			fmt.Errorf("instance slot %d does not match cluster position %d", slot, index))
	}
	typ := arch.TypeByName(typeName)
	if typ == nil {
		return nil, newErr(atomnet.KindUnknownEntity, fmt.Sprintf("cluster %d type %q", index, typeName), nil)
	}

	extCount := 0
	for _, p := range typ.Root.Ports {
		extCount += p.Width
	}
	if typ.Capacity > 0 && extCount != typ.NumPins/typ.Capacity {
		return nil, newErr(atomnet.KindShapeMismatch, fmt.Sprintf("cluster %d type %q external pin count", index, typeName),
			fmt.Errorf("pb_graph_node has %d external pins, type declares %d", extCount, typ.NumPins/typ.Capacity))
	}

	cb := &ClusteredBlock{
		Index:        index,
		InstanceName: block.Name,
		Type:         typ,
		Routes:       make([]PbRoute, typ.RoutingPins),
	}
	for i := range cb.Routes {
		cb.Routes[i] = PbRoute{AtomNetID: atomnet.InvalidNetID, PrevPbPin: InvalidPrevPin}
	}
	cb.ExternalNetIndex = make([]int, extCount)
	for i := range cb.ExternalNetIndex {
		cb.ExternalNetIndex[i] = -1
	}

	root := &Pb{
		Name:      block.Name,
		GraphNode: typ.Root,
		AtomBlock: atomnet.InvalidBlockID,
	}
	if len(typ.Root.Modes) == 0 {
		root.ModeIndex = -1
		atomID, ok := atoms.FindBlockByName(block.Name)
		if !ok {
			return nil, newErr(atomnet.KindUnknownEntity, fmt.Sprintf("atom block %q", block.Name), nil)
		}
		root.AtomBlock = atomID
		bound[atomID] = true
	} else {
		mode := typ.Root.ModeByName(block.Mode)
		if mode == nil {
			return nil, newErr(atomnet.KindSchema, fmt.Sprintf("cluster %d mode %q", index, block.Mode),
				fmt.Errorf("no such mode on type %q", typeName))
		}
		root.ModeIndex = typ.Root.ModeIndex(mode)
		if err := populateChildren(root, mode, block.Children, atoms, parser, cb, bound); err != nil {
			return nil, err
		}
	}
	cb.Root = root

	if err := bindTopLevelPorts(cb, root, block, atoms); err != nil {
		return nil, err
	}

	return cb, nil
}

// populateChildren instantiates parent's children against mode's child
// slots and binds each child's own (internal) port sections.
func populateChildren(parent *Pb, mode *archmodel.Mode, children []packeddoc.Block, atoms *atomnet.Store, parser *pinexpr.Parser, cb *ClusteredBlock, bound map[atomnet.BlockID]bool) error {
	parent.Children = make([][]*Pb, len(mode.Children))
	type slotKey struct{ typeIdx, slot int }
	occupied := make(map[slotKey]bool)

	for ci := range children {
		childBlock := &children[ci]
		ctName, slot, err := parseInstance(childBlock.Instance)
		if err != nil {
			return newErr(atomnet.KindSchema, fmt.Sprintf("instance %q under %q", childBlock.Instance, parent.Name), err)
		}
		ctIdx, ct := -1, (*archmodel.ChildType)(nil)
		for i, c := range mode.Children {
			if c.Name == ctName {
				ctIdx, ct = i, c
				break
			}
		}
		if ct == nil {
			return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("child type %q under %q", ctName, parent.Name), nil)
		}
		if slot < 0 || slot >= ct.Capacity {
			return newErr(atomnet.KindShapeMismatch, fmt.Sprintf("slot %d for child type %q under %q", slot, ctName, parent.Name),
				fmt.Errorf("capacity is %d", ct.Capacity))
		}
		key := slotKey{ctIdx, slot}
		if occupied[key] {
			return newErr(atomnet.KindShapeMismatch, fmt.Sprintf("slot %d for child type %q under %q", slot, ctName, parent.Name),
				fmt.Errorf("duplicate slot occupancy"))
		}
		occupied[key] = true

		if childBlock.Name == tokenOpen && !hasOutputTokens(childBlock) {
			continue
		}

		if parent.Children[ctIdx] == nil {
			parent.Children[ctIdx] = make([]*Pb, ct.Capacity)
		}

		child := &Pb{
			Parent:    parent,
			Name:      childBlock.Name,
			ChildType: ctName,
			Slot:      slot,
			GraphNode: ct.Node,
			AtomBlock: atomnet.InvalidBlockID,
		}
		parent.Children[ctIdx][slot] = child

		if len(ct.Node.Modes) == 0 {
			child.ModeIndex = -1
			if childBlock.Name != tokenOpen {
				atomID, ok := atoms.FindBlockByName(childBlock.Name)
				if !ok {
					return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("atom block %q", childBlock.Name), nil)
				}
				child.AtomBlock = atomID
				bound[atomID] = true
			}
		} else {
			childMode := ct.Node.ModeByName(childBlock.Mode)
			if childMode == nil {
				return newErr(atomnet.KindSchema, fmt.Sprintf("mode %q on %q under %q", childBlock.Mode, ctName, parent.Name),
					fmt.Errorf("no such mode"))
			}
			child.ModeIndex = ct.Node.ModeIndex(childMode)
			if err := populateChildren(child, childMode, childBlock.Children, atoms, parser, cb, bound); err != nil {
				return err
			}
		}

		if err := bindInternalPorts(cb, parent, child, childBlock, atoms, parser); err != nil {
			return err
		}
	}
	return nil
}

func hasOutputTokens(b *packeddoc.Block) bool {
	if b.Outputs == nil {
		return false
	}
	for _, p := range b.Outputs.Ports {
		if len(p.TokenList()) > 0 {
			return true
		}
	}
	return false
}

// childPorts collects the ports of every child-type slot available
// under node's selected mode (one level down).
func childPorts(node *archmodel.PbGraphNode, modeIdx int) []*archmodel.PbGraphPort {
	var ports []*archmodel.PbGraphPort
	if modeIdx >= 0 && modeIdx < len(node.Modes) {
		for _, ct := range node.Modes[modeIdx].Children {
			if ct.Node != nil {
				ports = append(ports, ct.Node.Ports...)
			}
		}
	}
	return ports
}

// inputPool is the resolution pool for a child's input/clock pin
// expression: the parent node's own ports first (the common case — the
// parent distributes one of its own input pins down to a child), then
// every sibling child's ports — the parent node and the table of
// sibling pb_graph_nodes together form the resolution context.
func inputPool(parent *archmodel.PbGraphNode, parentModeIdx int) []*archmodel.PbGraphPort {
	ports := append([]*archmodel.PbGraphPort(nil), parent.Ports...)
	return append(ports, childPorts(parent, parentModeIdx)...)
}

// outputPool is the resolution pool for a node's own output pin
// expression: its children's ports first (the common case — a node's
// output is driven by one of its children one level down), falling
// back to the node's own ports (a literal passthrough).
func outputPool(node *archmodel.PbGraphNode, modeIdx int) []*archmodel.PbGraphPort {
	ports := childPorts(node, modeIdx)
	return append(ports, node.Ports...)
}

func portByName(node *archmodel.PbGraphNode, name string) *archmodel.PbGraphPort {
	for _, p := range node.Ports {
		if p.Name == name {
			return p
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

// bindTopLevelPorts resolves the cluster root's own port sections: every
// token is "open" or the name of an inter-cluster net.
func bindTopLevelPorts(cb *ClusteredBlock, root *Pb, block *packeddoc.Block, atoms *atomnet.Store) error {
	sections := []*packeddoc.PortSection{block.Inputs, block.Outputs, block.Clocks}
	for _, section := range sections {
		if section == nil {
			continue
		}
		for _, port := range section.Ports {
			ownPort := portByName(root.GraphNode, port.Name)
			if ownPort == nil {
				return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("cluster %d port %q", cb.Index, port.Name), nil)
			}
			tokens := port.TokenList()
			if len(tokens) != ownPort.Width {
				return newErr(atomnet.KindShapeMismatch, fmt.Sprintf("cluster %d port %q", cb.Index, port.Name),
					fmt.Errorf("got %d tokens, want %d", len(tokens), ownPort.Width))
			}
			for bit, token := range tokens {
				routeIdx := ownPort.Pins[bit].PinCountInCluster
				if token == tokenOpen {
					continue
				}
				netID, ok := atoms.FindNetByName(token)
				if !ok {
					return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("net %q at cluster %d port %q", token, cb.Index, port.Name), nil)
				}
				cb.Routes[routeIdx] = PbRoute{AtomNetID: netID, PrevPbPin: InvalidPrevPin}
			}
		}
	}
	return nil
}

// bindInternalPorts resolves one internal pb's own port sections. A
// leaf pb's output bits get their atom net directly (they are the true
// signal source, already known from the gate-level netlist); every
// other internal bit gets only a prev_pb_pin_id, left for
// fillTransitive to resolve.
func bindInternalPorts(cb *ClusteredBlock, parent *Pb, child *Pb, block *packeddoc.Block, atoms *atomnet.Store, parser *pinexpr.Parser) error {
	type section struct {
		ports  *packeddoc.PortSection
		output bool
	}
	sections := []section{
		{block.Inputs, false},
		{block.Outputs, true},
		{block.Clocks, false},
	}
	for _, s := range sections {
		if s.ports == nil {
			continue
		}
		for _, port := range s.ports.Ports {
			ownPort := portByName(child.GraphNode, port.Name)
			if ownPort == nil {
				return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("port %q on %q", port.Name, child.Name), nil)
			}
			tokens := port.TokenList()
			if len(tokens) != ownPort.Width {
				return newErr(atomnet.KindShapeMismatch, fmt.Sprintf("port %q on %q", port.Name, child.Name),
					fmt.Errorf("got %d tokens, want %d", len(tokens), ownPort.Width))
			}
			for bit, token := range tokens {
				routeIdx := ownPort.Pins[bit].PinCountInCluster
				if token == tokenOpen {
					continue
				}

				if s.output && child.IsLeaf() {
					// Unreachable for well-formed input: an open leaf's
					// output tokens are themselves "open" and already
					// skipped above by the tokenOpen continue.
					if !child.AtomBlock.Valid() {
						return newErr(atomnet.KindConsistency, fmt.Sprintf("output %q bit %d on open leaf %q", port.Name, bit, child.Name),
							fmt.Errorf("leaf has no bound atom block"))
					}
					atomPin, err := atomPinByPortName(atoms, child.AtomBlock, port.Name, bit)
					if err != nil {
						return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("atom pin for %q bit %d on %q", port.Name, bit, child.Name), err)
					}
					cb.Routes[routeIdx] = PbRoute{AtomNetID: atoms.PinNet(atomPin), PrevPbPin: InvalidPrevPin}
					continue
				}

				expr, err := parser.ParseString(token)
				if err != nil {
					return newErr(atomnet.KindSchema, fmt.Sprintf("pin expression %q on %q", token, child.Name), err)
				}
				var pool []*archmodel.PbGraphPort
				if s.output {
					pool = outputPool(child.GraphNode, child.ModeIndex)
				} else {
					pool = inputPool(parent.GraphNode, parent.ModeIndex)
				}
				pin, resolveErr := pinexpr.ResolvePinAmong(pool, expr)
				if resolveErr != nil {
					return newErr(atomnet.KindUnknownEntity, fmt.Sprintf("pin expression %q on %q", token, child.Name), resolveErr)
				}
				cb.Routes[routeIdx] = PbRoute{AtomNetID: atomnet.InvalidNetID, PrevPbPin: pin.PinCountInCluster}
			}
		}
	}
	return nil
}

// fillTransitive resolves every pb_route entry that still has no net ID
// but does have a prev_pb_pin_id, by following that chain until it
// reaches an entry with a net already assigned. The chain is acyclic
// (it only ever points from a sink toward its driver, up the hierarchy
// and across to a sibling), so this always terminates.
func fillTransitive(cb *ClusteredBlock) {
	for changed := true; changed; {
		changed = false
		for i := range cb.Routes {
			r := &cb.Routes[i]
			if r.AtomNetID.Valid() || r.PrevPbPin == InvalidPrevPin {
				continue
			}
			if src := cb.Routes[r.PrevPbPin]; src.AtomNetID.Valid() {
				r.AtomNetID = src.AtomNetID
				changed = true
			}
		}
	}
}
