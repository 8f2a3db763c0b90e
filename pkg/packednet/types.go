package packednet

import (
	"github.com/fpgacore/atomnet/pkg/archmodel"
	"github.com/fpgacore/atomnet/pkg/atomnet"
)

// ClusteredBlock is one instantiated cluster (CLB): its architectural
// type, its pb tree, and the per-cluster pb_route table flat-indexed by
// pin_count_in_cluster.
type ClusteredBlock struct {
	Index        int // cluster_index (slot number in the packed-netlist document)
	InstanceName string
	Type         *archmodel.Type
	Root         *Pb
	Routes       []PbRoute

	// ExternalNetIndex maps each external pin (flat index, in
	// inputs-then-outputs-then-clocks pb-port order) to the compact
	// external-net-table index clusternet.Extract assigns it. -1 until
	// Extract runs.
	ExternalNetIndex []int
}

// InvalidPrevPin is the pb_route sentinel for "no upstream pin" (a
// boundary entry: either a true signal source, or an unused/open wire).
const InvalidPrevPin = -1

// PbRoute is one flat-indexed routing slot: the atom net it carries (if
// any) and the upstream pin that drives it (if internal).
type PbRoute struct {
	AtomNetID atomnet.NetID
	PrevPbPin int // pin_count_in_cluster of the driving pin, or InvalidPrevPin
}

// Pb is one instantiated physical-block node, mirroring the
// architecture's pb_graph_node hierarchy.
type Pb struct {
	Parent    *Pb
	Name      string // instance name, or "open"
	ModeIndex int     // selected mode, -1 if the pb type has no modes (leaf)
	ChildType string  // the pb-type slot name this Pb occupies under its parent
	Slot      int     // instance slot within ChildType
	GraphNode *archmodel.PbGraphNode
	Children  [][]*Pb // indexed by child-type slot (Mode.Children index), then instance

	// AtomBlock is the bound atom block for a leaf pb, or
	// atomnet.InvalidBlockID if this pb is non-leaf or an unconnected
	// "open" leaf.
	AtomBlock atomnet.BlockID
}

// IsLeaf reports whether node has no modes (a primitive pb).
func (p *Pb) IsLeaf() bool {
	return p.GraphNode == nil || len(p.GraphNode.Modes) == 0
}
