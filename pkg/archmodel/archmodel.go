// Package archmodel holds the read-only view of an already-parsed FPGA
// architecture that the rest of this module consumes: cluster type
// descriptors, their pb hierarchy, and the pin graph used downstream to
// resolve cluster-internal routing. Building an Architecture from an
// architecture-XML file is explicitly out of this module's scope —
// callers construct one (typically via a generated or hand-written
// loader) and hand it to packednet.Ingest.
package archmodel

// Architecture is the whole device model: every cluster type the
// packed-netlist document can reference.
type Architecture struct {
	Types []*Type
}

// TypeByName returns the cluster type descriptor with the given name,
// or nil if none exists.
func (a *Architecture) TypeByName(name string) *Type {
	for _, t := range a.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Type is a cluster (CLB) type descriptor: its instance capacity per
// tile, its external pin count, and the modes available at its root pb.
type Type struct {
	Name     string
	Capacity int // instances of this type sharing one tile
	NumPins  int // total external pins across all Capacity instances
	Modes    []*Mode
	// Root is the architectural pb_graph_node for a single instance's
	// top-level pb (mode-independent: its Ports are the type's external
	// ports, in the canonical inputs-then-outputs-then-clocks order used
	// by clusternet.Extract).
	Root *PbGraphNode

	// RoutingPins is the size of the per-instance pb_route table: one
	// entry per PinCountInCluster value reachable anywhere under Root,
	// across every mode. Supplied by the architecture loader, same as
	// NumPins.
	RoutingPins int
}

// ModeByName returns node's mode with the given name, or nil. A node
// with an empty mode name and exactly one mode matches that mode.
func (n *PbGraphNode) ModeByName(name string) *Mode {
	if name == "" && len(n.Modes) == 1 {
		return n.Modes[0]
	}
	for _, m := range n.Modes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ModeIndex returns the index of mode within node.Modes, or -1.
func (n *PbGraphNode) ModeIndex(mode *Mode) int {
	for i, m := range n.Modes {
		if m == mode {
			return i
		}
	}
	return -1
}

// Mode is one mutually exclusive child layout for a pb type. ModeIndex
// identifies it within its owning Type/PbGraphNode.
type Mode struct {
	Name     string
	Children []*ChildType // child pb-type slots available under this mode
}

// ChildType is one named, sized slot of child pb instances under a mode
// (e.g. "ble" x 10).
type ChildType struct {
	Name     string
	Capacity int
	Node     *PbGraphNode // pb_graph_node shared by every instance of this slot
}

// PbGraphNode is an architectural node in the pin-level graph of a pb
// type: either a Type's Root, or a ChildType's Node, one level further
// down the hierarchy.
type PbGraphNode struct {
	Parent   *PbGraphNode
	TypeName string // the pb-type name this node represents
	Modes    []*Mode
	Ports    []*PbGraphPort
}

// PbGraphPort is one port (input/output/clock) on a PbGraphNode.
type PbGraphPort struct {
	Owner     *PbGraphNode
	Name      string
	Direction PortDirection
	Width     int
	Pins      []*PbGraphPin
}

// PortDirection mirrors atomnet.PortDirection without importing it,
// keeping archmodel dependency-free (it is consumed by, not built from,
// the atom netlist).
type PortDirection int

const (
	PortInput PortDirection = iota
	PortOutput
	PortClock
)

// PbGraphPin is one bit of a PbGraphPort: the unit pin expressions
// resolve down to.
type PbGraphPin struct {
	Port *PbGraphPort
	Bit  int

	// PinCountInCluster is the flat index assigned by the architecture
	// loader (out of scope here) identifying this pin's pb_route slot
	// within one cluster instance.
	PinCountInCluster int

	// IsGlobalPin marks a pin wired to a global architectural routing
	// resource (e.g. the dedicated clock network). clusternet.Extract
	// checks that every pin carrying the same net agrees on this flag
	// and sets the net's global flag (atomnet.Store.SetNetGlobal) from it.
	IsGlobalPin bool

	// Edges are this pin's outgoing architectural interconnects, each
	// named and terminating at one destination pin one level up (an
	// input/clock context) or one level down (an output context).
	Edges []*Edge
}

// Edge is one named interconnect between two PbGraphPins.
type Edge struct {
	InterconnectName string
	To               *PbGraphPin
}
