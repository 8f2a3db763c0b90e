package archmodel

import "sync"

// pinIndex lazily builds, once per Type, the full PinCountInCluster ->
// PbGraphPin map across every mode and every descendant: the map is
// architecture data, computed once and shared by every cluster
// instance of this type.
type pinIndex struct {
	once sync.Once
	m    map[int]*PbGraphPin
}

var pinIndices sync.Map // *Type -> *pinIndex

// PinByCount returns the PbGraphPin with the given PinCountInCluster
// value anywhere under t's Root, across every mode (not just the mode
// a particular cluster instance selected). Returns nil if no pin has
// that count.
func (t *Type) PinByCount(count int) *PbGraphPin {
	v, _ := pinIndices.LoadOrStore(t, &pinIndex{})
	idx := v.(*pinIndex)
	idx.once.Do(func() {
		idx.m = make(map[int]*PbGraphPin)
		var walk func(n *PbGraphNode)
		walk = func(n *PbGraphNode) {
			for _, port := range n.Ports {
				for _, pin := range port.Pins {
					idx.m[pin.PinCountInCluster] = pin
				}
			}
			for _, mode := range n.Modes {
				for _, ct := range mode.Children {
					if ct.Node != nil {
						walk(ct.Node)
					}
				}
			}
		}
		walk(t.Root)
	})
	return idx.m[count]
}
