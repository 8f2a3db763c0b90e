// Package clusternet extracts the inter-cluster net table from a set of
// ingested clusters: dedupes external nets by name, records each
// cluster pin's compact net index, and checks global/non-global signal
// consistency across the whole design.
package clusternet

import (
	"fmt"

	"github.com/fpgacore/atomnet/pkg/atomnet"
	"github.com/fpgacore/atomnet/pkg/packednet"
)

// ExternalNet is one deduplicated inter-cluster net: its atom identity,
// driver pin, and sink pins.
type ExternalNet struct {
	Name   string
	NetID  atomnet.NetID
	Driver atomnet.PinID
	Sinks  []atomnet.PinID
}

// Result is the whole extracted external-net table.
type Result struct {
	Nets []ExternalNet
}

// Extract walks every cluster's external pins in canonical
// (inputs-then-outputs-then-clocks, pb-port) order, interning each
// referenced atom net into a compact table and writing the resulting
// index back into every cluster's ExternalNetIndex. clockNames is the
// external circuit's declared clock-net list ("circuit_clocks"), each
// of which must resolve to a global net.
func Extract(clusters []*packednet.ClusteredBlock, atoms *atomnet.Store, clockNames []string) (*Result, error) {
	index := make(map[atomnet.NetID]int)
	occurrences := make(map[atomnet.NetID]int)
	var nets []ExternalNet

	for _, cb := range clusters {
		pinIdx := 0
		for _, port := range cb.Type.Root.Ports {
			for _, pin := range port.Pins {
				route := cb.Routes[pin.PinCountInCluster]
				if !route.AtomNetID.Valid() {
					cb.ExternalNetIndex[pinIdx] = -1
					pinIdx++
					continue
				}
				netID := route.AtomNetID
				idx, ok := index[netID]
				if !ok {
					idx = len(nets)
					index[netID] = idx
					nets = append(nets, ExternalNet{
						Name:   atoms.NetName(netID),
						NetID:  netID,
						Driver: atoms.NetDriver(netID),
						Sinks:  atoms.NetSinks(netID),
					})
				}
				cb.ExternalNetIndex[pinIdx] = idx
				occurrences[netID]++
				pinIdx++
			}
		}
	}

	for _, en := range nets {
		if !en.Driver.Valid() {
			return nil, newErr(atomnet.KindConsistency, fmt.Sprintf("external net %q", en.Name), fmt.Errorf("no driver"))
		}
		want := 1 + len(en.Sinks)
		if occurrences[en.NetID] != want {
			return nil, newErr(atomnet.KindConsistency, fmt.Sprintf("external net %q", en.Name),
				fmt.Errorf("cluster-pin occurrence count %d does not match driver+sinks %d", occurrences[en.NetID], want))
		}
	}

	globals, err := checkGlobalConsistency(clusters, atoms)
	if err != nil {
		return nil, err
	}
	for netID, global := range globals {
		if err := atoms.SetNetGlobal(netID, global); err != nil {
			return nil, newErr(atomnet.KindConsistency, fmt.Sprintf("net %q", atoms.NetName(netID)), err)
		}
	}
	for _, name := range clockNames {
		netID, ok := atoms.FindNetByName(name)
		if !ok {
			return nil, newErr(atomnet.KindUnknownEntity, fmt.Sprintf("circuit clock %q", name), nil)
		}
		if !atoms.NetIsGlobal(netID) {
			return nil, newErr(atomnet.KindConsistency, fmt.Sprintf("circuit clock %q", name),
				fmt.Errorf("net is not marked global"))
		}
	}

	return &Result{Nets: nets}, nil
}

// checkGlobalConsistency scans every pb_route entry of every cluster
// (not just external boundary pins — an internal clock pin deep inside
// a pb still carries the architectural is_global_pin flag that must
// agree with every other pin on the same net) and asserts all pins
// carrying the same atom net agree on globalness.
func checkGlobalConsistency(clusters []*packednet.ClusteredBlock, atoms *atomnet.Store) (map[atomnet.NetID]bool, error) {
	seen := make(map[atomnet.NetID]bool)
	result := make(map[atomnet.NetID]bool)
	for _, cb := range clusters {
		for count, route := range cb.Routes {
			if !route.AtomNetID.Valid() {
				continue
			}
			pin := cb.Type.PinByCount(count)
			if pin == nil {
				continue
			}
			if have, ok := seen[route.AtomNetID]; ok {
				if have != pin.IsGlobalPin {
					return nil, newErr(atomnet.KindConsistency, fmt.Sprintf("net %q", atoms.NetName(route.AtomNetID)),
						fmt.Errorf("mixed global and non-global pins"))
				}
			} else {
				seen[route.AtomNetID] = pin.IsGlobalPin
				result[route.AtomNetID] = pin.IsGlobalPin
			}
		}
	}
	return result, nil
}
