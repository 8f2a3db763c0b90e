// Package packeddoc gives the packed-netlist document schema a concrete
// Go shape using encoding/xml struct tags, the same declarative
// struct-tag idiom used elsewhere in this module for grammar and markup
// formats. This package only captures the tree's shape; packednet.Ingest
// performs all cross-referencing and validation.
package packeddoc

import (
	"encoding/xml"
	"io"
	"strings"
)

// RootInstance is the distinguished instance literal required on the
// document's root element.
const RootInstance = "FPGA_packed_netlist[0]"

// Document is the root <block> element: its instance must equal
// RootInstance, and its inputs/outputs/clocks list the top-level I/O
// net names as space-separated text (informational only; packednet
// does not read these lists).
type Document struct {
	XMLName  xml.Name `xml:"block"`
	Name     string   `xml:"name,attr"`
	Instance string   `xml:"instance,attr"`
	Inputs   string   `xml:"inputs"`
	Outputs  string   `xml:"outputs"`
	Clocks   string   `xml:"clocks"`
	Clusters []Block  `xml:"block"`
}

// TopLevelInputs, TopLevelOutputs, TopLevelClocks split the root's
// space-separated net-name lists.
func (d *Document) TopLevelInputs() []string  { return strings.Fields(d.Inputs) }
func (d *Document) TopLevelOutputs() []string { return strings.Fields(d.Outputs) }
func (d *Document) TopLevelClocks() []string  { return strings.Fields(d.Clocks) }

// Block is one nested cluster/pb instance: a top-level cluster when it
// is a direct child of Document, or a pb instance when nested inside
// another Block.
type Block struct {
	Name     string       `xml:"name,attr"`
	Instance string       `xml:"instance,attr"`
	Mode     string       `xml:"mode,attr"`
	Inputs   *PortSection `xml:"inputs"`
	Outputs  *PortSection `xml:"outputs"`
	Clocks   *PortSection `xml:"clocks"`
	Children []Block      `xml:"block"`
}

// PortSection lists one <port> entry per port declared at this pb
// level, in architecture port order.
type PortSection struct {
	Ports []Port `xml:"port"`
}

// Port is one port's space-separated per-bit token list: each token is
// "open", a net name (top-level cluster ports), or a
// "pin[idx]->interconnect" expression (internal ports).
type Port struct {
	Name   string `xml:"name,attr"`
	Tokens string `xml:",chardata"`
}

// TokenList splits Port's raw text into its per-bit tokens.
func (p *Port) TokenList() []string { return strings.Fields(p.Tokens) }

// Parse reads a Document from r. Parsing the XML shape itself is a thin
// stdlib wrapper; packednet.Ingest does the actual architecture-aware
// work.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
