// Package blif writes an atom netlist as canonical gate-level text: a
// model declaration, primary I/O lists, latch/LUT/subckt bodies, and a
// black-box model declaration for every non-primitive model used.
package blif

import (
	"fmt"
	"io"
	"strings"

	"github.com/fpgacore/atomnet/pkg/atomnet"
)

// outpadPrefix is stripped from an OUTPAD block's name to recover its
// primary-output port name for .outputs.
const outpadPrefix = "out:"

// Emit writes atoms to w as a single canonical gate-level model named
// modelName.
func Emit(w io.Writer, atoms *atomnet.Store, modelName string) error {
	e := &emitter{w: w, atoms: atoms, blackBoxOf: make(map[string]atomnet.BlockID)}
	return e.run(modelName)
}

type emitter struct {
	w     io.Writer
	atoms *atomnet.Store
	err   error

	unconn int

	blackBoxOrder []string
	blackBoxOf    map[string]atomnet.BlockID
}

func (e *emitter) run(modelName string) error {
	e.printf(".model %s\n", modelName)

	var inpads, outpads, latches, names, subckts []atomnet.BlockID
	for _, b := range e.atoms.Blocks() {
		switch e.atoms.BlockKind(b) {
		case atomnet.BlockInpad:
			inpads = append(inpads, b)
		case atomnet.BlockOutpad:
			outpads = append(outpads, b)
		default:
			switch e.atoms.BlockModel(b).Name {
			case atomnet.ModelLatch:
				latches = append(latches, b)
			case atomnet.ModelNames:
				names = append(names, b)
			default:
				subckts = append(subckts, b)
			}
		}
	}

	inputNames := make([]string, len(inpads))
	for i, b := range inpads {
		inputNames[i] = e.soleNetName(b, atomnet.PortOutput)
	}
	e.writeDirective(".inputs", inputNames)

	outputPortNames := make([]string, len(outpads))
	for i, b := range outpads {
		outputPortNames[i] = stripOutpadPrefix(e.atoms.BlockName(b))
	}
	e.writeDirective(".outputs", outputPortNames)

	for i, b := range outpads {
		e.writeIdentityBufferIfNeeded(b, outputPortNames[i])
	}
	for _, b := range latches {
		e.writeLatch(b)
	}
	for _, b := range names {
		e.writeNames(b)
	}
	for _, b := range subckts {
		e.writeSubckt(b)
	}

	e.printf(".end\n")
	e.writeBlackBoxModels()

	return e.err
}

func (e *emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *emitter) writeDirective(tag string, items []string) {
	if len(items) == 0 {
		e.printf("%s\n", tag)
		return
	}
	e.printf("%s %s\n", tag, strings.Join(items, " "))
}

// soleNetName returns the net name carried by the single pin of the
// single port of the given direction on block (an INPAD's output, or
// an OUTPAD's input).
func (e *emitter) soleNetName(block atomnet.BlockID, dir atomnet.PortDirection) string {
	for _, p := range e.atoms.BlockPorts(block) {
		if e.atoms.PortDirection(p) != dir {
			continue
		}
		pins := e.atoms.PortPins(p)
		if len(pins) == 0 {
			return ""
		}
		return e.atoms.NetName(e.atoms.PinNet(pins[0]))
	}
	return ""
}

func stripOutpadPrefix(name string) string {
	return strings.TrimPrefix(name, outpadPrefix)
}

// writeIdentityBufferIfNeeded inserts an artificial identity-function
// LUT between the net actually driving an OUTPAD and the output port's
// declared name, when the two differ (the textual format requires an
// .outputs name to also appear as a driven net).
func (e *emitter) writeIdentityBufferIfNeeded(block atomnet.BlockID, outputName string) {
	driving := e.soleNetName(block, atomnet.PortInput)
	if driving == "" || driving == outputName {
		return
	}
	e.printf(".names %s %s\n1 1\n", driving, outputName)
}

func (e *emitter) writeLatch(block atomnet.BlockID) {
	var d, q, clk string
	for _, p := range e.atoms.BlockPorts(block) {
		pins := e.atoms.PortPins(p)
		if len(pins) == 0 {
			continue
		}
		net := e.atoms.NetName(e.atoms.PinNet(pins[0]))
		switch e.atoms.PortDirection(p) {
		case atomnet.PortInput:
			d = net
		case atomnet.PortOutput:
			q = net
		case atomnet.PortClock:
			clk = net
		}
	}
	e.printf(".latch %s %s re %s %d\n", d, q, clk, latchInitialValue(e.atoms.BlockTruthTable(block)))
}

func latchInitialValue(tt *atomnet.TruthTable) int {
	if tt == nil || len(tt.Rows) == 0 || len(tt.Rows[0]) == 0 {
		return 3 // UNKNOWN
	}
	switch tt.Rows[0][0] {
	case atomnet.LogicFalse:
		return 0
	case atomnet.LogicTrue:
		return 1
	case atomnet.LogicDontCare:
		return 2
	default:
		return 3
	}
}

func (e *emitter) writeNames(block atomnet.BlockID) {
	var inputs []string
	var output string
	for _, p := range e.atoms.BlockPorts(block) {
		switch e.atoms.PortDirection(p) {
		case atomnet.PortInput:
			for _, pin := range e.atoms.PortPins(p) {
				inputs = append(inputs, e.atoms.NetName(e.atoms.PinNet(pin)))
			}
		case atomnet.PortOutput:
			pins := e.atoms.PortPins(p)
			if len(pins) > 0 {
				output = e.atoms.NetName(e.atoms.PinNet(pins[0]))
			}
		}
	}

	header := append(append([]string(nil), inputs...), output)
	e.printf(".names %s\n", strings.Join(header, " "))

	tt := e.atoms.BlockTruthTable(block)
	if tt == nil {
		return
	}
	for _, row := range tt.Rows {
		symbols := make([]string, len(row))
		for i, v := range row {
			symbols[i] = logicSymbol(v)
		}
		e.printf("%s\n", strings.Join(symbols, " "))
	}
}

func logicSymbol(v atomnet.LogicValue) string {
	switch v {
	case atomnet.LogicTrue:
		return "1"
	case atomnet.LogicFalse:
		return "0"
	default:
		return "-"
	}
}

func (e *emitter) writeSubckt(block atomnet.BlockID) {
	model := e.atoms.BlockModel(block)
	if _, seen := e.blackBoxOf[model.Name]; !seen {
		e.blackBoxOf[model.Name] = block
		e.blackBoxOrder = append(e.blackBoxOrder, model.Name)
	}

	pinAssignments := []string{model.Name}
	for _, p := range e.atoms.BlockPorts(block) {
		name := e.atoms.PortName(p)
		width := e.atoms.PortWidth(p)
		for bit, pin := range e.atoms.PortPins(p) {
			pinAssignments = append(pinAssignments, fmt.Sprintf("%s=%s", portPinLabel(name, width, bit), e.netNameOrUnconn(pin)))
		}
	}
	e.printf(".subckt %s\n", strings.Join(pinAssignments, " "))
}

func (e *emitter) netNameOrUnconn(pin atomnet.PinID) string {
	net := e.atoms.PinNet(pin)
	if net.Valid() {
		return e.atoms.NetName(net)
	}
	name := fmt.Sprintf("unconn%d", e.unconn)
	e.unconn++
	return name
}

func portPinLabel(name string, width, bit int) string {
	if width == 1 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, bit)
}

// writeBlackBoxModels declares every distinct subckt model encountered,
// using the first instance seen of that model as the port-signature
// template (every instance of a model is assumed to share one port
// layout, since they all reference the same library primitive).
func (e *emitter) writeBlackBoxModels() {
	for _, name := range e.blackBoxOrder {
		block := e.blackBoxOf[name]
		var inputs, outputs []string
		for _, p := range e.atoms.BlockPorts(block) {
			width := e.atoms.PortWidth(p)
			portName := e.atoms.PortName(p)
			var labels []string
			for bit := range e.atoms.PortPins(p) {
				labels = append(labels, portPinLabel(portName, width, bit))
			}
			switch e.atoms.PortDirection(p) {
			case atomnet.PortOutput:
				outputs = append(outputs, labels...)
			default:
				inputs = append(inputs, labels...)
			}
		}
		e.printf(".model %s\n", name)
		e.writeDirective(".inputs", inputs)
		e.writeDirective(".outputs", outputs)
		e.printf(".blackbox\n.end\n")
	}
}
