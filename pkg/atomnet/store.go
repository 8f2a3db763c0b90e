package atomnet

import "fmt"

const errSource = "atomnet"

type blockEntry struct {
	live       bool
	name       string
	kind       BlockKind
	model      *Model
	truthTable *TruthTable
	ports      []PortID
}

type portEntry struct {
	live  bool
	block BlockID
	name  string
	dir   PortDirection
	width int
	pins  []PinID
}

type pinEntry struct {
	live    bool
	port    PortID
	bit     int
	pinType PinType
	net     NetID
}

type netEntry struct {
	live       bool
	name       string
	driver     PinID
	sinks      []PinID
	isConstant bool
	isGlobal   bool
}

// Store is the ID-keyed arena holding every block, port, pin, and net in
// an atom netlist. Cross-references are ID-valued rather than pointers,
// so removal never leaves a pointer dangling: a removed ID's slot is
// tombstoned in place and its slot index is never reused.
type Store struct {
	blocks []blockEntry
	ports  []portEntry
	pins   []pinEntry
	nets   []netEntry

	models      map[string]*Model
	blockByName map[string]BlockID
	netByName   map[string]NetID
}

// NewStore returns an empty atom netlist store.
func NewStore() *Store {
	return &Store{
		models:      make(map[string]*Model),
		blockByName: make(map[string]BlockID),
		netByName:   make(map[string]NetID),
	}
}

func (s *Store) internModel(name string) *Model {
	if m, ok := s.models[name]; ok {
		return m
	}
	m := &Model{Name: name}
	s.models[name] = m
	return m
}

// AddBlock creates a block of the given kind and model, with no ports
// yet (use AddPort to attach them). truthTable may be nil.
func (s *Store) AddBlock(name string, kind BlockKind, modelName string, truthTable *TruthTable) (BlockID, error) {
	if _, live := s.blockByName[name]; live {
		return InvalidBlockID, newErr(errSource, KindDuplicateName, fmt.Sprintf("block %q", name), ErrDuplicateName)
	}
	if truthTable != nil {
		if _, err := truthTable.IsOnSet(); err != nil {
			return InvalidBlockID, newErr(errSource, KindShapeMismatch, fmt.Sprintf("block %q truth table", name), err)
		}
	}
	id := BlockID(len(s.blocks))
	s.blocks = append(s.blocks, blockEntry{
		live:       true,
		name:       name,
		kind:       kind,
		model:      s.internModel(modelName),
		truthTable: truthTable,
	})
	s.blockByName[name] = id
	return id, nil
}

// AddPort creates a port of the given direction and width on block,
// along with its width pins, and enforces the per-kind port shape
// invariants (e.g. an INPAD has no input/clock ports; an OUTPAD has
// exactly one input pin and no output ports).
func (s *Store) AddPort(block BlockID, name string, dir PortDirection, width int) (PortID, error) {
	b, err := s.block(block)
	if err != nil {
		return InvalidPortID, err
	}
	if width < 1 {
		return InvalidPortID, newErr(errSource, KindShapeMismatch, fmt.Sprintf("port %q on block %q", name, b.name), fmt.Errorf("width must be >= 1, got %d", width))
	}
	if err := checkKindShape(b, dir, width); err != nil {
		return InvalidPortID, newErr(errSource, KindShapeMismatch, fmt.Sprintf("port %q on block %q", name, b.name), err)
	}

	portID := PortID(len(s.ports))
	pinType := PinSink
	if dir == PortOutput {
		pinType = PinDriver
	}
	pins := make([]PinID, width)
	for i := 0; i < width; i++ {
		pinID := PinID(len(s.pins))
		s.pins = append(s.pins, pinEntry{
			live:    true,
			port:    portID,
			bit:     i,
			pinType: pinType,
			net:     InvalidNetID,
		})
		pins[i] = pinID
	}
	s.ports = append(s.ports, portEntry{
		live:  true,
		block: block,
		name:  name,
		dir:   dir,
		width: width,
		pins:  pins,
	})
	b.ports = append(b.ports, portID)
	return portID, nil
}

func checkKindShape(b *blockEntry, dir PortDirection, width int) error {
	switch b.kind {
	case BlockInpad:
		if dir != PortOutput {
			return fmt.Errorf("INPAD blocks have no input/clock ports")
		}
	case BlockOutpad:
		if dir != PortInput {
			return fmt.Errorf("OUTPAD blocks have no output/clock ports")
		}
		if width != 1 {
			return fmt.Errorf("OUTPAD input port must have width 1, got %d", width)
		}
		for _, existing := range b.ports {
			_ = existing
			return fmt.Errorf("OUTPAD blocks have exactly one input pin")
		}
	}
	return nil
}

// AddNet creates a net with the given driver (InvalidPinID if none yet)
// and sinks, rebinding every supplied pin's net field to the new net.
func (s *Store) AddNet(name string, driver PinID, sinks []PinID) (NetID, error) {
	if _, live := s.netByName[name]; live {
		return InvalidNetID, newErr(errSource, KindDuplicateName, fmt.Sprintf("net %q", name), ErrDuplicateName)
	}
	if driver.Valid() {
		p, err := s.pin(driver)
		if err != nil {
			return InvalidNetID, newErr(errSource, KindUnknownEntity, fmt.Sprintf("net %q driver", name), err)
		}
		if p.pinType != PinDriver {
			return InvalidNetID, newErr(errSource, KindShapeMismatch, fmt.Sprintf("net %q driver", name), fmt.Errorf("pin %d is not a DRIVER pin", driver))
		}
	}
	sinksCopy := append([]PinID(nil), sinks...)
	for _, sinkID := range sinksCopy {
		p, err := s.pin(sinkID)
		if err != nil {
			return InvalidNetID, newErr(errSource, KindUnknownEntity, fmt.Sprintf("net %q sink", name), err)
		}
		if p.pinType != PinSink {
			return InvalidNetID, newErr(errSource, KindShapeMismatch, fmt.Sprintf("net %q sink", name), fmt.Errorf("pin %d is not a SINK pin", sinkID))
		}
	}

	id := NetID(len(s.nets))
	s.nets = append(s.nets, netEntry{
		live:   true,
		name:   name,
		driver: driver,
		sinks:  sinksCopy,
	})
	s.netByName[name] = id

	if driver.Valid() {
		s.pins[driver].net = id
	}
	for _, sinkID := range sinksCopy {
		s.pins[sinkID].net = id
	}
	return id, nil
}

// RemoveBlock removes block and all of its ports and pins. Every
// removed pin is detached from its net (the net itself, even if now
// driver-less or sink-less, is left in place — see RemoveNet).
func (s *Store) RemoveBlock(id BlockID) error {
	b, err := s.block(id)
	if err != nil {
		return err
	}
	for _, portID := range b.ports {
		port := &s.ports[portID]
		for _, pinID := range port.pins {
			s.detachPin(pinID)
			s.pins[pinID].live = false
		}
		port.live = false
	}
	b.live = false
	delete(s.blockByName, b.name)
	return nil
}

// RemoveNet removes net, invalidating the net reference on every pin
// that belonged to it. The pins themselves, and their owning blocks,
// are untouched.
func (s *Store) RemoveNet(id NetID) error {
	n, err := s.net(id)
	if err != nil {
		return err
	}
	if n.driver.Valid() {
		s.pins[n.driver].net = InvalidNetID
	}
	for _, sinkID := range n.sinks {
		s.pins[sinkID].net = InvalidNetID
	}
	n.live = false
	delete(s.netByName, n.name)
	return nil
}

func (s *Store) detachPin(id PinID) {
	p := &s.pins[id]
	if !p.net.Valid() {
		return
	}
	n := &s.nets[p.net]
	if p.pinType == PinDriver && n.driver == id {
		n.driver = InvalidPinID
	}
	for i, sinkID := range n.sinks {
		if sinkID == id {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			break
		}
	}
	p.net = InvalidNetID
}

// DetachPin removes pin from whatever net it belongs to (driver cleared,
// or removed from the sinks list) without touching the pin's block/port
// or the net's liveness. Used by transform passes that rewire pins onto
// a freshly created merged net.
func (s *Store) DetachPin(id PinID) error {
	if _, err := s.pin(id); err != nil {
		return err
	}
	s.detachPin(id)
	return nil
}

// SetNetConstant marks net as driving a fixed logic value. Set by the
// (out-of-scope) gate-level parser at ingest time for declared constant
// generators, and asserted against by constgen.
func (s *Store) SetNetConstant(id NetID, constant bool) error {
	n, err := s.net(id)
	if err != nil {
		return err
	}
	n.isConstant = constant
	return nil
}

// SetNetGlobal marks net as carrying a global (e.g. clock) signal.
func (s *Store) SetNetGlobal(id NetID, global bool) error {
	n, err := s.net(id)
	if err != nil {
		return err
	}
	n.isGlobal = global
	return nil
}

// --- internal accessors -----------------------------------------------

func (s *Store) block(id BlockID) (*blockEntry, error) {
	if id < 0 || int(id) >= len(s.blocks) || !s.blocks[id].live {
		return nil, newErr(errSource, KindUnknownEntity, "block", fmt.Errorf("id %d: %w", id, ErrUnknownEntity))
	}
	return &s.blocks[id], nil
}

func (s *Store) port(id PortID) (*portEntry, error) {
	if id < 0 || int(id) >= len(s.ports) || !s.ports[id].live {
		return nil, newErr(errSource, KindUnknownEntity, "port", fmt.Errorf("id %d: %w", id, ErrUnknownEntity))
	}
	return &s.ports[id], nil
}

func (s *Store) pin(id PinID) (*pinEntry, error) {
	if id < 0 || int(id) >= len(s.pins) || !s.pins[id].live {
		return nil, newErr(errSource, KindUnknownEntity, "pin", fmt.Errorf("id %d: %w", id, ErrUnknownEntity))
	}
	return &s.pins[id], nil
}

func (s *Store) net(id NetID) (*netEntry, error) {
	if id < 0 || int(id) >= len(s.nets) || !s.nets[id].live {
		return nil, newErr(errSource, KindUnknownEntity, "net", fmt.Errorf("id %d: %w", id, ErrUnknownEntity))
	}
	return &s.nets[id], nil
}

// --- public queries -----------------------------------------------------

func (s *Store) FindBlockByName(name string) (BlockID, bool) {
	id, ok := s.blockByName[name]
	return id, ok
}

func (s *Store) FindNetByName(name string) (NetID, bool) {
	id, ok := s.netByName[name]
	return id, ok
}

func (s *Store) BlockName(id BlockID) string {
	if b, err := s.block(id); err == nil {
		return b.name
	}
	return ""
}

func (s *Store) BlockKind(id BlockID) BlockKind {
	if b, err := s.block(id); err == nil {
		return b.kind
	}
	return -1
}

func (s *Store) BlockModel(id BlockID) *Model {
	if b, err := s.block(id); err == nil {
		return b.model
	}
	return nil
}

func (s *Store) BlockTruthTable(id BlockID) *TruthTable {
	if b, err := s.block(id); err == nil {
		return b.truthTable
	}
	return nil
}

func (s *Store) BlockPorts(id BlockID) []PortID {
	if b, err := s.block(id); err == nil {
		return append([]PortID(nil), b.ports...)
	}
	return nil
}

func (s *Store) PortName(id PortID) string {
	if p, err := s.port(id); err == nil {
		return p.name
	}
	return ""
}

func (s *Store) PortDirection(id PortID) PortDirection {
	if p, err := s.port(id); err == nil {
		return p.dir
	}
	return -1
}

func (s *Store) PortWidth(id PortID) int {
	if p, err := s.port(id); err == nil {
		return p.width
	}
	return 0
}

func (s *Store) PortBlock(id PortID) BlockID {
	if p, err := s.port(id); err == nil {
		return p.block
	}
	return InvalidBlockID
}

func (s *Store) PortPins(id PortID) []PinID {
	if p, err := s.port(id); err == nil {
		return append([]PinID(nil), p.pins...)
	}
	return nil
}

func (s *Store) PinPort(id PinID) PortID {
	if p, err := s.pin(id); err == nil {
		return p.port
	}
	return InvalidPortID
}

func (s *Store) PinBit(id PinID) int {
	if p, err := s.pin(id); err == nil {
		return p.bit
	}
	return -1
}

func (s *Store) PinType(id PinID) PinType {
	if p, err := s.pin(id); err == nil {
		return p.pinType
	}
	return -1
}

func (s *Store) PinNet(id PinID) NetID {
	if p, err := s.pin(id); err == nil {
		return p.net
	}
	return InvalidNetID
}

func (s *Store) PinIsConstant(id PinID) bool {
	return s.NetIsConstant(s.PinNet(id))
}

func (s *Store) NetName(id NetID) string {
	if n, err := s.net(id); err == nil {
		return n.name
	}
	return ""
}

func (s *Store) NetDriver(id NetID) PinID {
	if n, err := s.net(id); err == nil {
		return n.driver
	}
	return InvalidPinID
}

func (s *Store) NetSinks(id NetID) []PinID {
	if n, err := s.net(id); err == nil {
		return append([]PinID(nil), n.sinks...)
	}
	return nil
}

func (s *Store) NetIsConstant(id NetID) bool {
	if n, err := s.net(id); err == nil {
		return n.isConstant
	}
	return false
}

func (s *Store) NetIsGlobal(id NetID) bool {
	if n, err := s.net(id); err == nil {
		return n.isGlobal
	}
	return false
}

// Blocks returns the IDs of every live block, in creation order.
func (s *Store) Blocks() []BlockID {
	out := make([]BlockID, 0, len(s.blocks))
	for i := range s.blocks {
		if s.blocks[i].live {
			out = append(out, BlockID(i))
		}
	}
	return out
}

// Nets returns the IDs of every live net, in creation order.
func (s *Store) Nets() []NetID {
	out := make([]NetID, 0, len(s.nets))
	for i := range s.nets {
		if s.nets[i].live {
			out = append(out, NetID(i))
		}
	}
	return out
}

// Pins returns the IDs of every live pin, in creation order.
func (s *Store) Pins() []PinID {
	out := make([]PinID, 0, len(s.pins))
	for i := range s.pins {
		if s.pins[i].live {
			out = append(out, PinID(i))
		}
	}
	return out
}
