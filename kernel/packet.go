package kernel

// Packet is the common interface every value carried through a Port
// implements: a tagged sum (discriminated union) over the closed set of
// concrete payload variants this build uses. Consumers type-switch on
// the concrete type, and each variant supplies its own Clone (spec.md
// §9's translation of the source's polymorphic-packet/dynamic-cast
// design). The compiler does not check type switches for exhaustiveness.
type Packet interface {
	// Origin returns the simulated time the packet was created.
	Origin() int64
	// Valid reports whether the packet carries meaningful data.
	Valid() bool
	// Clone returns an independent copy. Broadcast connections clone a
	// packet once per destination so each holder owns its own copy.
	Clone() Packet
}

// packetBase carries the attributes common to every packet variant.
type packetBase struct {
	origin int64
	valid  bool
}

// Origin implements Packet.
func (p packetBase) Origin() int64 { return p.origin }

// Valid implements Packet.
func (p packetBase) Valid() bool { return p.valid }

// ScalarPacket carries a single scalar integer payload — the simplest
// variant, used for credit counts, scoreboard masks, write counts, and
// register read data.
type ScalarPacket struct {
	packetBase
	Value int64
}

// NewScalarPacket builds a valid ScalarPacket.
func NewScalarPacket(origin, value int64) *ScalarPacket {
	return &ScalarPacket{packetBase: packetBase{origin: origin, valid: true}, Value: value}
}

// Clone implements Packet; ScalarPacket carries no heap buffers, so a
// value copy suffices.
func (p *ScalarPacket) Clone() Packet {
	c := *p
	return &c
}

// BoolPacket carries a single boolean payload.
type BoolPacket struct {
	packetBase
	Value bool
}

// NewBoolPacket builds a valid BoolPacket.
func NewBoolPacket(origin int64, value bool) *BoolPacket {
	return &BoolPacket{packetBase: packetBase{origin: origin, valid: true}, Value: value}
}

// Clone implements Packet.
func (p *BoolPacket) Clone() Packet {
	c := *p
	return &c
}

// RegReadPacket carries a register-read request: the address only.
type RegReadPacket struct {
	packetBase
	Index int
}

// NewRegReadPacket builds a valid RegReadPacket.
func NewRegReadPacket(origin int64, index int) *RegReadPacket {
	return &RegReadPacket{packetBase: packetBase{origin: origin, valid: true}, Index: index}
}

// Clone implements Packet.
func (p *RegReadPacket) Clone() Packet {
	c := *p
	return &c
}

// RegWritePacket carries a register-write descriptor: destination index,
// data, and a byte-enable mask. Masked writes are speculative writes
// that must not clear the destination register's scoreboard bit.
type RegWritePacket struct {
	packetBase
	Index  int
	Data   uint64
	Mask   uint64
	Masked bool
}

// NewRegWritePacket builds a valid, unmasked RegWritePacket.
func NewRegWritePacket(origin int64, index int, data uint64) *RegWritePacket {
	return &RegWritePacket{packetBase: packetBase{origin: origin, valid: true}, Index: index, Data: data, Mask: ^uint64(0)}
}

// Clone implements Packet.
func (p *RegWritePacket) Clone() Packet {
	c := *p
	return &c
}

// UopPacket carries one micro-op moving through the dispatch/execute/
// retire pipeline. Opcode is an opaque numeric tag, per spec.md §1's
// explicit scope boundary treating the concrete operation tables as an
// external collaborator — this package never interprets it.
type UopPacket struct {
	packetBase
	UopID           int64
	InstrID         int64
	Opcode          uint8
	Src1, Src2, Dst int
	Imm             int64
	ROBIndex        int
}

// NewUopPacket builds a valid UopPacket.
func NewUopPacket(origin, uopID, instrID int64, opcode uint8, src1, src2, dst int, imm int64, robIndex int) *UopPacket {
	return &UopPacket{
		packetBase: packetBase{origin: origin, valid: true},
		UopID:      uopID,
		InstrID:    instrID,
		Opcode:     opcode,
		Src1:       src1,
		Src2:       src2,
		Dst:        dst,
		Imm:        imm,
		ROBIndex:   robIndex,
	}
}

// Clone implements Packet.
func (p *UopPacket) Clone() Packet {
	c := *p
	return &c
}

// ROBPacket carries one completed reorder-buffer entry's write-back
// result: destination register, data, a byte-enable vector, and
// trap/completion state.
type ROBPacket struct {
	packetBase
	ROBIndex    int
	Dst         int
	VectorDst   bool
	Data        uint64
	ByteEnable  uint8
	Trap        bool
}

// NewROBPacket builds a valid ROBPacket.
func NewROBPacket(origin int64, robIndex, dst int, vectorDst bool, data uint64, byteEnable uint8, trap bool) *ROBPacket {
	return &ROBPacket{
		packetBase: packetBase{origin: origin, valid: true},
		ROBIndex:   robIndex,
		Dst:        dst,
		VectorDst:  vectorDst,
		Data:       data,
		ByteEnable: byteEnable,
		Trap:       trap,
	}
}

// Clone implements Packet.
func (p *ROBPacket) Clone() Packet {
	c := *p
	return &c
}

// VectorPacket carries a vector result: a slice of per-element values at
// a given element width. Unlike the scalar variants, it owns a heap
// buffer, so Clone performs a genuine deep copy rather than a value
// copy, per spec.md §9's design note on cloning sum-cases with buffers.
type VectorPacket struct {
	packetBase
	ElementWidth int
	Elements     []uint64
}

// NewVectorPacket builds a valid VectorPacket, copying elements.
func NewVectorPacket(origin int64, elementWidth int, elements []uint64) *VectorPacket {
	cp := make([]uint64, len(elements))
	copy(cp, elements)
	return &VectorPacket{packetBase: packetBase{origin: origin, valid: true}, ElementWidth: elementWidth, Elements: cp}
}

// Clone implements Packet with a deep copy of the element buffer.
func (p *VectorPacket) Clone() Packet {
	c := *p
	c.Elements = make([]uint64, len(p.Elements))
	copy(c.Elements, p.Elements)
	return &c
}
