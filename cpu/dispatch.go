package cpu

import "github.com/cyclesim/suprasim/kernel"

// Instruction is one not-yet-decoded instruction: an opaque opcode, up
// to two source registers, a logical destination register, an
// immediate, and a register-group multiplier (1 for a scalar op,
// matching spec.md §4.6.1's stripmining formula).
type Instruction struct {
	ID       int64
	Opcode   uint8
	Src1     int
	Src2     int
	Dst      int
	Imm      int64
	GroupMul int
}

// forwardEntry is one live entry in the dispatch stage's forwarding
// buffer: a register whose producing micro-op has completed but whose
// value hasn't yet committed to the register file.
type forwardEntry struct {
	reg  int
	data uint64
}

// DispatchConfig collects the dispatch-stage construction parameters
// from spec.md §4.6.1.
type DispatchConfig struct {
	InstrQueueDepth int
	DecodeWidth     int // micro-ops decoded per cycle
	IssueWidth      int // micro-ops issued per cycle
	ForwardCapacity int
	NumRegisters    int
	ReadPorts       int // register-file read ports available per cycle
}

// DispatchStage implements spec.md §4.6.1: instruction queue, decode
// (register-grouping expansion), hazard-checked issue into the ROB.
// It implements kernel.StageObject, so it can source stage 0 of a
// kernel.Pipeline; Backend instead calls Tick and Next directly. Next
// supplies one issued micro-op per call, drained from the micro-ops
// issue produced this cycle.
type DispatchStage struct {
	name string
	cfg  DispatchConfig
	rob  *ROB

	instrQueue []*Instruction
	readyQueue []*kernel.UopPacket
	active     []*ROBEntry
	forward    []forwardEntry
	issued     []*kernel.UopPacket // this cycle's issued uops, drained by Next

	nextUopID int64

	Dispatched int64
	Stalls     int64
}

// NewDispatchStage constructs a dispatch stage bound to rob.
func NewDispatchStage(name string, cfg DispatchConfig, rob *ROB) *DispatchStage {
	return &DispatchStage{name: name, cfg: cfg, rob: rob}
}

// Name implements kernel.StageObject.
func (d *DispatchStage) Name() string { return d.name }

// Next implements kernel.StageObject: returns the next issued micro-op
// packet for stage 0 to carry into the pipeline, or nil once this
// cycle's issued batch is drained.
func (d *DispatchStage) Next() kernel.Packet {
	if len(d.issued) == 0 {
		return nil
	}
	uop := d.issued[0]
	d.issued = d.issued[1:]
	return uop
}

// Enqueue pushes an instruction into the bounded instruction queue,
// reporting false if it's full.
func (d *DispatchStage) Enqueue(instr *Instruction) bool {
	if len(d.instrQueue) >= d.cfg.InstrQueueDepth {
		return false
	}
	d.instrQueue = append(d.instrQueue, instr)
	return true
}

// RecordForward adds a completed producer's value to the forwarding
// buffer, evicting the oldest entry if it's at capacity. The execute
// stage calls this when a micro-op completes.
func (d *DispatchStage) RecordForward(reg int, data uint64) {
	if d.cfg.ForwardCapacity <= 0 {
		return
	}
	if len(d.forward) >= d.cfg.ForwardCapacity {
		d.forward = d.forward[1:]
	}
	d.forward = append(d.forward, forwardEntry{reg: reg, data: data})
}

func (d *DispatchStage) forwarded(reg int) bool {
	for _, f := range d.forward {
		if f.reg == reg {
			return true
		}
	}
	return false
}

// Tick runs one cycle of decode, hazard-checked issue, and active-list
// maintenance. Called once per backend tick, before the backend drains
// Next.
func (d *DispatchStage) Tick(k *kernel.Kernel) {
	d.decode()
	d.issue(k)
	d.reapActive()
}

// decode drains the instruction queue into the ready queue, expanding
// each instruction by its register-group multiplier (spec.md §4.6.1
// step 1): M micro-ops with physical destinations
// (floor(r/M)*M)+g for g in [0,M), skipping any mapped index out of
// range. An instruction is only dequeued if the full decode-width
// budget for its micro-op count remains this cycle.
func (d *DispatchStage) decode() {
	budget := d.cfg.DecodeWidth
	for budget > 0 && len(d.instrQueue) > 0 {
		instr := d.instrQueue[0]
		m := instr.GroupMul
		if m < 1 {
			m = 1
		}
		if m > budget {
			break
		}
		d.instrQueue = d.instrQueue[1:]
		budget -= m
		base := (instr.Dst / m) * m
		for g := 0; g < m; g++ {
			dst := base + g
			if dst >= d.cfg.NumRegisters {
				continue
			}
			d.nextUopID++
			d.readyQueue = append(d.readyQueue, kernel.NewUopPacket(0, d.nextUopID, instr.ID, instr.Opcode, instr.Src1, instr.Src2, dst, instr.Imm, -1))
		}
	}
}

// issue pops up to IssueWidth ready micro-ops, checking RAW and
// structural hazards per spec.md §4.6.1 step 2. A hazard on any
// attempted micro-op halts issue for the rest of this cycle — it does
// not skip to the next ready micro-op.
func (d *DispatchStage) issue(k *kernel.Kernel) {
	readPortsUsed := 0
	issuedThisCycle := 0
	for issuedThisCycle < d.cfg.IssueWidth && len(d.readyQueue) > 0 {
		uop := d.readyQueue[0]

		if d.rawHazard(uop) {
			d.Stalls++
			break
		}

		required := d.readPortsRequired(uop)
		if readPortsUsed+required > d.cfg.ReadPorts {
			d.Stalls++
			break
		}

		d.readyQueue = d.readyQueue[1:]
		readPortsUsed += required

		entry, ok := d.rob.Dispatch(uop.InstrID, uop.UopID, uop.Dst, false, k.Now())
		if !ok {
			// ROB full: put the micro-op back at the head and stop.
			d.readyQueue = append([]*kernel.UopPacket{uop}, d.readyQueue...)
			d.Stalls++
			break
		}
		uop.ROBIndex = entry.Index
		d.active = append(d.active, entry)
		d.issued = append(d.issued, uop)
		d.Dispatched++
		issuedThisCycle++
	}
}

// rawHazard reports whether uop's sources collide with an incomplete,
// non-forwarded active ROB entry's destination (spec.md §4.6.1 step 2's
// RAW check).
func (d *DispatchStage) rawHazard(uop *kernel.UopPacket) bool {
	for _, src := range [...]int{uop.Src1, uop.Src2} {
		if src <= 0 {
			continue
		}
		if d.forwarded(src) {
			continue
		}
		for _, e := range d.active {
			if e.Dst == src && !e.Complete {
				return true
			}
		}
	}
	return false
}

// readPortsRequired counts the register-file read ports one micro-op
// needs (one per non-zero source register).
func (d *DispatchStage) readPortsRequired(uop *kernel.UopPacket) int {
	n := 0
	if uop.Src1 > 0 {
		n++
	}
	if uop.Src2 > 0 {
		n++
	}
	return n
}

// reapActive drops retired entries from the active list and prunes
// forwarding entries whose producer has now committed.
func (d *DispatchStage) reapActive() {
	live := d.active[:0]
	for _, e := range d.active {
		if e.Retired {
			kept := d.forward[:0]
			for _, f := range d.forward {
				if f.reg != e.Dst {
					kept = append(kept, f)
				}
			}
			d.forward = kept
			continue
		}
		live = append(live, e)
	}
	d.active = live
}
