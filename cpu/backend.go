package cpu

import "github.com/cyclesim/suprasim/kernel"

// Backend composes the out-of-order execution backend from spec.md
// §4.6: a scoreboarded register file, a ROB, and the dispatch/execute/
// retire stages wired to drive writes back into the register file.
//
// The generic kernel.Pipeline abstraction isn't used here directly: its
// Stage model holds exactly one occupant with a fixed per-stage
// latency, but the execute stage must hold many micro-ops
// simultaneously, each with its own opcode-dependent latency, and the
// retire stage commits a variable-size batch from the ROB's head each
// cycle rather than advancing one pipeline slot. Backend instead drives
// the three stages directly from one self-rescheduling tick, each stage
// still built from the same kernel.Port/kernel.Packet primitives
// everything else in this module uses (see DESIGN.md).
type Backend struct {
	kernel.Ticking
	name   string
	kernel *kernel.Kernel
	event  *kernel.Event

	RegisterFile *RegisterFile
	ROB          *ROB
	Dispatch     *DispatchStage
	Execute      *ExecuteStage
	Retire       *RetireStage
}

// BackendConfig collects the construction parameters spanning all three
// stages plus the register file they share.
type BackendConfig struct {
	ROBCapacity int
	RetireWidth int
	Dispatch    DispatchConfig
	RegisterFile RegisterFileConfig
	Latencies   LatencyTable
	Period      int64
}

// NewBackend wires a complete dispatch/execute/retire backend bound to a
// fresh register file, period cycles per tick.
func NewBackend(k *kernel.Kernel, name string, cfg BackendConfig) *Backend {
	rob := NewROB(cfg.ROBCapacity)
	rf := NewRegisterFile(k, name+"/regfile", cfg.RegisterFile)
	dispatch := NewDispatchStage(name+"/dispatch", cfg.Dispatch, rob)
	execute := NewExecuteStage(name+"/execute", cfg.Latencies)
	execute.SetForwardSink(dispatch.RecordForward)
	retire := NewRetireStage(name+"/retire", rob, cfg.RetireWidth)
	for i := range rf.writeAddr {
		mask := rf.writeMask[i]
		retire.BindLane(rf.writeAddr[i], rf.writeData[i], mask)
	}

	return &Backend{
		Ticking:      kernel.NewTicking(cfg.Period),
		name:         name,
		kernel:       k,
		RegisterFile: rf,
		ROB:          rob,
		Dispatch:     dispatch,
		Execute:      execute,
		Retire:       retire,
	}
}

// Name returns the backend's name.
func (b *Backend) Name() string { return b.name }

// Enqueue submits one instruction for dispatch.
func (b *Backend) Enqueue(instr *Instruction) bool { return b.Dispatch.Enqueue(instr) }

// Start schedules the register file and the backend's own tick.
func (b *Backend) Start(t int64) error {
	if err := b.RegisterFile.Start(t); err != nil {
		return err
	}
	return b.scheduleTick(t)
}

func (b *Backend) scheduleTick(t int64) error {
	e, err := b.kernel.ScheduleAt(t, kernel.PriorityComponent, kernel.EventTick, b.name+"/tick", func(k *kernel.Kernel) {
		if !b.Ticking.Enabled() {
			return
		}
		next := b.Ticking.Advance(k.Now())
		b.tick(k)
		_ = b.scheduleTick(next)
	})
	if err != nil {
		return err
	}
	b.event = e
	return nil
}

// Stop halts the backend's self-rescheduling (and the register file's).
func (b *Backend) Stop() {
	b.Ticking.Disable()
	if b.event != nil {
		b.event.Cancel()
	}
	b.RegisterFile.Stop()
}

// tick runs dispatch, then admits newly issued micro-ops into execute,
// advances execute, then retires — in that order, so a micro-op
// dispatched this cycle is visible to execute's Tick no later than the
// same cycle it was issued, matching the backend's single-cycle
// dispatch-to-execute handoff.
func (b *Backend) tick(k *kernel.Kernel) {
	b.Dispatch.Tick(k)
	for {
		pkt := b.Dispatch.Next()
		if pkt == nil {
			break
		}
		uop, ok := pkt.(*kernel.UopPacket)
		if !ok {
			continue
		}
		entry := b.activeEntryFor(uop)
		if entry == nil {
			continue
		}
		b.Execute.Accept(uop, entry)
	}
	b.Execute.Tick(k)
	b.Retire.Tick(k)
}

// activeEntryFor looks up the ROB entry a just-issued micro-op was
// assigned, by scanning the dispatch stage's active list for the
// matching ROB index. The active list is short (bounded by ROB
// capacity) and this only runs once per issued micro-op per cycle.
func (b *Backend) activeEntryFor(uop *kernel.UopPacket) *ROBEntry {
	for _, e := range b.Dispatch.active {
		if e.Index == uop.ROBIndex {
			return e
		}
	}
	return nil
}
