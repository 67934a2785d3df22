package cpu

import "github.com/cyclesim/suprasim/kernel"

// inflightUop is one micro-op currently occupying the execute stage: it
// holds its own remaining-latency countdown rather than sharing a
// single pipeline slot, since spec.md §4.6.2's latency is
// opcode-category-dependent and multiple micro-ops of different
// latencies may be in flight simultaneously.
type inflightUop struct {
	uop       *kernel.UopPacket
	entry     *ROBEntry
	remaining int64
}

// ExecuteStage holds each dispatched micro-op for a latency determined
// by its opcode category (spec.md §4.6.2), marking the corresponding
// ROB entry complete when that latency elapses.
type ExecuteStage struct {
	name    string
	table   LatencyTable
	forward func(reg int, data uint64) // dispatch.RecordForward, wired by Backend

	inflight []*inflightUop

	Completed int64
}

// NewExecuteStage constructs an execute stage using table to look up
// each micro-op's latency.
func NewExecuteStage(name string, table LatencyTable) *ExecuteStage {
	return &ExecuteStage{name: name, table: table}
}

// Name returns the stage's name.
func (x *ExecuteStage) Name() string { return x.name }

// SetForwardSink registers the callback invoked with (register, data)
// whenever a micro-op completes, so the dispatch stage's forwarding
// buffer stays current.
func (x *ExecuteStage) SetForwardSink(fn func(reg int, data uint64)) {
	x.forward = fn
}

// Accept admits a newly issued micro-op into the execute stage,
// attaching its ROB entry.
func (x *ExecuteStage) Accept(uop *kernel.UopPacket, entry *ROBEntry) {
	latency := x.table.Latency(uop.Opcode)
	if latency < 1 {
		latency = 1
	}
	x.inflight = append(x.inflight, &inflightUop{uop: uop, entry: entry, remaining: latency})
}

// Tick decrements every in-flight micro-op's remaining latency and
// completes any that reach zero. The result payload is a
// latency-accurate placeholder, not a functionally correct ALU result,
// per spec.md §1's explicit non-goal.
func (x *ExecuteStage) Tick(k *kernel.Kernel) {
	live := x.inflight[:0]
	for _, iu := range x.inflight {
		iu.remaining--
		if iu.remaining > 0 {
			live = append(live, iu)
			continue
		}
		result := placeholderResult(iu.uop)
		iu.entry.MarkComplete(result, 0xFF, false, k.Now())
		if x.forward != nil {
			x.forward(iu.entry.Dst, result)
		}
		x.Completed++
	}
	x.inflight = live
}

// placeholderResult computes a deterministic, ISA-agnostic stand-in
// result so downstream tracing and WAW tests have stable data to
// observe, without claiming functional correctness.
func placeholderResult(uop *kernel.UopPacket) uint64 {
	return uint64(uop.Src1)<<32 | uint64(uint32(uop.Imm)) ^ uint64(uop.Src2)
}
