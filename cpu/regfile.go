// Package cpu implements a representative out-of-order execution backend
// built on the kernel's primitives: a multi-ported, scoreboarded register
// file and a reorder-buffer-based dispatch/execute/retire pipeline.
package cpu

import (
	"fmt"

	"github.com/cyclesim/suprasim/kernel"
)

// RegisterFile is a multi-ported register file with a pending-write
// scoreboard and a forwarding counter (spec.md §4.5). Register 0 is
// hard-wired to zero and its scoreboard bit is always clear.
type RegisterFile struct {
	*kernel.Component
	kernel.Ticking

	numRegisters int
	bitWidth     int
	forwarding   bool
	scoreboard   bool
	debug        bool

	values         []uint64
	pending        uint32 // scoreboard bits set by SetScoreboard, cleared by unmasked writes
	prevPublished  uint32 // the mask published on scoreboard_comb last tick, republished on scoreboard_regd next tick

	readAddr  []*kernel.Port
	readData  []*kernel.Port
	writeAddr []*kernel.Port
	writeData []*kernel.Port
	writeMask []*kernel.Port

	scoreboardRegd *kernel.Port
	scoreboardComb *kernel.Port
	writeCount     *kernel.Port
	debugAddr      *kernel.Port
	debugData      *kernel.Port

	event *kernel.Event

	Conflicts int64
	Forwards  int64
}

// RegisterFileConfig collects the construction-time parameters from
// spec.md §4.5.
type RegisterFileConfig struct {
	NumRegisters int
	ReadPorts    int
	WritePorts   int
	BitWidth     int // 32 or 64
	Forwarding   bool
	Scoreboard   bool
	Debug        bool
	Period       int64
}

// NewRegisterFile constructs a register file and its ports. Range
// validation (register count, bit width) belongs to config.Config.Validate;
// this constructor trusts an already-validated configuration.
func NewRegisterFile(k *kernel.Kernel, name string, cfg RegisterFileConfig) *RegisterFile {
	rf := &RegisterFile{
		Component:    kernel.NewComponent(k, name),
		Ticking:      kernel.NewTicking(cfg.Period),
		numRegisters: cfg.NumRegisters,
		bitWidth:     cfg.BitWidth,
		forwarding:   cfg.Forwarding,
		scoreboard:   cfg.Scoreboard,
		debug:        cfg.Debug,
		values:       make([]uint64, cfg.NumRegisters),
	}
	for i := 0; i < cfg.ReadPorts; i++ {
		rf.readAddr = append(rf.readAddr, rf.AddPort(fmt.Sprintf("read%d_addr", i), kernel.DirIn))
		rf.readData = append(rf.readData, rf.AddPort(fmt.Sprintf("read%d_data", i), kernel.DirOut))
	}
	for i := 0; i < cfg.WritePorts; i++ {
		rf.writeAddr = append(rf.writeAddr, rf.AddPort(fmt.Sprintf("write%d_addr", i), kernel.DirIn))
		rf.writeData = append(rf.writeData, rf.AddPort(fmt.Sprintf("write%d_data", i), kernel.DirIn))
		rf.writeMask = append(rf.writeMask, rf.AddPort(fmt.Sprintf("write%d_mask", i), kernel.DirIn))
	}
	rf.scoreboardRegd = rf.AddPort("scoreboard_regd", kernel.DirOut)
	rf.scoreboardComb = rf.AddPort("scoreboard_comb", kernel.DirOut)
	rf.writeCount = rf.AddPort("write_count", kernel.DirOut)
	if cfg.Debug {
		rf.debugAddr = rf.AddPort("debug_addr", kernel.DirIn)
		rf.debugData = rf.AddPort("debug_data", kernel.DirOut)
	}
	return rf
}

func (rf *RegisterFile) mask() uint64 {
	if rf.bitWidth >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(rf.bitWidth)) - 1
}

// SetScoreboard marks register reg as having a pending write. It is
// called from outside the register file, never from its own tick; no
// code in this module (including DispatchStage and Backend) calls it.
func (rf *RegisterFile) SetScoreboard(reg int) {
	if reg <= 0 || reg >= rf.numRegisters {
		return
	}
	rf.pending |= 1 << uint(reg)
}

// Read returns register reg's current value (0 for register 0 or any
// out-of-range index).
func (rf *RegisterFile) Read(reg int) uint64 {
	if reg <= 0 || reg >= rf.numRegisters {
		return 0
	}
	return rf.values[reg]
}

// Start schedules the register file's first tick at t.
func (rf *RegisterFile) Start(t int64) error {
	return rf.scheduleTick(t)
}

func (rf *RegisterFile) scheduleTick(t int64) error {
	e, err := rf.Kernel().ScheduleAt(t, kernel.PriorityComponent, kernel.EventTick, rf.Name()+"/tick", func(k *kernel.Kernel) {
		if !rf.Ticking.Enabled() {
			return
		}
		next := rf.Ticking.Advance(k.Now())
		rf.tick(k)
		_ = rf.scheduleTick(next)
	})
	if err != nil {
		return err
	}
	rf.event = e
	return nil
}

// Stop halts the register file's self-rescheduling.
func (rf *RegisterFile) Stop() {
	rf.Ticking.Disable()
	if rf.event != nil {
		rf.event.Cancel()
	}
}

// Reset restores the register file to its power-on state: all registers
// and scoreboard bits zero.
func (rf *RegisterFile) Reset() {
	rf.Component.Reset()
	for i := range rf.values {
		rf.values[i] = 0
	}
	rf.pending = 0
	rf.prevPublished = 0
	rf.Conflicts = 0
	rf.Forwards = 0
}

// writeRequest is one port-index's decoded write this cycle.
type writeRequest struct {
	reg    int
	data   uint64
	mask   uint64
	masked bool
}

func (rf *RegisterFile) tick(k *kernel.Kernel) {
	// 1. Process writes: collect, detect conflicts, apply first-writer-wins.
	var requests []writeRequest
	for i := range rf.writeAddr {
		if !rf.writeAddr[i].HasData() || !rf.writeData[i].HasData() {
			continue
		}
		addrPkt, ok := rf.writeAddr[i].Read().(*kernel.RegReadPacket)
		if !ok {
			continue
		}
		dataPkt, ok := rf.writeData[i].Read().(*kernel.RegWritePacket)
		if !ok {
			continue
		}
		masked := dataPkt.Masked
		m := dataPkt.Mask
		if rf.writeMask[i].HasData() {
			if maskPkt, ok := rf.writeMask[i].Read().(*kernel.BoolPacket); ok {
				masked = masked || maskPkt.Value
			}
		}
		requests = append(requests, writeRequest{reg: addrPkt.Index, data: dataPkt.Data, mask: m, masked: masked})
	}

	applied := make(map[int]bool, len(requests))
	writeCount := 0
	for _, req := range requests {
		if req.reg <= 0 || req.reg >= rf.numRegisters {
			continue
		}
		if applied[req.reg] {
			rf.Conflicts++
			continue
		}
		applied[req.reg] = true
		byteMask := req.mask
		if byteMask == 0 {
			byteMask = ^uint64(0)
		}
		current := rf.values[req.reg]
		rf.values[req.reg] = ((current &^ byteMask) | (req.data & byteMask)) & rf.mask()
		if !req.masked {
			rf.pending &^= 1 << uint(req.reg)
		}
		writeCount++
	}
	rf.writeCount.SetData(kernel.NewScalarPacket(k.Now(), int64(writeCount)))

	// 2. Process reads.
	for i := range rf.readAddr {
		if !rf.readAddr[i].HasData() {
			continue
		}
		addrPkt, ok := rf.readAddr[i].Read().(*kernel.RegReadPacket)
		if !ok {
			continue
		}
		reg := addrPkt.Index
		value := rf.Read(reg)
		rf.readData[i].SetData(kernel.NewScalarPacket(k.Now(), int64(value)))
		if rf.forwarding && reg > 0 && reg < rf.numRegisters && rf.pending&(1<<uint(reg)) != 0 {
			rf.Forwards++
		}
	}

	// 3. Publish scoreboard: previous cycle's mask on regd, and the
	// (previous - cleared-this-cycle) mask — which, since pending has
	// already had this cycle's clears applied above, is just the
	// current pending mask — on comb.
	rf.scoreboardRegd.SetData(kernel.NewScalarPacket(k.Now(), int64(rf.prevPublished)))
	rf.scoreboardComb.SetData(kernel.NewScalarPacket(k.Now(), int64(rf.pending)))
	rf.prevPublished = rf.pending

	if rf.debug && rf.debugAddr != nil && rf.debugAddr.HasData() {
		if addrPkt, ok := rf.debugAddr.Read().(*kernel.RegReadPacket); ok {
			rf.debugData.SetData(kernel.NewScalarPacket(k.Now(), int64(rf.Read(addrPkt.Index))))
		}
	}
}
