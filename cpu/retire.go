package cpu

import "github.com/cyclesim/suprasim/kernel"

// RetireStage retires up to Width head-adjacent completed ROB entries
// per cycle, resolving write-after-write collisions within the batch
// (spec.md §4.6.3), and publishes the surviving writes onto register
// file write ports — one lane per configured write port.
type RetireStage struct {
	name  string
	rob   *ROB
	width int
	lanes []retireLane

	Retired int64
	Traps   int64
}

type retireLane struct {
	addr *kernel.Port
	data *kernel.Port
	mask *kernel.Port
}

// NewRetireStage constructs a retire stage bound to rob, retiring up to
// width entries per cycle. Write-port lanes are attached afterward via
// BindLane.
func NewRetireStage(name string, rob *ROB, width int) *RetireStage {
	return &RetireStage{name: name, rob: rob, width: width}
}

// Name returns the stage's name.
func (r *RetireStage) Name() string { return r.name }

// BindLane attaches one write-port triple as retire lane i.
func (r *RetireStage) BindLane(addr, data, mask *kernel.Port) {
	r.lanes = append(r.lanes, retireLane{addr: addr, data: data, mask: mask})
}

// Tick retires up to Width entries this cycle, per spec.md §4.6.3.
func (r *RetireStage) Tick(k *kernel.Kernel) {
	candidates := r.rob.RetireCandidates(r.width)
	if len(candidates) == 0 {
		return
	}

	effectiveCount := len(candidates)
	for i, e := range candidates {
		if e.Trap {
			effectiveCount = i + 1
			r.Traps++
			break
		}
	}

	byteEnables := resolveWAW(candidates[:effectiveCount])

	committed := r.rob.Commit(effectiveCount, k.Now())

	// Two or more entries in this batch can still target the same
	// register with disjoint byte-enables after resolveWAW (spec.md
	// §4.6.3's S5: one writer owns bytes 0-3, another owns bytes 4-7).
	// The register file applies at most one write per register per
	// cycle, first-writer-wins (spec.md §4.5) — publishing each entry on
	// its own lane would make the register file treat the second as a
	// same-cycle conflict and drop it. So entries sharing a destination
	// are merged into a single combined write here, before they ever
	// reach a lane.
	var merges []mergedWrite
	for i, e := range committed {
		r.Retired++
		be := byteEnables[i]
		if be == 0 {
			continue // fully masked off by a later writer in the same batch
		}
		bits := byteEnableMask(be)
		merged := false
		for j := range merges {
			if merges[j].dst == e.Dst && merges[j].vectorDst == e.VectorDst {
				merges[j].data |= e.Data & bits
				merges[j].mask |= bits
				merged = true
				break
			}
		}
		if !merged {
			merges = append(merges, mergedWrite{dst: e.Dst, vectorDst: e.VectorDst, data: e.Data & bits, mask: bits})
		}
	}

	for i, m := range merges {
		if i >= len(r.lanes) {
			continue // no free write-port lane this cycle; write is dropped, mirroring a structural write-port shortage
		}
		lane := r.lanes[i]
		partial := m.mask != ^uint64(0)
		lane.addr.SetData(kernel.NewRegReadPacket(k.Now(), m.dst))
		data := kernel.NewRegWritePacket(k.Now(), m.dst, m.data)
		data.Mask = m.mask
		data.Masked = partial
		lane.data.SetData(data)
		if lane.mask != nil {
			lane.mask.SetData(kernel.NewBoolPacket(k.Now(), partial))
		}
	}
}

// mergedWrite accumulates every committed entry targeting the same
// destination this cycle into one write-port publish.
type mergedWrite struct {
	dst       int
	vectorDst bool
	data      uint64
	mask      uint64
}

// byteEnableMask expands an 8-bit byte-enable vector into the 64-bit
// register mask the register file's write path applies verbatim
// (cpu/regfile.go): bit i of be gates byte i, i.e. bits [8i, 8i+8) of
// the result.
func byteEnableMask(be uint8) uint64 {
	var mask uint64
	for i := 0; i < 8; i++ {
		if be&(1<<uint(i)) != 0 {
			mask |= 0xFF << uint(8*i)
		}
	}
	return mask
}

// resolveWAW implements spec.md §4.6.3's write-after-write resolution:
// entries are resolved pairwise from latest to earliest. Each earlier
// write's effective byte-enable becomes `earlier & ¬(union of all
// laters targeting the same register)`. Entries targeting distinct
// registers don't interact.
func resolveWAW(batch []*ROBEntry) []uint8 {
	out := make([]uint8, len(batch))
	for i, e := range batch {
		out[i] = e.ByteEnable
	}
	for i := range batch {
		var laterUnion uint8
		for j := i + 1; j < len(batch); j++ {
			if batch[j].Dst == batch[i].Dst && batch[j].VectorDst == batch[i].VectorDst {
				laterUnion |= batch[j].ByteEnable
			}
		}
		out[i] &^= laterUnion
	}
	return out
}
