package cpu

// ROBEntry is one reorder-buffer slot (spec.md §3). Entries are
// inserted only at the tail and retired only from the head; each is
// retired at most once, after which its slot is reusable.
type ROBEntry struct {
	Index     int // monotonically assigned ROB index
	InstrID   int64
	UopID     int64
	Dst       int
	VectorDst bool

	Data       uint64
	ByteEnable uint8

	Complete bool
	Retired  bool
	Trap     bool

	DispatchCycle int64
	CompleteCycle int64
	RetireCycle   int64
}

// MarkComplete records a micro-op's execution result, called by the
// execute stage once the opcode-category latency has elapsed.
func (e *ROBEntry) MarkComplete(data uint64, byteEnable uint8, trap bool, at int64) {
	e.Data = data
	e.ByteEnable = byteEnable
	e.Trap = trap
	e.Complete = true
	e.CompleteCycle = at
}

// ROB is a fixed-capacity circular reorder buffer.
type ROB struct {
	entries   []ROBEntry
	head      int
	tail      int
	count     int
	nextIndex int
}

// NewROB constructs an empty ROB with the given capacity.
func NewROB(capacity int) *ROB {
	return &ROB{entries: make([]ROBEntry, capacity)}
}

// Capacity returns the ROB's fixed slot count.
func (r *ROB) Capacity() int { return len(r.entries) }

// Len returns the number of occupied (not-yet-retired) entries.
func (r *ROB) Len() int { return r.count }

// Full reports whether the ROB has no free slot for a new dispatch.
func (r *ROB) Full() bool { return r.count == len(r.entries) }

// Dispatch inserts a new entry at the tail and returns a stable pointer
// to it (valid until retired and the slot is reused), plus false if the
// ROB is full.
func (r *ROB) Dispatch(instrID, uopID int64, dst int, vectorDst bool, at int64) (*ROBEntry, bool) {
	if r.Full() {
		return nil, false
	}
	slot := r.tail
	idx := r.nextIndex
	r.nextIndex++
	r.entries[slot] = ROBEntry{Index: idx, InstrID: instrID, UopID: uopID, Dst: dst, VectorDst: vectorDst, DispatchCycle: at}
	r.tail = (r.tail + 1) % len(r.entries)
	r.count++
	return &r.entries[slot], true
}

// RetireCandidates returns up to maxW head-adjacent entries that are
// complete — the prefix eligible for retirement this cycle, stopping at
// the first incomplete (or absent) entry, per spec.md §4.6.3's in-order
// rule. None of these are removed from the ROB by this call; see
// Commit.
func (r *ROB) RetireCandidates(maxW int) []*ROBEntry {
	var out []*ROBEntry
	for i := 0; i < maxW && i < r.count; i++ {
		idx := (r.head + i) % len(r.entries)
		e := &r.entries[idx]
		if !e.Complete {
			break
		}
		out = append(out, e)
	}
	return out
}

// Commit removes the n head-adjacent entries, marking each retired at
// time at, and returns them in retirement order. Callers determine n
// from RetireCandidates after resolving WAW/trap policy.
func (r *ROB) Commit(n int, at int64) []*ROBEntry {
	out := make([]*ROBEntry, 0, n)
	for i := 0; i < n; i++ {
		e := &r.entries[r.head]
		e.Retired = true
		e.RetireCycle = at
		out = append(out, e)
		r.head = (r.head + 1) % len(r.entries)
		r.count--
	}
	return out
}
