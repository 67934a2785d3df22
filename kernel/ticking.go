package kernel

// Ticking holds the period/counter bookkeeping shared by every
// self-scheduling entity: pipelines and every connection variant. It is
// meant to be embedded, the same way the teacher's Loop composes a
// single core with pluggable timer behavior on top (eventloop/loop.go).
//
// Disabling suppresses further self-rescheduling but does not reach
// into the kernel's queue to cancel events already pending — a pending
// propagate or tick is still dispatched. Every embedder in this module
// checks Enabled at the start of its tick and returns without doing any
// work when disabled.
type Ticking struct {
	period  int64
	count   uint64
	enabled bool
	last    int64
}

// NewTicking constructs a Ticking with the given period, enabled.
func NewTicking(period int64) Ticking {
	return Ticking{period: period, enabled: true}
}

// Period returns the tick interval.
func (t *Ticking) Period() int64 { return t.period }

// TickCount returns the number of ticks observed so far.
func (t *Ticking) TickCount() uint64 { return t.count }

// LastTick returns the simulated time of the most recent tick.
func (t *Ticking) LastTick() int64 { return t.last }

// Enabled reports whether self-rescheduling is currently active.
func (t *Ticking) Enabled() bool { return t.enabled }

// Enable resumes self-rescheduling.
func (t *Ticking) Enable() { t.enabled = true }

// Disable suspends self-rescheduling; it takes effect from the next
// tick onward.
func (t *Ticking) Disable() { t.enabled = false }

// advance records a tick at time at and returns the time of the next
// one.
func (t *Ticking) advance(at int64) int64 {
	t.count++
	t.last = at
	return at + t.period
}

// Advance is the exported form of advance, for self-scheduling types
// defined outside this package (e.g. cpu.RegisterFile) that embed
// Ticking but can't reach its unexported method.
func (t *Ticking) Advance(at int64) int64 { return t.advance(at) }
