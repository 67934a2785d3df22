package kernel

import (
	"github.com/cyclesim/suprasim/diag"
	"github.com/cyclesim/suprasim/trace"
)

// Connection is a directed, self-ticking binding between source and
// destination ports. Every variant (broadcast, ready/valid, credit,
// register writeback) implements this.
type Connection interface {
	Name() string
	Start(t int64) error
	Stop()
}

// propagator is implemented by each concrete variant: one cycle's worth
// of port movement, invoked by baseConnection's self-rescheduling tick.
type propagator interface {
	propagate(k *Kernel)
}

// baseConnection owns the ticking/self-rescheduling core shared by every
// connection variant — the same role the teacher's Loop plays as the
// single core that timers, microtasks, and I/O polling all schedule
// themselves through (eventloop/loop.go), generalized here to a fixed
// period instead of a dynamic wakeup heap.
type baseConnection struct {
	Ticking
	name    string
	kernel  *Kernel
	latency int64
	event   *Event
}

func newBaseConnection(k *Kernel, name string, period, latency int64) baseConnection {
	return baseConnection{
		Ticking: NewTicking(period),
		name:    name,
		kernel:  k,
		latency: latency,
	}
}

// Name implements Connection.
func (b *baseConnection) Name() string { return b.name }

// wiringError builds a *WiringError for reason, reports it to the
// kernel's operator-diagnostics logger, and returns it — every variant's
// Start method routes its wiring faults through here rather than
// constructing the error directly, so none of them can forget to report.
func (b *baseConnection) wiringError(reason string) error {
	err := &WiringError{Connection: b.name, Reason: reason}
	diag.WiringFault(b.kernel.Diag(), b.name, err)
	return err
}

// start schedules the first propagate at t and arranges for each
// propagate to reschedule its own successor.
func (b *baseConnection) start(t int64, self propagator) error {
	return b.scheduleTick(t, self)
}

func (b *baseConnection) scheduleTick(t int64, self propagator) error {
	e, err := b.kernel.ScheduleAt(t, PriorityConnection, EventPropagate, b.name+"/propagate", func(k *Kernel) {
		if !b.Enabled() {
			return
		}
		next := b.advance(k.Now())
		self.propagate(k)
		_ = b.scheduleTick(next, self)
	})
	if err != nil {
		return err
	}
	b.event = e
	return nil
}

// Stop implements Connection: it disables further self-rescheduling and
// cancels the currently pending tick, if any.
func (b *baseConnection) Stop() {
	b.Disable()
	if b.event != nil {
		b.event.Cancel()
	}
}

// scheduleDelivery schedules a latency-delayed delivery so it lands
// before cycle k.Now()+latency's own propagate/tick events, per the
// delivery-before-next-cycle convention (spec.md §5): an event meant to
// take effect at time T is scheduled at T-1 with PriorityDelivery, the
// lowest tier, so among same-time events it runs last, but — because it
// sits at T-1, strictly before T — it is visible to every event
// dispatched at T regardless of tier. Callers with latency 0 should
// apply their effect directly instead of calling this.
func (b *baseConnection) scheduleDelivery(k *Kernel, label string, action Action) {
	deliverAt := k.Now() + b.latency
	scheduleAt := deliverAt - 1
	if scheduleAt < k.Now() {
		scheduleAt = k.Now()
	}
	_, _ = k.ScheduleAt(scheduleAt, PriorityDelivery, EventDelivery, label, action)
}

func (b *baseConnection) recordStall(k *Kernel, reason string) {
	b.kernel.Sink().Record(trace.Record{
		Time:      k.Now(),
		Category:  trace.CategoryCommunication,
		Component: b.name,
		Event:     "stall",
		Details:   map[string]any{"reason": reason},
		Priority:  int(PriorityConnection),
	})
}

func (b *baseConnection) recordTransfer(k *Kernel) {
	b.kernel.Sink().Record(trace.Record{
		Time:      k.Now(),
		Category:  trace.CategoryCommunication,
		Component: b.name,
		Event:     "transfer",
		Priority:  int(PriorityConnection),
	})
}
