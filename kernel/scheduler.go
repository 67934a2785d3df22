package kernel

import (
	"container/heap"

	"github.com/cyclesim/suprasim/diag"
	"github.com/cyclesim/suprasim/trace"
)

// eventQueue is a binary min-heap keyed by (time, -priority, id). This
// gives the deterministic dispatch order the spec requires: earliest
// time first, highest priority tier first within a time, and
// scheduling order on a full tie — the same shape as the teacher's
// timerHeap (eventloop/loop.go), generalized with a priority tier.
type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].id < q[j].id
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*Event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Kernel is the discrete-event scheduler: a time-ordered, priority-tiered
// event queue that drives all progress in a simulation. The Kernel owns
// the one thread of control; it does not fail internally, and queue
// exhaustion is a normal terminal state.
type Kernel struct {
	queue  eventQueue
	now    int64
	nextID uint64
	sink   trace.Sink
	diag   *diag.Logger
	stats  Metrics
}

// New constructs a Kernel. With no options, trace records are discarded
// (trace.NopSink), operator diagnostics are discarded (diag.Nop), and
// the clock starts at 0.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		nextID: 1,
		sink:   trace.NopSink{},
		diag:   diag.Nop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	heap.Init(&k.queue)
	return k
}

// Sink returns the kernel's configured trace sink.
func (k *Kernel) Sink() trace.Sink { return k.sink }

// Diag returns the kernel's configured operator-diagnostics logger.
func (k *Kernel) Diag() *diag.Logger { return k.diag }

// Now returns the time of the most recently dispatched event, or the
// kernel's start time (0 by default) before any event has been
// dispatched.
func (k *Kernel) Now() int64 { return k.now }

// Metrics returns a snapshot of scheduler throughput.
func (k *Kernel) Metrics() Metrics {
	m := k.stats
	m.QueueDepth = k.queue.Len()
	return m
}

// Schedule inserts a fully formed Event into the queue. Scheduling an
// event with a fire time strictly earlier than Now is a logic error: the
// event is rejected (not inserted), the fault is reported to the
// operator-diagnostics logger (not the trace sink — §6/§7 keep the
// simulation's own structured trace stream separate from ambient
// diagnostics about the simulator itself), and a *TemporalError is
// returned. Equal to Now is allowed.
func (k *Kernel) Schedule(e *Event) error {
	if e == nil {
		return nil
	}
	if e.time < k.now {
		err := &TemporalError{Label: e.label, Requested: e.time, Current: k.now}
		diag.TemporalRejection(k.diag, e.label, err)
		return err
	}
	e.id = k.nextID
	k.nextID++
	heap.Push(&k.queue, e)
	return nil
}

// ScheduleAt is a convenience form of Schedule that builds the Event for
// the caller.
func (k *Kernel) ScheduleAt(time int64, priority Priority, category EventCategory, label string, action Action) (*Event, error) {
	e := &Event{time: time, priority: priority, category: category, label: label, action: action}
	if err := k.Schedule(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Run drains the queue until it is empty or the next event's fire time
// exceeds maxTime.
func (k *Kernel) Run(maxTime int64) {
	for k.queue.Len() > 0 && k.queue[0].time <= maxTime {
		k.dispatchNext()
	}
}

// RunFor executes up to n non-cancelled events, stopping early if the
// queue empties first.
func (k *Kernel) RunFor(n int) {
	executed := 0
	for executed < n && k.queue.Len() > 0 {
		cancelled := k.queue[0].cancelled
		k.dispatchNext()
		if !cancelled {
			executed++
		}
	}
}

func (k *Kernel) dispatchNext() {
	e := heap.Pop(&k.queue).(*Event)
	k.now = e.time
	if e.cancelled {
		k.stats.EventsCancelled++
		return
	}
	k.stats.EventsDispatched++
	if e.action != nil {
		e.action(k)
	}
}

// Reset clears all queued events and returns the clock to 0.
func (k *Kernel) Reset() {
	k.queue = k.queue[:0]
	k.now = 0
	k.nextID = 1
	k.stats = Metrics{}
}
