package kernel

// ReadyValidConnection implements the ready/valid FIFO handshake
// (spec.md §4.3.2): a bounded queue between one source and one
// destination port, with back-pressure when the queue is full. Each
// propagate runs, in order: deliver (if the queue is non-empty and the
// destination is free), stall-count (queue non-empty but destination
// still occupied), enqueue (source has data and the queue has room),
// back-pressure (source has data but the queue is full — the packet is
// simply left on the source port for the next cycle).
type ReadyValidConnection struct {
	baseConnection
	source      *Port
	destination *Port
	capacity    int
	fifo        []Packet

	Transfers int64
	Stalls    int64
}

// NewReadyValidConnection constructs a ready/valid connection with the
// given FIFO capacity (must be >= 1).
func NewReadyValidConnection(k *Kernel, name string, period, latency int64, source, destination *Port, capacity int) *ReadyValidConnection {
	return &ReadyValidConnection{
		baseConnection: newBaseConnection(k, name, period, latency),
		source:         source,
		destination:    destination,
		capacity:       capacity,
	}
}

// Start implements Connection.
func (c *ReadyValidConnection) Start(t int64) error {
	if c.source == nil || c.destination == nil {
		return c.wiringError("ready/valid connection requires a bound source and destination port")
	}
	if c.capacity < 1 {
		return c.wiringError("ready/valid connection requires a FIFO capacity of at least 1")
	}
	return c.start(t, c)
}

// Depth returns the FIFO's current occupancy.
func (c *ReadyValidConnection) Depth() int { return len(c.fifo) }

func (c *ReadyValidConnection) propagate(k *Kernel) {
	if len(c.fifo) > 0 {
		if !c.destination.HasData() {
			pkt := c.fifo[0]
			c.fifo = c.fifo[1:]
			deliver := func(k *Kernel) { c.destination.SetData(pkt) }
			if c.latency <= 0 {
				deliver(k)
			} else {
				c.scheduleDelivery(k, c.name+"/deliver", deliver)
			}
			c.Transfers++
			c.recordTransfer(k)
		} else {
			c.Stalls++
			c.recordStall(k, "destination-not-ready")
		}
	}

	if c.source.HasData() {
		if len(c.fifo) < c.capacity {
			c.fifo = append(c.fifo, c.source.Read())
		} else {
			c.Stalls++
			c.recordStall(k, "back-pressure")
		}
	}
}
