package kernel

// CreditConnection extends the ready/valid FIFO with an explicit credit
// counter (spec.md §4.3.3): the source may only enqueue while both FIFO
// space and credits remain, and credits are replenished out-of-band by
// whatever writes a non-negative ScalarPacket onto the credit port.
// Stalls are categorized by cause so callers can distinguish a slow
// consumer from an exhausted credit pool.
type CreditConnection struct {
	baseConnection
	source      *Port
	destination *Port
	creditPort  *Port
	capacity    int
	fifo        []Packet
	credits     int64

	Transfers          int64
	StallsNoCredit     int64
	StallsBackPressure int64
	StallsDestNotReady int64
}

// NewCreditConnection constructs a credit-based connection. initialCredits
// seeds the starting credit balance.
func NewCreditConnection(k *Kernel, name string, period, latency int64, source, destination, creditPort *Port, capacity int, initialCredits int64) *CreditConnection {
	return &CreditConnection{
		baseConnection: newBaseConnection(k, name, period, latency),
		source:         source,
		destination:    destination,
		creditPort:     creditPort,
		capacity:       capacity,
		credits:        initialCredits,
	}
}

// Start implements Connection.
func (c *CreditConnection) Start(t int64) error {
	if c.source == nil || c.destination == nil || c.creditPort == nil {
		return c.wiringError("credit connection requires bound source, destination, and credit ports")
	}
	if c.capacity < 1 {
		return c.wiringError("credit connection requires a FIFO capacity of at least 1")
	}
	return c.start(t, c)
}

// Credits returns the current credit balance.
func (c *CreditConnection) Credits() int64 { return c.credits }

// Depth returns the FIFO's current occupancy.
func (c *CreditConnection) Depth() int { return len(c.fifo) }

func (c *CreditConnection) propagate(k *Kernel) {
	if c.creditPort.HasData() {
		if pkt, ok := c.creditPort.Read().(*ScalarPacket); ok && pkt.Value >= 0 {
			c.credits = pkt.Value
		}
	}

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
			c.StallsDestNotReady++
			c.recordStall(k, "destination-not-ready")
		}
	}

	if c.source.HasData() {
		switch {
		case len(c.fifo) >= c.capacity:
			c.StallsBackPressure++
			c.recordStall(k, "back-pressure")
		case c.credits <= 0:
			c.StallsNoCredit++
			c.recordStall(k, "no-credit")
		default:
			c.fifo = append(c.fifo, c.source.Read())
			c.credits--
		}
	}
}
