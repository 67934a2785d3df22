package kernel

// BroadcastConnection is the ticking broadcast flow-control variant
// (spec.md §4.3.1): each propagate, it reads from its source ports and
// clones the chosen packet onto every destination port. Only one source
// can win a given cycle; when more than one source has data
// simultaneously, the first (in declaration order) wins and the rest
// are discarded for that cycle — the Open Question resolved in
// DESIGN.md.
type BroadcastConnection struct {
	baseConnection
	sources      []*Port
	destinations []*Port
}

// NewBroadcastConnection constructs a broadcast connection. latency may
// be 0 for same-cycle delivery.
func NewBroadcastConnection(k *Kernel, name string, period, latency int64, sources, destinations []*Port) *BroadcastConnection {
	return &BroadcastConnection{
		baseConnection: newBaseConnection(k, name, period, latency),
		sources:        sources,
		destinations:   destinations,
	}
}

// Start implements Connection.
func (c *BroadcastConnection) Start(t int64) error {
	if len(c.sources) == 0 || len(c.destinations) == 0 {
		return c.wiringError("broadcast connection requires at least one source and one destination port")
	}
	return c.start(t, c)
}

func (c *BroadcastConnection) propagate(k *Kernel) {
	var chosen Packet
	for _, src := range c.sources {
		if !src.HasData() {
			continue
		}
		pkt := src.Read()
		if chosen == nil {
			chosen = pkt
		}
	}
	if chosen == nil {
		return
	}

	deliver := func(k *Kernel) {
		for _, dst := range c.destinations {
			dst.SetData(chosen.Clone())
		}
	}
	if c.latency <= 0 {
		deliver(k)
	} else {
		c.scheduleDelivery(k, c.name+"/deliver", deliver)
	}
	c.recordTransfer(k)
}
