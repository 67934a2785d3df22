package kernel

// RegWritebackConnection is the specialized register-file writeback
// connection (spec.md §4.3.4): each cycle it reads an (address, data)
// pair from two source ports and, once the destination side is free,
// delivers address/data/mask packets. A two-level buffer (current,
// next) lets one extra write be captured without loss while the
// destination is still busy with the previous one; a second write
// arriving while both levels are occupied overwrites next.
type RegWritebackConnection struct {
	baseConnection
	addrSrc, dataSrc          *Port
	addrDst, dataDst, maskDst *Port
	current, next             *writebackSlot
}

type writebackSlot struct {
	addr   int
	data   uint64
	mask   uint64
	masked bool
}

// NewRegWritebackConnection constructs a register writeback connection.
// maskDst may be nil if the destination doesn't need an explicit
// masked-write flag.
func NewRegWritebackConnection(k *Kernel, name string, period, latency int64, addrSrc, dataSrc, addrDst, dataDst, maskDst *Port) *RegWritebackConnection {
	return &RegWritebackConnection{
		baseConnection: newBaseConnection(k, name, period, latency),
		addrSrc:        addrSrc,
		dataSrc:        dataSrc,
		addrDst:        addrDst,
		dataDst:        dataDst,
		maskDst:        maskDst,
	}
}

// Start implements Connection.
func (c *RegWritebackConnection) Start(t int64) error {
	if c.addrSrc == nil || c.dataSrc == nil || c.addrDst == nil || c.dataDst == nil {
		return c.wiringError("register writeback connection requires bound address/data source and destination ports")
	}
	return c.start(t, c)
}

func (c *RegWritebackConnection) propagate(k *Kernel) {
	if c.current == nil && c.next != nil {
		c.current = c.next
		c.next = nil
	}

	if c.addrSrc.HasData() && c.dataSrc.HasData() {
		addrPkt, addrOK := c.addrSrc.Read().(*RegReadPacket)
		dataPkt, dataOK := c.dataSrc.Read().(*RegWritePacket)
		if addrOK && dataOK {
			slot := &writebackSlot{addr: addrPkt.Index, data: dataPkt.Data, mask: dataPkt.Mask, masked: dataPkt.Masked}
			if c.current == nil {
				c.current = slot
			} else {
				c.next = slot
			}
		}
	}

	if c.current == nil {
		return
	}
	if c.addrDst.HasData() || c.dataDst.HasData() {
		return
	}

	slot := c.current
	c.current = nil
	deliver := func(k *Kernel) {
		c.addrDst.SetData(NewRegReadPacket(k.Now(), slot.addr))
		c.dataDst.SetData(&RegWritePacket{packetBase: packetBase{origin: k.Now(), valid: true}, Index: slot.addr, Data: slot.data, Mask: slot.mask, Masked: slot.masked})
		if c.maskDst != nil {
			c.maskDst.SetData(NewBoolPacket(k.Now(), slot.masked))
		}
	}
	if c.latency <= 0 {
		deliver(k)
	} else {
		c.scheduleDelivery(k, c.name+"/deliver", deliver)
	}
	c.recordTransfer(k)
}
