package cpu

import (
	"testing"

	"github.com/cyclesim/suprasim/kernel"
	"github.com/stretchr/testify/require"
)

// TestRetire_WAWResolution covers scenario S5: three completed entries
// all targeting register 7, with byte-enables 0xFF, 0x0F, 0xF0,
// resolve to 0x00, 0x0F, 0xF0 — each earlier write's mask is cleared
// wherever a later write in the same batch also writes.
func TestRetire_WAWResolution(t *testing.T) {
	rob := NewROB(8)
	e0, _ := rob.Dispatch(1, 1, 7, false, 0)
	e1, _ := rob.Dispatch(1, 2, 7, false, 0)
	e2, _ := rob.Dispatch(1, 3, 7, false, 0)
	e0.MarkComplete(0x11, 0xFF, false, 1)
	e1.MarkComplete(0x22, 0x0F, false, 1)
	e2.MarkComplete(0x33, 0xF0, false, 1)

	resolved := resolveWAW([]*ROBEntry{e0, e1, e2})
	require.Equal(t, []uint8{0x00, 0x0F, 0xF0}, resolved)
}

func TestRetire_DistinctRegistersDoNotInteract(t *testing.T) {
	rob := NewROB(8)
	e0, _ := rob.Dispatch(1, 1, 7, false, 0)
	e1, _ := rob.Dispatch(1, 2, 8, false, 0)
	e0.MarkComplete(1, 0xFF, false, 1)
	e1.MarkComplete(2, 0xFF, false, 1)

	resolved := resolveWAW([]*ROBEntry{e0, e1})
	require.Equal(t, []uint8{0xFF, 0xFF}, resolved)
}

func TestRetireStage_TrapTruncatesBatch(t *testing.T) {
	rob := NewROB(8)
	e0, _ := rob.Dispatch(1, 1, 1, false, 0)
	e1, _ := rob.Dispatch(1, 2, 2, false, 0)
	e2, _ := rob.Dispatch(1, 3, 3, false, 0)
	e0.MarkComplete(1, 0xFF, false, 1)
	e1.MarkComplete(2, 0xFF, true, 1) // traps
	e2.MarkComplete(3, 0xFF, false, 1)

	retire := NewRetireStage("retire", rob, 4)
	k := kernel.New()
	retire.Tick(k)

	require.EqualValues(t, 1, retire.Traps)
	require.EqualValues(t, 2, retire.Retired, "the trapping entry and everything before it retires; nothing after")
	require.EqualValues(t, 1, rob.Len(), "the post-trap entry must remain in the ROB")
}

func TestRetireStage_PublishesSurvivingWritesToBoundLanes(t *testing.T) {
	rob := NewROB(8)
	e0, _ := rob.Dispatch(1, 1, 5, false, 0)
	e0.MarkComplete(0xCAFE, 0xFF, false, 1)

	retire := NewRetireStage("retire", rob, 4)
	addr := kernel.NewPort("addr", kernel.DirOut)
	data := kernel.NewPort("data", kernel.DirOut)
	mask := kernel.NewPort("mask", kernel.DirOut)
	retire.BindLane(addr, data, mask)

	k := kernel.New()
	retire.Tick(k)

	addrPkt, ok := addr.Peek().(*kernel.RegReadPacket)
	require.True(t, ok)
	require.Equal(t, 5, addrPkt.Index)
	dataPkt, ok := data.Peek().(*kernel.RegWritePacket)
	require.True(t, ok)
	require.EqualValues(t, 0xCAFE, dataPkt.Data)
	require.EqualValues(t, ^uint64(0), dataPkt.Mask, "a full 0xFF byte-enable must publish a full mask")
	require.False(t, dataPkt.Masked)
}

// TestRetireStage_WAWBytesMergeIntoSingleRegisterWrite drives S5's three
// WAW entries through a real RegisterFile, bound to a single write
// lane. The register file applies at most one write per register per
// cycle (cpu/regfile.go), so the surviving disjoint byte-enables must
// reach it as one combined write rather than three separate ones.
func TestRetireStage_WAWBytesMergeIntoSingleRegisterWrite(t *testing.T) {
	rob := NewROB(8)
	e0, _ := rob.Dispatch(1, 1, 7, false, 0)
	e1, _ := rob.Dispatch(1, 2, 7, false, 0)
	e2, _ := rob.Dispatch(1, 3, 7, false, 0)
	e0.MarkComplete(0x1111111111111111, 0xFF, false, 1)
	e1.MarkComplete(0x2222222222222222, 0x0F, false, 1)
	e2.MarkComplete(0x3333333333333333, 0xF0, false, 1)

	retire := NewRetireStage("retire", rob, 4)
	k := kernel.New()
	rf := NewRegisterFile(k, "rf", RegisterFileConfig{NumRegisters: 32, ReadPorts: 1, WritePorts: 1, BitWidth: 64, Period: 1})
	retire.BindLane(rf.writeAddr[0], rf.writeData[0], rf.writeMask[0])

	require.NoError(t, rf.Start(0))
	retire.Tick(k)
	k.Run(1)

	require.EqualValues(t, 0x3333333322222222, rf.Read(7))
	require.EqualValues(t, 3, retire.Retired)
}
