package cpu

import (
	"testing"

	"github.com/cyclesim/suprasim/kernel"
	"github.com/stretchr/testify/require"
)

type fixedLatency struct{ latency int64 }

func (f fixedLatency) Latency(uint8) int64 { return f.latency }

func TestExecuteStage_CompletesAfterLatencyElapses(t *testing.T) {
	k := kernel.New()
	x := NewExecuteStage("x", fixedLatency{latency: 3})
	rob := NewROB(4)
	entry, _ := rob.Dispatch(1, 1, 7, false, 0)
	uop := kernel.NewUopPacket(0, 1, 1, 0, 1, 2, 7, 0, entry.Index)

	x.Accept(uop, entry)

	x.Tick(k) // remaining 2
	require.False(t, entry.Complete)
	x.Tick(k) // remaining 1
	require.False(t, entry.Complete)
	x.Tick(k) // remaining 0: completes
	require.True(t, entry.Complete)
	require.EqualValues(t, 1, x.Completed)
}

func TestExecuteStage_ForwardsOnCompletion(t *testing.T) {
	k := kernel.New()
	x := NewExecuteStage("x", fixedLatency{latency: 1})
	rob := NewROB(4)
	entry, _ := rob.Dispatch(1, 1, 7, false, 0)
	uop := kernel.NewUopPacket(0, 1, 1, 0, 1, 2, 7, 5, entry.Index)

	var forwardedReg int
	var forwardedData uint64
	x.SetForwardSink(func(reg int, data uint64) {
		forwardedReg = reg
		forwardedData = data
	})

	x.Accept(uop, entry)
	x.Tick(k)

	require.Equal(t, 7, forwardedReg)
	require.Equal(t, entry.Data, forwardedData)
}

func TestExecuteStage_MultipleInFlightAtDifferentLatencies(t *testing.T) {
	k := kernel.New()
	table := NewClassLatencyTable(func(opcode uint8) OpClass {
		if opcode == 1 {
			return ClassDivide8
		}
		return ClassLogical
	})
	x := NewExecuteStage("x", table)
	rob := NewROB(4)

	shortEntry, _ := rob.Dispatch(1, 1, 1, false, 0)
	longEntry, _ := rob.Dispatch(1, 2, 2, false, 0)
	x.Accept(kernel.NewUopPacket(0, 1, 1, 0, 0, 0, 1, 0, shortEntry.Index), shortEntry)
	x.Accept(kernel.NewUopPacket(0, 2, 1, 1, 0, 0, 2, 0, longEntry.Index), longEntry)

	x.Tick(k)
	require.True(t, shortEntry.Complete, "ClassLogical latency is 1 cycle")
	require.False(t, longEntry.Complete, "ClassDivide8 latency is 17 cycles")
}
