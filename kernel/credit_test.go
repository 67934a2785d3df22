package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredit_ExhaustionStallsSource(t *testing.T) {
	k := New()
	source := NewPort("src", DirOut)
	destination := NewPort("dst", DirIn)
	creditPort := NewPort("credit", DirIn)
	conn := NewCreditConnection(k, "credit-conn", 1, 0, source, destination, creditPort, 4, 0)

	source.SetData(NewScalarPacket(0, 1))
	conn.propagate(k)

	require.Zero(t, conn.Depth(), "no credit available, packet must not enqueue")
	require.EqualValues(t, 1, conn.StallsNoCredit)
	require.True(t, source.HasData(), "source packet is retained across the stall")
}

func TestCredit_ReplenishedByCreditPort(t *testing.T) {
	k := New()
	source := NewPort("src", DirOut)
	destination := NewPort("dst", DirIn)
	creditPort := NewPort("credit", DirIn)
	conn := NewCreditConnection(k, "credit-conn", 1, 0, source, destination, creditPort, 4, 0)

	creditPort.SetData(NewScalarPacket(0, 2))
	source.SetData(NewScalarPacket(0, 42))
	conn.propagate(k)

	require.EqualValues(t, 1, conn.Credits())
	require.EqualValues(t, 1, conn.Depth())
	require.False(t, source.HasData())
}

func TestCredit_BackPressureWhenFifoFull(t *testing.T) {
	k := New()
	source := NewPort("src", DirOut)
	destination := NewPort("dst", DirIn)
	creditPort := NewPort("credit", DirIn)
	conn := NewCreditConnection(k, "credit-conn", 1, 0, source, destination, creditPort, 1, 10)

	source.SetData(NewScalarPacket(0, 1))
	conn.propagate(k)
	require.EqualValues(t, 1, conn.Depth())

	source.SetData(NewScalarPacket(0, 2))
	destination.SetData(NewScalarPacket(0, 0)) // occupy destination so delivery can't drain the FIFO
	conn.propagate(k)

	require.EqualValues(t, 1, conn.Depth(), "FIFO at capacity, second packet can't enqueue")
	require.EqualValues(t, 1, conn.StallsBackPressure)
	require.EqualValues(t, 1, conn.StallsDestNotReady)
}

func TestCredit_RejectsMissingCreditPort(t *testing.T) {
	k := New()
	source := NewPort("src", DirOut)
	destination := NewPort("dst", DirIn)
	conn := NewCreditConnection(k, "credit-conn", 1, 0, source, destination, nil, 4, 0)
	err := conn.Start(0)
	require.Error(t, err)
}
