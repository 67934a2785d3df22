package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacket_VectorCloneIsDeep(t *testing.T) {
	original := NewVectorPacket(0, 32, []uint64{1, 2, 3})
	cloned := original.Clone().(*VectorPacket)

	cloned.Elements[0] = 99
	require.EqualValues(t, 1, original.Elements[0], "cloning a VectorPacket must copy its element buffer")
}

func TestPacket_VectorConstructorCopiesInput(t *testing.T) {
	elements := []uint64{1, 2, 3}
	pkt := NewVectorPacket(0, 32, elements)
	elements[0] = 42
	require.EqualValues(t, 1, pkt.Elements[0], "the constructor must not alias the caller's slice")
}

func TestPacket_ScalarCloneIsIndependent(t *testing.T) {
	original := NewScalarPacket(0, 7)
	cloned := original.Clone().(*ScalarPacket)
	cloned.Value = 99
	require.EqualValues(t, 7, original.Value)
}

func TestPacket_RegWriteDefaultsToUnmasked(t *testing.T) {
	pkt := NewRegWritePacket(0, 3, 0xFF)
	require.False(t, pkt.Masked)
	require.Equal(t, ^uint64(0), pkt.Mask)
}

func TestPacket_ValidityGatesHasData(t *testing.T) {
	var zero ScalarPacket
	require.False(t, zero.Valid())

	built := NewScalarPacket(0, 1)
	require.True(t, built.Valid())
}
