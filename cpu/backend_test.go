package cpu

import (
	"testing"

	"github.com/cyclesim/suprasim/kernel"
	"github.com/stretchr/testify/require"
)

func allLogical(uint8) OpClass { return ClassLogical }

func TestBackend_InstructionFlowsToRegisterFile(t *testing.T) {
	k := kernel.New()
	backend := NewBackend(k, "core", BackendConfig{
		ROBCapacity: 8,
		RetireWidth: 2,
		Dispatch: DispatchConfig{
			InstrQueueDepth: 8,
			DecodeWidth:     4,
			IssueWidth:      4,
			ForwardCapacity: 4,
			NumRegisters:    32,
			ReadPorts:       4,
		},
		RegisterFile: RegisterFileConfig{
			NumRegisters: 32,
			ReadPorts:    2,
			WritePorts:   2,
			BitWidth:     64,
			Forwarding:   true,
			Scoreboard:   true,
			Period:       1,
		},
		Latencies: NewClassLatencyTable(allLogical),
		Period:    1,
	})

	require.True(t, backend.Enqueue(&Instruction{ID: 1, Dst: 3, Imm: 0x77, GroupMul: 1}))
	require.NoError(t, backend.Start(0))

	k.Run(20)

	require.EqualValues(t, 0x77, backend.RegisterFile.Read(3))
	require.EqualValues(t, 1, backend.Retire.Retired)
}

func TestBackend_StopHaltsProgress(t *testing.T) {
	k := kernel.New()
	backend := NewBackend(k, "core", BackendConfig{
		ROBCapacity: 8,
		RetireWidth: 2,
		Dispatch: DispatchConfig{
			InstrQueueDepth: 8,
			DecodeWidth:     4,
			IssueWidth:      4,
			NumRegisters:    32,
			ReadPorts:       4,
		},
		RegisterFile: RegisterFileConfig{
			NumRegisters: 32,
			ReadPorts:    2,
			WritePorts:   2,
			BitWidth:     64,
			Period:       1,
		},
		Latencies: NewClassLatencyTable(allLogical),
		Period:    1,
	})

	require.NoError(t, backend.Start(0))
	backend.Stop()
	require.False(t, backend.Ticking.Enabled())

	require.True(t, backend.Enqueue(&Instruction{ID: 1, Dst: 3, Imm: 1, GroupMul: 1}))
	k.Run(20)

	require.Zero(t, backend.Retire.Retired, "a stopped backend must not keep ticking dispatch/execute/retire")
}
