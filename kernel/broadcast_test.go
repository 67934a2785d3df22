package kernel

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/cyclesim/suprasim/diag"
	"github.com/stretchr/testify/require"
)

func TestBroadcast_FirstSourceWins(t *testing.T) {
	k := New()
	srcA := NewPort("a", DirOut)
	srcB := NewPort("b", DirOut)
	dst1 := NewPort("d1", DirIn)
	dst2 := NewPort("d2", DirIn)
	conn := NewBroadcastConnection(k, "bc", 1, 0, []*Port{srcA, srcB}, []*Port{dst1, dst2})

	srcA.SetData(NewScalarPacket(0, 1))
	srcB.SetData(NewScalarPacket(0, 2))
	conn.propagate(k)

	p1, ok := dst1.Peek().(*ScalarPacket)
	require.True(t, ok)
	require.EqualValues(t, 1, p1.Value)
	p2, ok := dst2.Peek().(*ScalarPacket)
	require.True(t, ok)
	require.EqualValues(t, 1, p2.Value)
}

func TestBroadcast_DestinationsGetIndependentClones(t *testing.T) {
	k := New()
	src := NewPort("a", DirOut)
	dst1 := NewPort("d1", DirIn)
	dst2 := NewPort("d2", DirIn)
	conn := NewBroadcastConnection(k, "bc", 1, 0, []*Port{src}, []*Port{dst1, dst2})

	src.SetData(NewVectorPacket(0, 8, []uint64{1, 2, 3}))
	conn.propagate(k)

	v1 := dst1.Read().(*VectorPacket)
	v2 := dst2.Read().(*VectorPacket)
	v1.Elements[0] = 99
	require.EqualValues(t, 1, v2.Elements[0], "mutating one destination's packet must not affect the other's")
}

func TestBroadcast_NoSourceDataIsANoOp(t *testing.T) {
	k := New()
	src := NewPort("a", DirOut)
	dst := NewPort("d1", DirIn)
	conn := NewBroadcastConnection(k, "bc", 1, 0, []*Port{src}, []*Port{dst})
	conn.propagate(k)
	require.False(t, dst.HasData())
}

func TestBroadcast_RejectsMissingPorts(t *testing.T) {
	k := New()
	conn := NewBroadcastConnection(k, "bc", 1, 0, nil, nil)
	err := conn.Start(0)
	require.Error(t, err)
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
}

// TestBroadcast_WiringFaultReachesDiagLogger confirms a connection's
// wiring fault is reported through the kernel's operator-diagnostics
// logger — every connection variant's Start method routes through the
// same baseConnection.wiringError helper, so one variant is enough to
// cover the shared path.
func TestBroadcast_WiringFaultReachesDiagLogger(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	k := New(WithDiagLogger(diag.New(w, slog.LevelDebug)))
	conn := NewBroadcastConnection(k, "bc", 1, 0, nil, nil)
	startErr := conn.Start(0)
	require.Error(t, startErr)
	require.NoError(t, w.Close())

	scanner := bufio.NewScanner(r)
	require.True(t, scanner.Scan())
	var line map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
	require.Equal(t, "connection not wired", line["msg"])
	require.Equal(t, "bc", line["connection"])
}
