package diag

import (
	"bufio"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNop_DiscardsWithoutPanicking(t *testing.T) {
	l := Nop()
	require.NotPanics(t, func() {
		ConfigRejected(l, errors.New("boom"))
		WiringFault(l, "fifo0->fifo1", errors.New("destination not ready"))
		TemporalRejection(l, "retire/tick", errors.New("scheduled in the past"))
	})
}

func TestConfigRejected_WritesErrorLevelRecord(t *testing.T) {
	line := captureOneLine(t, func(l *Logger) {
		ConfigRejected(l, errors.New("NumRegisters out of range"))
	})

	require.Equal(t, "configuration rejected", line["msg"])
	require.Equal(t, "NumRegisters out of range", line["err"])
}

func TestWiringFault_IncludesConnectionName(t *testing.T) {
	line := captureOneLine(t, func(l *Logger) {
		WiringFault(l, "fifo0->fifo1", errors.New("destination not ready"))
	})

	require.Equal(t, "connection not wired", line["msg"])
	require.Equal(t, "fifo0->fifo1", line["connection"])
}

// captureOneLine runs fn against a Logger writing to a pipe, and decodes
// the single JSON line it produces.
func captureOneLine(t *testing.T, fn func(l *Logger)) map[string]any {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	l := New(w, slog.LevelDebug)
	fn(l)
	require.NoError(t, w.Close())

	scanner := bufio.NewScanner(r)
	require.True(t, scanner.Scan())
	var line map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
	return line
}
