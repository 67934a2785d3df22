package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategory_StringNamesEveryDeclaredCategory(t *testing.T) {
	cases := map[Category]string{
		CategoryTick:           "tick",
		CategoryEvent:          "event",
		CategoryCompute:        "compute",
		CategoryMemoryRead:     "memory-read",
		CategoryMemoryWrite:    "memory-write",
		CategoryCommunication:  "communication",
		CategoryStateChange:    "state-change",
		CategoryInstruction:    "instruction",
		CategoryMAC:            "mac",
		CategoryRegisterAccess: "register-access",
		CategoryQueueOperation: "queue-operation",
		CategoryPropagate:      "propagate",
		CategoryCustom:         "custom",
	}
	for cat, want := range cases {
		require.Equal(t, want, cat.String())
	}
}

func TestCategory_StringFallsBackForUnknownValue(t *testing.T) {
	require.Equal(t, "category(99)", Category(99).String())
}
