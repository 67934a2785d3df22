// Package trace defines the structured output contract the simulation core
// emits to, and a couple of minimal sink implementations. The core never
// writes a trace format itself (textual log, waveform, …) — that concern
// belongs entirely to whatever implements Sink.
package trace

import "fmt"

// Category classifies a Record. These are the categories spec'd as the
// core's trace output vocabulary, distinct from a scheduled Event's own
// (much smaller) category tag.
type Category int

const (
	CategoryTick Category = iota
	CategoryEvent
	CategoryCompute
	CategoryMemoryRead
	CategoryMemoryWrite
	CategoryCommunication
	CategoryStateChange
	CategoryInstruction
	CategoryMAC
	CategoryRegisterAccess
	CategoryQueueOperation
	CategoryPropagate
	CategoryCustom
)

// String returns the canonical lower-case name used in rendered records.
func (c Category) String() string {
	switch c {
	case CategoryTick:
		return "tick"
	case CategoryEvent:
		return "event"
	case CategoryCompute:
		return "compute"
	case CategoryMemoryRead:
		return "memory-read"
	case CategoryMemoryWrite:
		return "memory-write"
	case CategoryCommunication:
		return "communication"
	case CategoryStateChange:
		return "state-change"
	case CategoryInstruction:
		return "instruction"
	case CategoryMAC:
		return "mac"
	case CategoryRegisterAccess:
		return "register-access"
	case CategoryQueueOperation:
		return "queue-operation"
	case CategoryPropagate:
		return "propagate"
	case CategoryCustom:
		return "custom"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Record is one structured trace entry: (timestamp, category,
// component_name, event_name, details, priority) per spec.
type Record struct {
	Time      int64
	Category  Category
	Component string
	Event     string
	Details   map[string]any
	Priority  int
}

// Sink receives Records synchronously from within component and connection
// code. Implementations must not block the calling goroutine for long —
// the kernel is single-threaded and the sink is called inline from the
// event dispatch path.
type Sink interface {
	Record(r Record)
}

// NopSink discards every record. It is the default when no sink is
// configured, so components never need to nil-check.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Record) {}
