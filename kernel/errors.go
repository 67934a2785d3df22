package kernel

import "fmt"

// TemporalError reports that an event was scheduled at a time strictly
// earlier than the kernel's current time. The kernel rejects the
// schedule and the simulation continues; this is never fatal.
type TemporalError struct {
	Label     string
	Requested int64
	Current   int64
}

// Error implements the error interface.
func (e *TemporalError) Error() string {
	return fmt.Sprintf("kernel: cannot schedule %q at time %d: current time is %d", e.Label, e.Requested, e.Current)
}

// WiringError reports a graph-wiring fault: a connection was started
// without all of its required ports bound. Fatal at start-up.
type WiringError struct {
	Connection string
	Reason     string
}

// Error implements the error interface.
func (e *WiringError) Error() string {
	return fmt.Sprintf("kernel: connection %q not wired: %s", e.Connection, e.Reason)
}
