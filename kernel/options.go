package kernel

import (
	"github.com/cyclesim/suprasim/diag"
	"github.com/cyclesim/suprasim/trace"
)

// Option configures a Kernel at construction, in the teacher's
// functional-options idiom (eventloop/options.go).
type Option func(*Kernel)

// WithTraceSink attaches the sink the kernel, and everything scheduled on
// it, reports structured trace records to. The default is trace.NopSink,
// so callers never need to nil-check a sink before use.
func WithTraceSink(sink trace.Sink) Option {
	return func(k *Kernel) {
		if sink != nil {
			k.sink = sink
		}
	}
}

// WithDiagLogger attaches the logger the kernel, and every connection it
// starts, reports operator-facing diagnostics to (temporal scheduling
// rejections, graph-wiring faults) — distinct from the trace sink above,
// which carries the simulation's own structured records. The default is
// diag.Nop(), so callers never need to nil-check a logger before use.
func WithDiagLogger(l *diag.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.diag = l
		}
	}
}

// WithStartTime sets the kernel's initial clock value. Almost every
// simulation wants the default of 0; this exists for harnesses that
// splice a kernel run onto an existing trace timeline.
func WithStartTime(t int64) Option {
	return func(k *Kernel) {
		k.now = t
	}
}
