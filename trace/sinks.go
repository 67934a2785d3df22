package trace

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// SliceSink accumulates every Record it receives, in delivery order. It is
// the sink used by this module's own tests, and is a reasonable starting
// point for a harness that wants to post-process a run in memory.
type SliceSink struct {
	mu      sync.Mutex
	records []Record
}

// Record implements Sink.
func (s *SliceSink) Record(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// Records returns a copy of every record accumulated so far.
func (s *SliceSink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records accumulated so far.
func (s *SliceSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// WriterSink renders each Record as a single line of key=value pairs to an
// underlying io.Writer. It deliberately does not attempt any waveform or
// binary trace format — the spec treats that as the sink's own concern,
// external to the core.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w as a line-oriented trace sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Record implements Sink.
func (s *WriterSink) Record(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "t=%d category=%-14s component=%-16s event=%-20s priority=%d",
		r.Time, r.Category, r.Component, r.Event, r.Priority)
	if len(r.Details) > 0 {
		keys := make([]string, 0, len(r.Details))
		for k := range r.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(s.w, " %s=%v", k, r.Details[k])
		}
	}
	fmt.Fprintln(s.w)
}
