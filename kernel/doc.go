// Package kernel implements the simulation core: a single-threaded,
// priority-tiered, deterministic discrete-event scheduler, together with
// the port/component/connection graph and the pipeline abstraction that
// sit on top of it.
//
// # Architecture
//
// The scheduler is built around a [Kernel] core that owns one ready
// queue of [Event] values, ordered by (time, priority, sequence). Every
// [Component] and [Connection] in a simulation is "ticking": it schedules
// its own next activation as part of handling the current one, so the
// Kernel itself never needs to know what kind of component it's driving.
//
// # Ordering
//
// Event dispatch order within a cycle is fixed by priority tier, highest
// first:
//
//  1. PriorityConnection — connection propagate/delivery
//  2. PriorityComponent  — component ticks
//  3. PriorityDelivery   — latency-delayed port writes
//
// Ties after (time, priority) are broken by scheduling sequence, giving
// byte-identical trace output across runs of the same configuration
// (spec's determinism property).
//
// # Concurrency
//
// The Kernel owns the one thread of control. No component may block,
// sleep, or run on its own goroutine; long operations are decomposed
// into additional scheduled events instead. This is a deliberate
// departure from the teacher this package is modeled on
// (github.com/joeycumines/go-eventloop), which is a highly concurrent,
// lock-free, real-time event loop — see DESIGN.md for why that
// concurrency machinery was not carried over.
//
// # Usage
//
//	k := kernel.New(kernel.WithTraceSink(trace.NewWriterSink(os.Stdout)))
//	pipe := kernel.NewPipeline(k, "decode", 1, stages)
//	pipe.Start(0)
//	k.Run(1000)
package kernel
