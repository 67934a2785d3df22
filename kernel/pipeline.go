package kernel

import "github.com/cyclesim/suprasim/diag"

// TransformFunc maps a stage's incoming packet to its outgoing one.
type TransformFunc func(in Packet) Packet

// StallFunc reports whether a stage must hold its current occupant
// rather than letting it advance this cycle, even though its latency
// has elapsed and downstream has room.
type StallFunc func(in Packet) bool

func identityTransform(in Packet) Packet { return in }

func neverStall(Packet) bool { return false }

// StageObject lets stage 0 be sourced by an arbitrary component instead
// of the pipeline's own input port — the pluggable-stage-object
// substitution point from spec.md §4.4.
type StageObject interface {
	Name() string
	// Next returns the next packet to inject into stage 0, or nil to
	// supply nothing this cycle.
	Next() Packet
}

// Stage is one pipeline stage: a transform, an optional stall predicate,
// and a fixed per-packet latency in cycles. Object, if set, replaces the
// input port as stage 0's source; it is ignored on every other stage.
type Stage struct {
	Transform TransformFunc
	Stall     StallFunc
	Latency   int64
	Object    StageObject

	occupant  Packet
	remaining int64
}

func (s *Stage) normalize() {
	if s.Transform == nil {
		s.Transform = identityTransform
	}
	if s.Stall == nil {
		s.Stall = neverStall
	}
	if s.Latency < 1 {
		s.Latency = 1
	}
}

// Pipeline is an N-stage ticking component. Each cycle, stages are
// examined from last to first: a stage whose latency has elapsed, whose
// downstream neighbor is empty, and which isn't stalled, hands its
// packet forward; everything else either holds or counts down. Stage 0
// is then refilled from its StageObject (if any) or the input port
// (spec.md §4.4).
type Pipeline struct {
	Ticking
	name   string
	kernel *Kernel
	input  *Port
	output *Port
	stages []*Stage
	event  *Event
}

// NewPipeline constructs a pipeline with the given stages, in order.
func NewPipeline(k *Kernel, name string, period int64, stages []*Stage) *Pipeline {
	for _, s := range stages {
		s.normalize()
	}
	return &Pipeline{
		Ticking: NewTicking(period),
		name:    name,
		kernel:  k,
		input:   NewPort(name+"/in", DirIn),
		output:  NewPort(name+"/out", DirOut),
		stages:  stages,
	}
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string { return p.name }

// Input returns the pipeline's input port, unused for stage-0 configurations
// that supply a StageObject instead.
func (p *Pipeline) Input() *Port { return p.input }

// Output returns the pipeline's output port.
func (p *Pipeline) Output() *Port { return p.output }

// Depth returns the number of stages.
func (p *Pipeline) Depth() int { return len(p.stages) }

// Occupied reports whether stage i currently holds a packet.
func (p *Pipeline) Occupied(i int) bool { return p.stages[i].occupant != nil }

// Start implements Connection-like lifecycle: schedules the first tick.
func (p *Pipeline) Start(t int64) error {
	if len(p.stages) == 0 {
		err := &WiringError{Connection: p.name, Reason: "pipeline requires at least one stage"}
		diag.WiringFault(p.kernel.Diag(), p.name, err)
		return err
	}
	return p.scheduleTick(t)
}

func (p *Pipeline) scheduleTick(t int64) error {
	e, err := p.kernel.ScheduleAt(t, PriorityComponent, EventTick, p.name+"/tick", func(k *Kernel) {
		if !p.Enabled() {
			return
		}
		next := p.advance(k.Now())
		p.tick(k)
		_ = p.scheduleTick(next)
	})
	if err != nil {
		return err
	}
	p.event = e
	return nil
}

// Stop halts the pipeline's self-rescheduling.
func (p *Pipeline) Stop() {
	p.Disable()
	if p.event != nil {
		p.event.Cancel()
	}
}

// Reset clears every stage and the input/output ports.
func (p *Pipeline) Reset() {
	for _, s := range p.stages {
		s.occupant = nil
		s.remaining = 0
	}
	p.input.Clear()
	p.output.Clear()
}

func (p *Pipeline) tick(k *Kernel) {
	n := len(p.stages)
	for i := n - 1; i >= 0; i-- {
		s := p.stages[i]
		if s.occupant == nil {
			continue
		}

		var downstreamFree bool
		if i == n-1 {
			downstreamFree = !p.output.HasData()
		} else {
			downstreamFree = p.stages[i+1].occupant == nil
		}

		ready := s.remaining <= 1
		if downstreamFree && ready && !s.Stall(s.occupant) {
			out := s.Transform(s.occupant)
			if i == n-1 {
				if out != nil {
					p.output.SetData(out)
				}
			} else if out != nil {
				p.stages[i+1].occupant = out
				p.stages[i+1].remaining = p.stages[i+1].Latency
			}
			s.occupant = nil
			s.remaining = 0
		} else if s.remaining > 1 {
			s.remaining--
		}
	}

	first := p.stages[0]
	if first.occupant != nil {
		return
	}
	var in Packet
	if first.Object != nil {
		in = first.Object.Next()
	} else if p.input.HasData() {
		in = p.input.Read()
	}
	if in != nil {
		first.occupant = in
		first.remaining = first.Latency
	}
}
