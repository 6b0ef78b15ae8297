// Package tracing observes packets passing through pipes.
package tracing

import (
	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/pipe"
	"github.com/sarchlab/pipesim/sim"
)

// TransitRecord describes one packet passing through one pipe.
type TransitRecord struct {
	Pipe    string
	Packet  string
	Bytes   uint64
	Arrival sim.VTimeInPs
	Release sim.VTimeInPs
}

// A Tracer can collect transit traces.
type Tracer interface {
	Arrive(rec TransitRecord)
	Depart(rec TransitRecord)
}

// A NamedHookable is a hookable object with a name, typically a pipe.
type NamedHookable interface {
	sim.Named
	sim.Hookable
}

// CollectTrace lets the tracer collect transits from a domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	h := traceHook{name: domain.Name(), t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook turns pipe hook invocations into tracer calls.
type traceHook struct {
	name string
	t    Tracer
}

// Func calls the tracer interfaces when the hook is triggered.
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case pipe.HookPosPipeArrive:
		h.t.Arrive(h.record(ctx))
	case pipe.HookPosPipeDepart:
		h.t.Depart(h.record(ctx))
	}
}

func (h *traceHook) record(ctx sim.HookCtx) TransitRecord {
	pkt := ctx.Item.(network.Packet)
	transit := ctx.Detail.(pipe.Transit)

	name := h.name
	if named, ok := ctx.Domain.(sim.Named); ok {
		name = named.Name()
	}

	return TransitRecord{
		Pipe:    name,
		Packet:  pkt.ID(),
		Bytes:   pkt.Size(),
		Arrival: transit.Arrival,
		Release: transit.Release,
	}
}
