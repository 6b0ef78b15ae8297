package topology

import (
	"fmt"

	"github.com/iti/rngstream"
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// Flow is a sequence of packets injected into one route.
type Flow struct {
	Name     string
	Route    network.Route
	Packets  int
	Start    sim.VTimeInPs
	Interval sim.Duration
	MinSize  uint64
	MaxSize  uint64
}

type flowState struct {
	Flow

	rng  *rngstream.RngStream
	sent int
}

func (f *flowState) nextSize() uint64 {
	if f.MinSize == f.MaxSize {
		return f.MinSize
	}

	span := f.MaxSize - f.MinSize + 1
	size := f.MinSize + uint64(f.rng.RandU01()*float64(span))
	if size > f.MaxSize {
		size = f.MaxSize
	}

	return size
}

type injectEvent struct {
	*sim.EventBase
	flow *flowState
}

// TrafficGenerator injects the packets of its flows into the network. Packet
// sizes are drawn from one random stream per flow.
type TrafficGenerator struct {
	name   string
	engine sim.EventScheduler
	flows  []*flowState

	injectedPackets uint64
	injectedBytes   uint64
}

// NewTrafficGenerator creates a TrafficGenerator that schedules its events on
// the engine.
func NewTrafficGenerator(name string, engine sim.EventScheduler) *TrafficGenerator {
	return &TrafficGenerator{name: name, engine: engine}
}

// Name returns the name of the generator.
func (g *TrafficGenerator) Name() string {
	return g.name
}

// AddFlow registers a flow. Flows must be added before Start.
func (g *TrafficGenerator) AddFlow(f Flow) {
	if len(f.Route) == 0 {
		panic(fmt.Sprintf("flow %s has an empty route", f.Name))
	}

	g.flows = append(g.flows, &flowState{
		Flow: f,
		rng:  rngstream.New(g.name + "." + f.Name),
	})
}

// TotalPackets returns the number of packets the generator will inject.
func (g *TrafficGenerator) TotalPackets() uint64 {
	total := uint64(0)
	for _, f := range g.flows {
		total += uint64(f.Packets)
	}

	return total
}

// Injected returns the number of packets and bytes injected so far.
func (g *TrafficGenerator) Injected() (packets, bytes uint64) {
	return g.injectedPackets, g.injectedBytes
}

// Start schedules the first packet of every flow.
func (g *TrafficGenerator) Start() {
	for _, f := range g.flows {
		if f.Packets > 0 {
			g.scheduleNext(f, f.Start)
		}
	}
}

func (g *TrafficGenerator) scheduleNext(f *flowState, t sim.VTimeInPs) {
	g.engine.Schedule(injectEvent{
		EventBase: sim.NewEventBase(t, g),
		flow:      f,
	})
}

// Handle injects one packet.
func (g *TrafficGenerator) Handle(e sim.Event) error {
	evt, ok := e.(injectEvent)
	if !ok {
		return fmt.Errorf("traffic generator %s: cannot handle event of type %T",
			g.name, e)
	}

	f := evt.flow
	pkt := network.NewRoutedPacket(f.Name, f.nextSize(), f.Route, evt.Time())
	f.sent++
	g.injectedPackets++
	g.injectedBytes += pkt.Size()

	log.WithFields(log.Fields{
		"flow":     f.Name,
		"packet":   pkt.ID(),
		"bytes":    pkt.Size(),
		"sim_time": uint64(evt.Time()),
	}).Trace("packet injected")

	if f.sent < f.Packets {
		g.scheduleNext(f, evt.Time().Add(f.Interval))
	}

	pkt.SendOn()

	return nil
}
