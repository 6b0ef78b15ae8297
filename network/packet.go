package network

import (
	"fmt"

	"github.com/sarchlab/pipesim/sim"
)

// Packet is the unit transported through the network. Elements that relay a
// packet must not modify it.
type Packet interface {
	// ID returns a unique identifier of the packet.
	ID() string

	// Size returns the packet size in bytes.
	Size() uint64

	// SendOn moves the packet to its next hop.
	SendOn()
}

// A PacketSink is anything a packet can be handed to.
type PacketSink interface {
	Name() string
	ReceivePacket(pkt Packet)
}

// A Route is the ordered list of sinks a packet visits.
type Route []PacketSink

// String lists the names of the sinks on the route.
func (r Route) String() string {
	s := ""
	for i, sink := range r {
		if i > 0 {
			s += ","
		}
		s += sink.Name()
	}

	return s
}

// RoutedPacket is a Packet that follows a precomputed Route.
type RoutedPacket struct {
	id        string
	flow      string
	size      uint64
	route     Route
	nextHop   int
	createdAt sim.VTimeInPs
}

// NewRoutedPacket creates a packet of the given size that will traverse the
// route. Call SendOn to inject it at the first hop.
func NewRoutedPacket(
	flow string,
	size uint64,
	route Route,
	createdAt sim.VTimeInPs,
) *RoutedPacket {
	return &RoutedPacket{
		id:        sim.GetIDGenerator().Generate(),
		flow:      flow,
		size:      size,
		route:     route,
		createdAt: createdAt,
	}
}

// ID returns the packet ID.
func (p *RoutedPacket) ID() string {
	return p.id
}

// Size returns the packet size in bytes.
func (p *RoutedPacket) Size() uint64 {
	return p.size
}

// Flow returns the name of the flow that created the packet.
func (p *RoutedPacket) Flow() string {
	return p.flow
}

// CreatedAt returns the time the packet was created.
func (p *RoutedPacket) CreatedAt() sim.VTimeInPs {
	return p.createdAt
}

// HopsTaken returns how many sinks the packet has been handed to.
func (p *RoutedPacket) HopsTaken() int {
	return p.nextHop
}

// Route returns the route of the packet.
func (p *RoutedPacket) Route() Route {
	return p.route
}

// SendOn hands the packet to the next sink on its route.
func (p *RoutedPacket) SendOn() {
	if p.nextHop >= len(p.route) {
		panic(fmt.Sprintf(
			"network: packet %s of flow %s sent beyond the end of its route",
			p.id, p.flow))
	}

	sink := p.route[p.nextHop]
	p.nextHop++
	sink.ReceivePacket(p)
}
