// Package pipe provides a fixed-latency link model. A pipe holds every packet
// it receives for the same propagation delay and then hands it to the next
// hop, preserving arrival order.
package pipe

import (
	"fmt"

	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
	log "github.com/sirupsen/logrus"
)

// HookPosPipeArrive marks a packet entering a pipe. The hook item is the
// packet and the detail is a Transit.
var HookPosPipeArrive = &sim.HookPos{Name: "Pipe Arrive"}

// HookPosPipeDepart marks a packet leaving a pipe, before it is forwarded.
// The hook item is the packet and the detail is a Transit.
var HookPosPipeDepart = &sim.HookPos{Name: "Pipe Depart"}

// HookPosPipeGrow marks the in-flight buffer doubling. The detail is a
// Growth.
var HookPosPipeGrow = &sim.HookPos{Name: "Pipe Grow"}

// HookPosPipeIdleDispatch marks a release event that found the pipe empty.
var HookPosPipeIdleDispatch = &sim.HookPos{Name: "Pipe Idle Dispatch"}

// Transit describes the passage of one packet through a pipe.
type Transit struct {
	Arrival sim.VTimeInPs
	Release sim.VTimeInPs
}

// Growth describes a resize of the in-flight buffer.
type Growth struct {
	OldCapacity int
	NewCapacity int
}

// Scheduler is the part of the simulation engine a pipe needs.
type Scheduler interface {
	sim.TimeTeller
	sim.EventScheduler
}

// A LinkRecorder accumulates the bytes released through each link.
type LinkRecorder interface {
	Record(link string, bytes uint64)
}

// releaseEvent asks the pipe to release its head packet. A pipe never has
// more than one release event outstanding, so it owns a single instance and
// reschedules it. Time is only valid until Handle returns; after that it is
// the time of the next release, if any.
type releaseEvent struct {
	time sim.VTimeInPs
	pipe *Comp
}

func (e *releaseEvent) Time() sim.VTimeInPs {
	return e.time
}

func (e *releaseEvent) Handler() sim.Handler {
	return e.pipe
}

// Comp is a pipe: a pure delay line between two network elements.
type Comp struct {
	sim.HookableBase

	name       string
	engine     Scheduler
	delay      sim.Duration
	queue      delayQueue
	next       network.PacketSink
	node       *network.Node
	ledger     LinkRecorder
	classifier network.Classifier
	strict     bool

	armed   bool
	release releaseEvent
}

// Name returns the name of the pipe.
func (c *Comp) Name() string {
	return c.name
}

// ForceName overrides the name of the pipe.
func (c *Comp) ForceName(name string) {
	c.name = name
}

// Delay returns the propagation delay of the pipe.
func (c *Comp) Delay() sim.Duration {
	return c.delay
}

// SetNext sets the sink that receives released packets. When no sink is set,
// released packets forward themselves with SendOn.
func (c *Comp) SetNext(next network.PacketSink) {
	c.next = next
}

// Next returns the sink that receives released packets.
func (c *Comp) Next() network.PacketSink {
	return c.next
}

// SetNode binds the pipe to the node whose outgoing traffic it carries. The
// node is only consulted for link accounting. Passing nil unbinds the pipe.
func (c *Comp) SetNode(node *network.Node) {
	c.node = node
}

// Node returns the node the pipe is bound to, or nil.
func (c *Comp) Node() *network.Node {
	return c.node
}

// InFlight returns the number of packets held by the pipe.
func (c *Comp) InFlight() int {
	return c.queue.len()
}

// Capacity returns the number of slots in the in-flight buffer.
func (c *Comp) Capacity() int {
	return c.queue.capacity()
}

// NextReleaseTime returns the release time of the oldest packet in flight.
func (c *Comp) NextReleaseTime() (sim.VTimeInPs, bool) {
	rec, ok := c.queue.peek()
	return rec.releaseTime, ok
}

// ReceivePacket puts the packet in flight. It leaves the pipe at the current
// time plus the pipe delay.
func (c *Comp) ReceivePacket(pkt network.Packet) {
	now := c.engine.CurrentTime()
	releaseTime := now.Add(c.delay)

	if c.queue.len() == 0 && !c.armed {
		c.arm(releaseTime)
	}

	oldCap := c.queue.push(delayRecord{releaseTime: releaseTime, pkt: pkt})

	if c.NumHooks() == 0 {
		return
	}

	if oldCap > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosPipeGrow,
			Detail: Growth{OldCapacity: oldCap, NewCapacity: c.queue.capacity()},
		})
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPipeArrive,
		Item:   pkt,
		Detail: Transit{Arrival: now, Release: releaseTime},
	})
}

// Handle releases the packet at the head of the pipe.
func (c *Comp) Handle(evt sim.Event) error {
	switch evt.(type) {
	case *releaseEvent:
		c.handleRelease(evt.Time())
	default:
		return fmt.Errorf("pipe %s: cannot handle event of type %T", c.name, evt)
	}

	return nil
}

func (c *Comp) handleRelease(now sim.VTimeInPs) {
	c.armed = false

	head, ok := c.queue.peek()
	if !ok {
		c.violation(HookPosPipeIdleDispatch, "release event on an idle pipe")
		return
	}

	if head.releaseTime > now {
		c.violation(nil, fmt.Sprintf(
			"release event at %d before head release time %d",
			now, head.releaseTime))
		c.arm(head.releaseTime)

		return
	}

	rec, _ := c.queue.pop()
	pkt := rec.pkt

	if c.ledger != nil && c.classifier.Tracks(c.node) {
		c.ledger.Record(c.node.Name(), pkt.Size())
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosPipeDepart,
			Item:   pkt,
			Detail: Transit{
				Arrival: rec.releaseTime - sim.VTimeInPs(c.delay),
				Release: rec.releaseTime,
			},
		})
	}

	if c.next != nil {
		c.next.ReceivePacket(pkt)
	} else {
		pkt.SendOn()
	}

	if next, ok := c.queue.peek(); ok && !c.armed {
		c.arm(next.releaseTime)
	}
}

func (c *Comp) arm(t sim.VTimeInPs) {
	if c.armed {
		c.violation(nil, "arming a pipe that is already armed")
		return
	}

	c.armed = true
	c.release.time = t
	c.engine.Schedule(&c.release)
}

// violation reports a broken scheduling invariant. Strict pipes panic; other
// pipes log a warning and carry on.
func (c *Comp) violation(pos *sim.HookPos, msg string) {
	if c.strict {
		panic(fmt.Sprintf("pipe %s: %s", c.name, msg))
	}

	log.WithFields(log.Fields{
		"pipe":     c.name,
		"sim_time": uint64(c.engine.CurrentTime()),
	}).Warn(msg)

	if pos != nil && c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{Domain: c, Pos: pos})
	}
}
