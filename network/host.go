package network

import (
	"github.com/sarchlab/pipesim/sim"
	log "github.com/sirupsen/logrus"
)

// Delivery records a packet reaching its destination host.
type Delivery struct {
	Packet Packet
	Time   sim.VTimeInPs
}

// HookPosHostDeliver marks a packet reaching a host. The hook item is the
// packet and the detail is the Delivery.
var HookPosHostDeliver = &sim.HookPos{Name: "Host Deliver"}

// Host is a terminal sink. It records every packet delivered to it.
type Host struct {
	sim.HookableBase

	node       *Node
	timeTeller sim.TimeTeller
	deliveries []Delivery
	bytes      uint64
}

// NewHost creates a host sink for the given node.
func NewHost(node *Node, timeTeller sim.TimeTeller) *Host {
	return &Host{node: node, timeTeller: timeTeller}
}

// Name returns the name of the host node.
func (h *Host) Name() string {
	return h.node.Name()
}

// Node returns the topology node of the host.
func (h *Host) Node() *Node {
	return h.node
}

// ReceivePacket consumes the packet.
func (h *Host) ReceivePacket(pkt Packet) {
	now := h.timeTeller.CurrentTime()

	d := Delivery{Packet: pkt, Time: now}
	h.deliveries = append(h.deliveries, d)
	h.bytes += pkt.Size()

	log.WithFields(log.Fields{
		"host":     h.node.Name(),
		"packet":   pkt.ID(),
		"sim_time": uint64(now),
	}).Trace("packet delivered")

	if h.NumHooks() > 0 {
		h.InvokeHook(sim.HookCtx{
			Domain: h,
			Pos:    HookPosHostDeliver,
			Item:   pkt,
			Detail: d,
		})
	}
}

// Deliveries returns the packets received so far, in arrival order.
func (h *Host) Deliveries() []Delivery {
	return h.deliveries
}

// BytesReceived returns the total size of the packets received.
func (h *Host) BytesReceived() uint64 {
	return h.bytes
}
