package topology

import (
	"fmt"

	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// LeafSpineConfig sets the shape of a generated leaf-spine network.
type LeafSpineConfig struct {
	Spines       int
	Leaves       int
	HostsPerLeaf int
	Delay        sim.Duration

	// When PacketsPerFlow is positive, every host sends one flow to the host
	// with the same index on the next leaf.
	PacketsPerFlow int
	Interval       sim.Duration
	MinSize        uint64
	MaxSize        uint64
}

// DefaultLeafSpineConfig returns a small two-tier network.
func DefaultLeafSpineConfig() LeafSpineConfig {
	return LeafSpineConfig{
		Spines:         4,
		Leaves:         4,
		HostsPerLeaf:   4,
		Delay:          sim.Microsecond,
		PacketsPerFlow: 100,
		Interval:       sim.Microsecond,
		MinSize:        64,
		MaxSize:        1500,
	}
}

// SpineName returns the name of the i-th spine. Spines are named as core
// switches so that the name based classifier tracks them too.
func SpineName(i int) string {
	return fmt.Sprintf("%s%d", network.DefaultCoreSubstring, i)
}

// LeafName returns the name of the i-th leaf switch.
func LeafName(i int) string {
	return fmt.Sprintf("Switch_Edge_%d", i)
}

// HostName returns the name of the j-th host under the i-th leaf.
func HostName(leaf, j int) string {
	return fmt.Sprintf("Host_%d_%d", leaf, j)
}

// LeafSpine generates a network in which every leaf connects to every spine
// and every host connects to one leaf.
func LeafSpine(c LeafSpineConfig) (*Network, error) {
	if c.Spines <= 0 || c.Leaves <= 0 || c.HostsPerLeaf <= 0 {
		return nil, fmt.Errorf(
			"leaf-spine needs at least one spine, leaf and host, got %d/%d/%d",
			c.Spines, c.Leaves, c.HostsPerLeaf)
	}

	if c.Delay < 0 {
		return nil, fmt.Errorf("negative link delay %s", c.Delay)
	}

	n := &Network{
		Name: fmt.Sprintf("leafspine-%dx%dx%d", c.Spines, c.Leaves, c.HostsPerLeaf),
	}
	delay := c.Delay.String()

	for s := 0; s < c.Spines; s++ {
		n.Nodes = append(n.Nodes, NodeDesc{Name: SpineName(s), Role: network.RoleCore.String()})
	}

	for l := 0; l < c.Leaves; l++ {
		n.Nodes = append(n.Nodes, NodeDesc{Name: LeafName(l), Role: network.RoleEdge.String()})

		for s := 0; s < c.Spines; s++ {
			n.Links = append(n.Links, LinkDesc{A: LeafName(l), B: SpineName(s), Delay: delay})
		}

		for h := 0; h < c.HostsPerLeaf; h++ {
			n.Nodes = append(n.Nodes, NodeDesc{Name: HostName(l, h), Role: network.RoleHost.String()})
			n.Links = append(n.Links, LinkDesc{A: HostName(l, h), B: LeafName(l), Delay: delay})
		}
	}

	if c.PacketsPerFlow > 0 && c.Leaves > 1 {
		addShiftFlows(n, c)
	}

	return n, nil
}

func addShiftFlows(n *Network, c LeafSpineConfig) {
	for l := 0; l < c.Leaves; l++ {
		for h := 0; h < c.HostsPerLeaf; h++ {
			src := HostName(l, h)
			dst := HostName((l+1)%c.Leaves, h)

			n.Flows = append(n.Flows, FlowDesc{
				Name:     src + "=>" + dst,
				Src:      src,
				Dst:      dst,
				Packets:  c.PacketsPerFlow,
				Interval: c.Interval.String(),
				MinSize:  c.MinSize,
				MaxSize:  c.MaxSize,
			})
		}
	}
}
