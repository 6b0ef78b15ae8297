package topology

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/pipe"
	"github.com/sarchlab/pipesim/sim"
	"github.com/sarchlab/pipesim/simulation"
)

// Built holds the elements created from a network description.
type Built struct {
	Nodes   map[string]*network.Node
	Hosts   map[string]*network.Host
	Pipes   map[string]*pipe.Comp
	Routes  map[string]network.Route
	Traffic *TrafficGenerator
}

// Build creates the pipes, hosts and traffic of the network inside the
// simulation. Every link becomes two pipes, one per direction, each bound to
// the node it carries traffic away from. Flows follow shortest paths in hops.
// When several shortest paths exist, flows are spread over them in the order
// they are declared.
func Build(s *simulation.Simulation, n *Network) (*Built, error) {
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network %s: %w", n.Name, err)
	}

	b := &Built{
		Nodes:   make(map[string]*network.Node),
		Hosts:   make(map[string]*network.Host),
		Pipes:   make(map[string]*pipe.Comp),
		Routes:  make(map[string]network.Route),
		Traffic: NewTrafficGenerator("traffic", s.GetEngine()),
	}

	for _, nd := range n.Nodes {
		role, _ := network.ParseRole(nd.Role)
		node := network.NewNode(nd.Name, role)
		b.Nodes[nd.Name] = node

		if role == network.RoleHost {
			h := network.NewHost(node, s.GetEngine())
			b.Hosts[nd.Name] = h
			s.RegisterHost(h)
		}
	}

	for _, l := range n.Links {
		delay, _ := sim.ParseDuration(l.Delay)

		for _, dir := range [][2]string{{l.A, l.B}, {l.B, l.A}} {
			p, err := s.NewPipe(PipeName(dir[0], dir[1]), delay)
			if err != nil {
				return nil, err
			}

			p.SetNode(b.Nodes[dir[0]])
			b.Pipes[p.Name()] = p
		}
	}

	router := newRouter(n)
	for i, fd := range n.Flows {
		route, err := b.route(router, fd, i)
		if err != nil {
			return nil, err
		}

		name := flowName(fd, i)

		start, _ := parseOptionalDuration(fd.Start)
		interval, _ := parseOptionalDuration(fd.Interval)

		b.Routes[name] = route
		b.Traffic.AddFlow(Flow{
			Name:     name,
			Route:    route,
			Packets:  fd.Packets,
			Start:    sim.VTimeInPs(0).Add(start),
			Interval: interval,
			MinSize:  fd.MinSize,
			MaxSize:  fd.MaxSize,
		})
	}

	s.ExpectPackets(b.Traffic.TotalPackets())

	return b, nil
}

func (b *Built) route(r *router, fd FlowDesc, i int) (network.Route, error) {
	hops := r.route(fd.Src, fd.Dst, i)
	if hops == nil {
		return nil, fmt.Errorf("flow %s: no path from %s to %s",
			flowName(fd, i), fd.Src, fd.Dst)
	}

	route := make(network.Route, 0, len(hops))
	for j := 1; j < len(hops); j++ {
		route = append(route, b.Pipes[PipeName(hops[j-1], hops[j])])
	}
	route = append(route, b.Hosts[fd.Dst])

	return route, nil
}

// router computes shortest paths over the link graph.
type router struct {
	ids   map[string]int64
	names []string
	g     *simple.WeightedUndirectedGraph
	trees map[int64]path.ShortestAlts
}

func newRouter(n *Network) *router {
	r := &router{
		ids:   make(map[string]int64),
		g:     simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		trees: make(map[int64]path.ShortestAlts),
	}

	for i, nd := range n.Nodes {
		r.ids[nd.Name] = int64(i)
		r.names = append(r.names, nd.Name)
		r.g.AddNode(simple.Node(i))
	}

	for _, l := range n.Links {
		r.g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(r.ids[l.A]),
			T: simple.Node(r.ids[l.B]),
			W: 1,
		})
	}

	return r
}

// route returns the node names on the k-th shortest path from src to dst,
// counting modulo the number of shortest paths. It returns nil when dst is
// unreachable.
func (r *router) route(src, dst string, k int) []string {
	from := r.ids[src]

	tree, ok := r.trees[from]
	if !ok {
		tree = path.DijkstraAllFrom(simple.Node(from), r.g)
		r.trees[from] = tree
	}

	paths, weight := tree.AllTo(r.ids[dst])
	if len(paths) == 0 || math.IsInf(weight, 1) {
		return nil
	}

	named := make([][]string, 0, len(paths))
	for _, p := range paths {
		named = append(named, r.nodeNames(p))
	}

	sort.Slice(named, func(i, j int) bool {
		return strings.Join(named[i], ",") < strings.Join(named[j], ",")
	})

	return named[k%len(named)]
}

func (r *router) nodeNames(nodes []graph.Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = r.names[n.ID()]
	}

	return names
}
