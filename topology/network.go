// Package topology describes simulated networks, builds them out of pipes
// and hosts, and generates the traffic that runs over them.
package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pipesim/network"
	"github.com/sarchlab/pipesim/sim"
)

// Network is the serializable description of a network.
type Network struct {
	Name  string     `yaml:"name" json:"name"`
	Nodes []NodeDesc `yaml:"nodes" json:"nodes"`
	Links []LinkDesc `yaml:"links" json:"links"`
	Flows []FlowDesc `yaml:"flows,omitempty" json:"flows,omitempty"`
}

// NodeDesc describes a host or a switch.
type NodeDesc struct {
	Name string `yaml:"name" json:"name"`
	Role string `yaml:"role" json:"role"`
}

// LinkDesc describes a bidirectional link. Each direction becomes one pipe.
type LinkDesc struct {
	A     string `yaml:"a" json:"a"`
	B     string `yaml:"b" json:"b"`
	Delay string `yaml:"delay" json:"delay"`
}

// FlowDesc describes a sequence of packets sent from one host to another.
type FlowDesc struct {
	Name     string `yaml:"name" json:"name"`
	Src      string `yaml:"src" json:"src"`
	Dst      string `yaml:"dst" json:"dst"`
	Packets  int    `yaml:"packets" json:"packets"`
	Start    string `yaml:"start,omitempty" json:"start,omitempty"`
	Interval string `yaml:"interval,omitempty" json:"interval,omitempty"`
	MinSize  uint64 `yaml:"min_size" json:"min_size"`
	MaxSize  uint64 `yaml:"max_size" json:"max_size"`
}

// ReadNetwork deserializes a network description. If dict is empty, the file
// whose name is given is read to acquire it. Files ending in .json are read
// as JSON and everything else as YAML.
func ReadNetwork(filename string, dict []byte) (*Network, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	n := Network{}

	if isJSON(filename) {
		err = json.Unmarshal(dict, &n)
	} else {
		err = yaml.Unmarshal(dict, &n)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing network %s: %w", filename, err)
	}

	return &n, nil
}

// WriteToFile stores the network description in the named file, as JSON or
// YAML depending on the extension.
func (n *Network) WriteToFile(filename string) error {
	var (
		bytes []byte
		err   error
	)

	if isJSON(filename) {
		bytes, err = json.MarshalIndent(n, "", "\t")
	} else {
		bytes, err = yaml.Marshal(n)
	}

	if err != nil {
		return err
	}

	return os.WriteFile(filename, bytes, 0o644)
}

func isJSON(filename string) bool {
	ext := path.Ext(filename)
	return ext == ".json" || ext == ".JSON"
}

// Validate reports every problem of the description at once.
func (n *Network) Validate() error {
	var result error

	roles := make(map[string]network.Role)
	for _, node := range n.Nodes {
		if node.Name == "" {
			result = multierror.Append(result, fmt.Errorf("node with empty name"))
			continue
		}

		if _, dup := roles[node.Name]; dup {
			result = multierror.Append(result,
				fmt.Errorf("node %s defined more than once", node.Name))
			continue
		}

		role, err := network.ParseRole(node.Role)
		if err != nil {
			result = multierror.Append(result,
				fmt.Errorf("node %s: %w", node.Name, err))
		}

		roles[node.Name] = role
	}

	links := make(map[string]bool)
	for i, l := range n.Links {
		result = n.validateLink(result, roles, links, i, l)
	}

	flows := make(map[string]bool)
	for i, f := range n.Flows {
		result = n.validateFlow(result, roles, flows, i, f)
	}

	return result
}

func (n *Network) validateLink(
	result error,
	roles map[string]network.Role,
	links map[string]bool,
	i int,
	l LinkDesc,
) error {
	for _, end := range []string{l.A, l.B} {
		if _, ok := roles[end]; !ok {
			result = multierror.Append(result,
				fmt.Errorf("link %d: unknown node %q", i, end))
		}
	}

	if l.A == l.B {
		result = multierror.Append(result,
			fmt.Errorf("link %d: connects %s to itself", i, l.A))
	}

	key := PipeName(l.A, l.B)
	if l.B < l.A {
		key = PipeName(l.B, l.A)
	}

	if links[key] {
		result = multierror.Append(result,
			fmt.Errorf("link %d: %s and %s already connected", i, l.A, l.B))
	}
	links[key] = true

	d, err := sim.ParseDuration(l.Delay)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("link %d: %w", i, err))
	} else if d < 0 {
		result = multierror.Append(result,
			fmt.Errorf("link %d: negative delay %s", i, l.Delay))
	}

	return result
}

func (n *Network) validateFlow(
	result error,
	roles map[string]network.Role,
	flows map[string]bool,
	i int,
	f FlowDesc,
) error {
	name := flowName(f, i)

	if flows[name] {
		result = multierror.Append(result,
			fmt.Errorf("flow %s defined more than once", name))
	}
	flows[name] = true

	for _, end := range []string{f.Src, f.Dst} {
		role, ok := roles[end]
		switch {
		case !ok:
			result = multierror.Append(result,
				fmt.Errorf("flow %s: unknown node %q", name, end))
		case role != network.RoleHost:
			result = multierror.Append(result,
				fmt.Errorf("flow %s: %s is not a host", name, end))
		}
	}

	if f.Src == f.Dst {
		result = multierror.Append(result,
			fmt.Errorf("flow %s: source and destination are the same", name))
	}

	if f.Packets <= 0 {
		result = multierror.Append(result,
			fmt.Errorf("flow %s: packets must be positive", name))
	}

	if f.MaxSize == 0 || f.MinSize > f.MaxSize {
		result = multierror.Append(result,
			fmt.Errorf("flow %s: invalid size range [%d, %d]",
				name, f.MinSize, f.MaxSize))
	}

	for _, d := range []string{f.Start, f.Interval} {
		if _, err := parseOptionalDuration(d); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("flow %s: %w", name, err))
		}
	}

	return result
}

func parseOptionalDuration(s string) (sim.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := sim.ParseDuration(s)
	if err != nil {
		return 0, err
	}

	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}

	return d, nil
}

func flowName(f FlowDesc, i int) string {
	if f.Name == "" {
		return fmt.Sprintf("flow%d", i)
	}

	return f.Name
}

// PipeName returns the name of the pipe that carries traffic from a to b.
func PipeName(a, b string) string {
	return a + "->" + b
}
