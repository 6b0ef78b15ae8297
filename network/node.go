package network

import (
	"fmt"
	"strings"
)

// Role is the function a node plays in the topology.
type Role int

// Node roles, from the network edge to the core.
const (
	RoleHost Role = iota
	RoleEdge
	RoleAggregation
	RoleCore
)

var roleNames = map[Role]string{
	RoleHost:        "host",
	RoleEdge:        "edge",
	RoleAggregation: "aggregation",
	RoleCore:        "core",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}

	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole converts a role name such as "core" into a Role. Matching is case
// insensitive; "tor" and "leaf" are accepted for RoleEdge, "spine" for
// RoleCore.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host":
		return RoleHost, nil
	case "edge", "tor", "leaf":
		return RoleEdge, nil
	case "aggregation", "agg":
		return RoleAggregation, nil
	case "core", "spine":
		return RoleCore, nil
	default:
		return 0, fmt.Errorf("network: unknown node role %q", s)
	}
}

// Node is a network element in the topology, such as a host or a switch.
type Node struct {
	name string
	role Role
}

// NewNode creates a node.
func NewNode(name string, role Role) *Node {
	return &Node{name: name, role: role}
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// Role returns the role of the node.
func (n *Node) Role() Role {
	return n.role
}
