package network

import "strings"

// DefaultCoreSubstring is the naming convention that marks core switches.
const DefaultCoreSubstring = "Switch_Core_"

// A Classifier decides whether traffic leaving a node is tracked in the link
// utilization ledger. A nil node is never tracked.
type Classifier interface {
	Tracks(n *Node) bool
}

// RoleClassifier tracks nodes by role.
type RoleClassifier struct {
	roles map[Role]bool
}

// NewRoleClassifier tracks nodes with any of the given roles.
func NewRoleClassifier(roles ...Role) RoleClassifier {
	c := RoleClassifier{roles: make(map[Role]bool, len(roles))}
	for _, r := range roles {
		c.roles[r] = true
	}

	return c
}

// DefaultClassifier tracks core nodes.
func DefaultClassifier() Classifier {
	return NewRoleClassifier(RoleCore)
}

// Tracks reports whether the node has one of the tracked roles.
func (c RoleClassifier) Tracks(n *Node) bool {
	if n == nil {
		return false
	}

	return c.roles[n.role]
}

// NameClassifier tracks nodes whose name contains Substring. It exists for
// topologies that encode the node role in the node name only.
type NameClassifier struct {
	Substring string
}

// Tracks reports whether the node name contains the substring.
func (c NameClassifier) Tracks(n *Node) bool {
	if n == nil || c.Substring == "" {
		return false
	}

	return strings.Contains(n.name, c.Substring)
}
