// Package network defines the contracts shared by the elements of a simulated
// packet network: packets that carry their own route, sinks that accept
// packets, topology nodes with explicit roles, and the classifiers that decide
// which nodes take part in link utilization accounting.
package network
