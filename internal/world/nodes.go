package world

import "fmt"

// NodeKind identifies the type of a gatherable node.
type NodeKind uint8

const (
	NodeForest  NodeKind = iota // Wood
	NodeBerries                 // Food, gathered by women
	NodeChicken                 // Food, hunted by cavalry
)

// NumNodeKinds is the number of node kinds.
const NumNodeKinds = 3

// ParseNodeKind maps a script keyword to a node kind.
func ParseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "forest":
		return NodeForest, nil
	case "berries":
		return NodeBerries, nil
	case "chicken":
		return NodeChicken, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// String returns the script keyword for the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeForest:
		return "forest"
	case NodeBerries:
		return "berries"
	case NodeChicken:
		return "chicken"
	default:
		return "unknown"
	}
}

// Node is a depletable resource deposit at a fixed position.
type Node struct {
	Kind      NodeKind `json:"kind"`
	Position  Position `json:"position"`
	Remaining float64  `json:"remaining"`
}

// Take withdraws up to amount from the node and returns what was actually
// taken. The remaining quantity never drops below zero.
func (n *Node) Take(amount float64) float64 {
	if amount <= 0 || n.Remaining <= 0 {
		return 0
	}
	if n.Remaining >= amount {
		n.Remaining -= amount
		return amount
	}
	taken := n.Remaining
	n.Remaining = 0
	return taken
}

// Depleted returns true once the node has nothing left.
func (n *Node) Depleted() bool {
	return n.Remaining <= 0
}

// Registry holds every gatherable node, per kind, in declaration order.
type Registry struct {
	nodes [NumNodeKinds][]*Node
}

// NewRegistry creates an empty node registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add declares a new node and returns it.
func (r *Registry) Add(kind NodeKind, pos Position, qty float64) *Node {
	n := &Node{Kind: kind, Position: pos, Remaining: qty}
	r.nodes[kind] = append(r.nodes[kind], n)
	return n
}

// At returns the first node of kind at pos, or nil if none was declared there.
func (r *Registry) At(kind NodeKind, pos Position) *Node {
	for _, n := range r.nodes[kind] {
		if n.Position == pos {
			return n
		}
	}
	return nil
}

// FirstAvailable returns the first declared node of kind that still has
// something left, or nil.
func (r *Registry) FirstAvailable(kind NodeKind) *Node {
	for _, n := range r.nodes[kind] {
		if !n.Depleted() {
			return n
		}
	}
	return nil
}

// Nodes returns the nodes of one kind in declaration order.
func (r *Registry) Nodes(kind NodeKind) []*Node {
	return r.nodes[kind]
}

// Remaining returns the total quantity left across all nodes of kind.
func (r *Registry) Remaining(kind NodeKind) float64 {
	total := 0.0
	for _, n := range r.nodes[kind] {
		total += n.Remaining
	}
	return total
}

// Count returns the number of declared nodes of kind.
func (r *Registry) Count(kind NodeKind) int {
	return len(r.nodes[kind])
}
