// Package kv provides the hierarchical key/value tree that carries every
// component's boot configuration, and the C code generator for it.
package kv

// ValueKind discriminates the two node variants.
type ValueKind int

const (
	// KindString is a leaf node holding a single string value.
	KindString ValueKind = iota

	// KindArray is a node holding an ordered list of child nodes.
	KindArray
)

// String returns the discriminant name used in generated code and diagnostics.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// TopKey is the key of the synthetic root wrapper created by Top.
const TopKey = "_"

// Node is one entry of a key/value tree. A node is either a leaf carrying a
// string or an array carrying ordered children; keys need not be unique
// among siblings.
type Node struct {
	Key string

	kind     ValueKind
	str      string
	children []Node
}

// Leaf creates a string node.
func Leaf(key, value string) Node {
	return Node{Key: key, kind: KindString, str: value}
}

// Array creates an array node. The children are copied so later changes to
// the caller's slice do not leak into the tree.
func Array(key string, children []Node) Node {
	cp := make([]Node, len(children))
	copy(cp, children)
	return Node{Key: key, kind: KindArray, children: cp}
}

// Top wraps a top-level list in the synthetic root node.
func Top(children []Node) Node {
	return Array(TopKey, children)
}

// Kind returns the node variant.
func (n Node) Kind() ValueKind {
	return n.kind
}

// IsLeaf reports whether n holds a string.
func (n Node) IsLeaf() bool {
	return n.kind == KindString
}

// Value returns the string held by a leaf. It is empty for arrays.
func (n Node) Value() string {
	return n.str
}

// Children returns the ordered children of an array. It is nil for leaves.
func (n Node) Children() []Node {
	return n.children
}

// Lookup returns the first child of an array node with the given key.
func (n Node) Lookup(key string) (Node, bool) {
	for _, c := range n.children {
		if c.Key == key {
			return c, true
		}
	}
	return Node{}, false
}

// Find returns the first node in the list with the given key.
func Find(nodes []Node, key string) (Node, bool) {
	for _, n := range nodes {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}
