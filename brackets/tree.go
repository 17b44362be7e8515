// tournament-bracket/brackets/tree.go
package brackets

import (
	"fmt"
	"math/rand"
)

// Node is a single slot of a single-elimination bracket. Leaves are seed
// slots, internal nodes hold the winner of the matchup between their children.
type Node struct {
	Value *string
	Left  *Node
	Right *Node

	// parent mirrors the owning Left/Right edge of the node above; it is
	// only read for depth and upward propagation.
	parent *Node
}

func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) HasValue() bool {
	return n.Value != nil
}

// ValueOr returns the competitor held by the node or def for an empty slot.
func (n *Node) ValueOr(def string) string {
	if n.Value == nil {
		return def
	}
	return *n.Value
}

// Depth counts parent hops up to the root.
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Sibling returns the other child of the node's parent, or nil for the root.
func (n *Node) Sibling() *Node {
	if n.parent == nil {
		return nil
	}
	if n.parent.Left == n {
		return n.parent.Right
	}
	return n.parent.Left
}

func (n *Node) setValue(v string) {
	n.Value = &v
}

type Tree struct {
	root *Node
}

// NewTree builds a bracket with leafCount empty seed slots. At every internal
// node the remaining budget is split into ceil(n/2) and floor(n/2) and the
// larger half is put on a random side. A nil rng uses the package source.
func NewTree(leafCount int, rng *rand.Rand) (*Tree, error) {
	if leafCount < 1 {
		return nil, fmt.Errorf("%w: leaf count %d", ErrInvalidSize, leafCount)
	}
	coin := rand.Float64
	if rng != nil {
		coin = rng.Float64
	}
	return &Tree{root: buildNode(leafCount, nil, coin)}, nil
}

func buildNode(leaves int, parent *Node, coin func() float64) *Node {
	node := &Node{parent: parent}
	if leaves == 1 {
		return node
	}

	larger := leaves - leaves/2
	smaller := leaves / 2
	if coin() < 0.5 {
		node.Left = buildNode(larger, node, coin)
		node.Right = buildNode(smaller, node, coin)
	} else {
		node.Left = buildNode(smaller, node, coin)
		node.Right = buildNode(larger, node, coin)
	}
	return node
}

func (t *Tree) Root() *Node {
	return t.root
}

// Leaves returns every zero-child node in pre-order, left first.
func (t *Tree) Leaves() []*Node {
	leaves := make([]*Node, 0)
	t.walk(func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

func (t *Tree) LeafCount() int {
	return len(t.Leaves())
}

// Height is the depth of the deepest leaf.
func (t *Tree) Height() int {
	height := 0
	for _, leaf := range t.Leaves() {
		if d := leaf.Depth(); d > height {
			height = d
		}
	}
	return height
}

// Winner returns the competitor held by the root once the bracket is decided.
func (t *Tree) Winner() (string, bool) {
	if t.root == nil || t.root.Value == nil {
		return "", false
	}
	return *t.root.Value, true
}

// Matchups is the tree-level view of ExtractMatchups.
func (t *Tree) Matchups() []Matchup {
	return ExtractMatchups(t)
}

// Competitors lists the values held by the leaves, left to right.
func (t *Tree) Competitors() []string {
	out := make([]string, 0)
	for _, leaf := range t.Leaves() {
		if leaf.Value != nil {
			out = append(out, *leaf.Value)
		}
	}
	return out
}

// walk visits every node in pre-order, left first, using an explicit stack.
func (t *Tree) walk(visit func(*Node)) {
	if t == nil || t.root == nil {
		return
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		if n.Right != nil {
			stack = append(stack, n.Right)
		}
		if n.Left != nil {
			stack = append(stack, n.Left)
		}
	}
}

// Equal reports whether two trees have the same shape and the same values.
// Parent pointers are not compared.
func Equal(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equalNodes(a.root, b.root)
}

func equalNodes(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if (a.Value == nil) != (b.Value == nil) {
		return false
	}
	if a.Value != nil && *a.Value != *b.Value {
		return false
	}
	return equalNodes(a.Left, b.Left) && equalNodes(a.Right, b.Right)
}
