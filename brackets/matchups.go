package brackets

// Matchup is a pair of sibling nodes that both hold a competitor while their
// shared parent is still undecided.
type Matchup struct {
	Left  *Node
	Right *Node
}

func (m Matchup) Parent() *Node {
	return m.Left.parent
}

// Pair is the competitor-id view of a matchup, encoded as a two-element array.
type Pair [2]string

func (m Matchup) Pair() Pair {
	return Pair{*m.Left.Value, *m.Right.Value}
}

// ExtractMatchups walks the tree in pre-order and returns every decidable
// sibling pair. A parent that already holds a value has absorbed its pair,
// so those children are not offered again.
func ExtractMatchups(tree *Tree) []Matchup {
	matchups := make([]Matchup, 0)
	tree.walk(func(n *Node) {
		if n.IsLeaf() || n.Value != nil {
			return
		}
		if n.Left.Value != nil && n.Right.Value != nil {
			matchups = append(matchups, Matchup{Left: n.Left, Right: n.Right})
		}
	})
	return matchups
}

func Pairs(matchups []Matchup) []Pair {
	pairs := make([]Pair, 0, len(matchups))
	for _, m := range matchups {
		pairs = append(pairs, m.Pair())
	}
	return pairs
}

// ResolveByes moves a competitor up past a slot that can never be filled.
// An empty leaf is such a slot, and so is an internal node whose children are
// both unfillable. Returns the number of nodes that received a value.
func ResolveByes(tree *Tree) int {
	if tree == nil || tree.root == nil {
		return 0
	}
	promoted := 0
	resolveByes(tree.root, &promoted)
	return promoted
}

// resolveByes reports whether n is an unfillable slot.
func resolveByes(n *Node, promoted *int) bool {
	if n.IsLeaf() {
		return n.Value == nil
	}
	leftDead := resolveByes(n.Left, promoted)
	rightDead := resolveByes(n.Right, promoted)
	if n.Value != nil {
		return false
	}
	switch {
	case leftDead && rightDead:
		return true
	case leftDead && n.Right.Value != nil:
		n.setValue(*n.Right.Value)
		*promoted++
	case rightDead && n.Left.Value != nil:
		n.setValue(*n.Left.Value)
		*promoted++
	}
	return false
}
