package brackets

import (
	"fmt"
	"math/rand"
	"sort"
)

// Seed assigns ranked competitors to the leaves of a freshly built tree.
//
// Competitors are queued lowest ranking key first. Leaves are ordered deepest
// first, keeping left-to-right order among equal depths. A cursor then flips
// between the two ends: at the front the lowest remaining competitor takes the
// first free leaf, at the back the highest remaining competitor takes the last
// free leaf. With {A:1 B:5 C:8 D:10} over leaves L0..L3 that gives A→L0,
// D→L3, B→L1, C→L2. Leaves left over stay empty and act as byes.
func Seed(tree *Tree, rankings map[string]float64) error {
	if tree == nil || tree.root == nil {
		return ErrNoActiveBracket
	}

	leaves := tree.Leaves()
	if len(rankings) > len(leaves) {
		return fmt.Errorf("%w: %d competitors for %d slots", ErrCapacityExceeded, len(rankings), len(leaves))
	}

	queue := rankingQueue(rankings)

	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].Depth() > leaves[j].Depth()
	})

	front, back := 0, len(leaves)-1
	fromFront := true
	for len(queue) > 0 && front <= back {
		if fromFront {
			leaves[front].setValue(queue[0])
			queue = queue[1:]
			front++
		} else {
			leaves[back].setValue(queue[len(queue)-1])
			queue = queue[:len(queue)-1]
			back--
		}
		fromFront = !fromFront
	}
	return nil
}

// rankingQueue orders competitor ids by ascending ranking key. Equal keys
// fall back to the id so the order does not depend on map iteration.
func rankingQueue(rankings map[string]float64) []string {
	queue := make([]string, 0, len(rankings))
	for id := range rankings {
		queue = append(queue, id)
	}
	sort.Slice(queue, func(i, j int) bool {
		ri, rj := rankings[queue[i]], rankings[queue[j]]
		if ri != rj {
			return ri < rj
		}
		return queue[i] < queue[j]
	})
	return queue
}

// BuildBracket constructs a tree with leafCount slots and seeds rankings into it.
func BuildBracket(leafCount int, rankings map[string]float64, rng *rand.Rand) (*Tree, error) {
	if len(rankings) > leafCount && leafCount >= 1 {
		return nil, fmt.Errorf("%w: %d competitors for %d slots", ErrCapacityExceeded, len(rankings), leafCount)
	}
	tree, err := NewTree(leafCount, rng)
	if err != nil {
		return nil, err
	}
	if err := Seed(tree, rankings); err != nil {
		return nil, err
	}
	return tree, nil
}
