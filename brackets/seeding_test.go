package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafValues(tree *Tree) []string {
	out := make([]string, 0)
	for _, leaf := range tree.Leaves() {
		out = append(out, leaf.ValueOr("-"))
	}
	return out
}

func TestSeedAlternatesEnds(t *testing.T) {
	tree, err := NewTree(4, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	err = Seed(tree, map[string]float64{"A": 1, "B": 5, "C": 8, "D": 10})
	require.NoError(t, err)

	// all four leaves sit at depth 2, so depth order equals left-to-right order
	assert.Equal(t, []string{"A", "B", "C", "D"}, leafValues(tree))
}

func TestSeedDeepestLeavesFirst(t *testing.T) {
	// shallow leaf on the left, two deep leaves on the right
	tree, err := Deserialize(Mapping{
		Left:  &Mapping{},
		Right: &Mapping{Left: &Mapping{}, Right: &Mapping{}},
	})
	require.NoError(t, err)

	err = Seed(tree, map[string]float64{"low": 1, "mid": 2, "high": 3})
	require.NoError(t, err)

	// depth-sorted list is [R.L, R.R, L]: low→front, high→back, mid→front
	assert.Equal(t, []string{"high", "low", "mid"}, leafValues(tree))
}

func TestSeedLeavesByes(t *testing.T) {
	tree, err := NewTree(4, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	err = Seed(tree, map[string]float64{"A": 1, "B": 2, "C": 3})
	require.NoError(t, err)

	// A→L0, C→L3, B→L1, L2 stays empty
	assert.Equal(t, []string{"A", "B", "-", "C"}, leafValues(tree))
}

func TestSeedTiesBrokenByID(t *testing.T) {
	build := func() []string {
		tree, err := NewTree(4, rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		require.NoError(t, Seed(tree, map[string]float64{"d": 1, "c": 1, "b": 1, "a": 1}))
		return leafValues(tree)
	}
	first := build()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, build())
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, first)
}

func TestSeedCapacityExceeded(t *testing.T) {
	tree, err := NewTree(4, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	before := Serialize(tree)

	err = Seed(tree, map[string]float64{"A": 1, "B": 2, "C": 3, "D": 4, "E": 5})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, Serialize(tree))
	assert.Equal(t, []string{"-", "-", "-", "-"}, leafValues(tree))
}

func TestBuildBracket(t *testing.T) {
	rankings := map[string]float64{"A": 1, "B": 5, "C": 8, "D": 10}

	tree, err := BuildBracket(4, rankings, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, tree.Leaves(), 4)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, tree.Competitors())

	_, err = BuildBracket(0, rankings, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = BuildBracket(3, rankings, nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestBuildBracketEveryCompetitorPlaced(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for n := 1; n <= 17; n++ {
		rankings := make(map[string]float64, n)
		want := make([]string, 0, n)
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			rankings[id] = float64(rng.Intn(50))
			want = append(want, id)
		}
		tree, err := BuildBracket(n, rankings, rng)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, tree.Competitors())
	}
}
