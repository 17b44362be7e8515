package brackets

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourPlayerSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	queue, err := s.Generate(4, map[string]float64{"A": 1, "B": 5, "C": 8, "D": 10}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	require.Equal(t, []Pair{{"A", "B"}, {"C", "D"}}, queue)
	return s
}

func TestSessionStates(t *testing.T) {
	s := NewSession()
	assert.Equal(t, StateNoBracket, s.State())

	s = fourPlayerSession(t)
	assert.Equal(t, StateSeeded, s.State())

	_, err := s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingDecision, s.State())

	_, err = s.Advance(NewWinnerSet("C"))
	require.NoError(t, err)
	queue, err := s.Advance(NewWinnerSet("C"))
	require.NoError(t, err)
	assert.Empty(t, queue)
	assert.Equal(t, StateResolved, s.State())

	winner, ok := s.Winner()
	assert.True(t, ok)
	assert.Equal(t, "C", winner)
}

func TestAdvancePropagatesWinner(t *testing.T) {
	s := fourPlayerSession(t)

	queue, err := s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"C", "D"}}, queue)

	m, ok := s.Snapshot()
	require.True(t, ok)
	tree, err := Deserialize(m)
	require.NoError(t, err)

	var parent *Node
	for _, leaf := range tree.Leaves() {
		if leaf.ValueOr("") == "A" {
			parent = leaf.Parent()
		}
	}
	require.NotNil(t, parent)
	assert.Equal(t, "A", parent.ValueOr(""))
	assert.NotContains(t, queue, Pair{"A", "B"})
}

func TestAdvanceFullRound(t *testing.T) {
	s := fourPlayerSession(t)

	outcome, err := s.Decide(NewWinnerSet("B", "D"))
	require.NoError(t, err)
	assert.Equal(t, []Decision{{Winner: "B", Loser: "A"}, {Winner: "D", Loser: "C"}}, outcome.Decisions)
	assert.Equal(t, []Pair{{"B", "D"}}, outcome.Queue)
	assert.Equal(t, 1, s.HistoryLen())
}

func TestAdvanceSkipsAmbiguousPairs(t *testing.T) {
	s := fourPlayerSession(t)
	before := s.Export()

	// both sides of a pair, or neither, decide nothing but still record a step
	queue, err := s.Advance(NewWinnerSet("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, before.Queue, queue)
	assert.Equal(t, 1, s.HistoryLen())
	assert.Equal(t, *before.Bracket, *s.Export().Bracket)

	queue, err = s.Advance(NewWinnerSet("nobody"))
	require.NoError(t, err)
	assert.Equal(t, before.Queue, queue)
	assert.Equal(t, 2, s.HistoryLen())

	// a mixed call applies what it can
	queue, err = s.Advance(NewWinnerSet("A", "C", "D"))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"C", "D"}}, queue)
	assert.Equal(t, 3, s.HistoryLen())
}

func TestRevertUndoesEmptyAdvanceOnly(t *testing.T) {
	s := fourPlayerSession(t)

	_, err := s.Advance(NewWinnerSet("A", "C"))
	require.NoError(t, err)
	decided := s.Export()
	require.Equal(t, []Pair{{"A", "C"}}, decided.Queue)

	queue, err := s.Advance(NewWinnerSet("Z"))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"A", "C"}}, queue)

	require.NoError(t, s.Revert())
	assert.Equal(t, []Pair{{"A", "C"}}, s.Queue())
	assert.Equal(t, *decided.Bracket, *s.Export().Bracket)
	assert.Equal(t, 1, s.HistoryLen())

	require.NoError(t, s.Revert())
	assert.Equal(t, []Pair{{"A", "B"}, {"C", "D"}}, s.Queue())
}

func TestReplaceSwapsContents(t *testing.T) {
	s := fourPlayerSession(t)
	saved := s.Export()

	_, err := s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)

	require.NoError(t, s.Replace(saved))
	assert.Equal(t, saved, s.Export())
	assert.Equal(t, 0, s.HistoryLen())

	// a malformed state leaves the session untouched
	err = s.Replace(SessionState{Bracket: &Mapping{Left: &Mapping{}}})
	assert.ErrorIs(t, err, ErrMalformedBracket)
	assert.Equal(t, saved, s.Export())
}

func TestAdvanceWithoutBracket(t *testing.T) {
	s := NewSession()
	_, err := s.Advance(NewWinnerSet("A"))
	assert.ErrorIs(t, err, ErrNoActiveBracket)
	assert.Equal(t, StateNoBracket, s.State())
}

func TestRevertRestoresPreAdvanceState(t *testing.T) {
	s := fourPlayerSession(t)
	before := s.Export()

	_, err := s.Advance(NewWinnerSet("A", "D"))
	require.NoError(t, err)
	assert.NotEqual(t, before, s.Export())

	require.NoError(t, s.Revert())
	assert.Equal(t, before, s.Export())
	assert.Equal(t, before.Queue, s.Queue())
}

func TestRevertWalksBackInOrder(t *testing.T) {
	s := fourPlayerSession(t)
	states := []SessionState{s.Export()}

	for _, w := range []string{"A", "C", "A"} {
		_, err := s.Advance(NewWinnerSet(w))
		require.NoError(t, err)
		states = append(states, s.Export())
	}
	assert.Equal(t, StateResolved, s.State())

	for i := len(states) - 2; i >= 0; i-- {
		require.NoError(t, s.Revert())
		assert.Equal(t, states[i], s.Export())
	}
	assert.ErrorIs(t, s.Revert(), ErrNoHistory)
	assert.Equal(t, states[0], s.Export())
}

func TestRevertWithoutHistory(t *testing.T) {
	assert.ErrorIs(t, NewSession().Revert(), ErrNoHistory)

	s := fourPlayerSession(t)
	before := s.Export()
	assert.ErrorIs(t, s.Revert(), ErrNoHistory)
	assert.Equal(t, before, s.Export())
}

func TestGenerateFailureKeepsSession(t *testing.T) {
	s := fourPlayerSession(t)
	_, err := s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)
	before := s.Export()

	_, err = s.Generate(2, map[string]float64{"A": 1, "B": 2, "C": 3}, nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, s.Export())

	_, err = s.Generate(0, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Equal(t, before, s.Export())
}

func TestGenerateAppliesByes(t *testing.T) {
	s := NewSession()
	queue, err := s.Generate(4, map[string]float64{"A": 1, "B": 2, "C": 3}, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	// leaves are A, B, -, C: C gets a bye into the second round
	assert.Equal(t, []Pair{{"A", "B"}}, queue)

	queue, err = s.Advance(NewWinnerSet("B"))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"B", "C"}}, queue)
}

func TestGenerateSizesToCompetitors(t *testing.T) {
	s := NewSession()
	_, err := s.Generate(0, map[string]float64{"A": 1, "B": 2, "C": 3, "D": 4, "E": 5}, rand.New(rand.NewSource(6)))
	require.NoError(t, err)

	m, ok := s.Snapshot()
	require.True(t, ok)
	tree, err := Deserialize(m)
	require.NoError(t, err)
	assert.Len(t, tree.Leaves(), 5)
}

func TestGenerateClearsHistory(t *testing.T) {
	s := fourPlayerSession(t)
	_, err := s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)
	require.Equal(t, 1, s.HistoryLen())

	_, err = s.Generate(2, map[string]float64{"X": 1, "Y": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.HistoryLen())
	assert.Equal(t, []Pair{{"X", "Y"}}, s.Queue())
}

func TestReset(t *testing.T) {
	s := fourPlayerSession(t)
	_, err := s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, StateNoBracket, s.State())
	assert.Empty(t, s.Queue())
	assert.Equal(t, 0, s.HistoryLen())
	_, ok := s.Snapshot()
	assert.False(t, ok)
}

func TestHistoryLimit(t *testing.T) {
	s := NewSession(WithHistoryLimit(1))
	_, err := s.Generate(4, map[string]float64{"A": 1, "B": 5, "C": 8, "D": 10}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	_, err = s.Advance(NewWinnerSet("A"))
	require.NoError(t, err)
	afterFirst := s.Export()
	_, err = s.Advance(NewWinnerSet("C"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.HistoryLen())

	require.NoError(t, s.Revert())
	assert.Equal(t, afterFirst.Bracket, s.Export().Bracket)
	assert.ErrorIs(t, s.Revert(), ErrNoHistory)
}

func TestExportRestore(t *testing.T) {
	s := fourPlayerSession(t)
	_, err := s.Advance(NewWinnerSet("B"))
	require.NoError(t, err)

	state := s.Export()
	restored, err := RestoreSession(state)
	require.NoError(t, err)
	assert.Equal(t, state, restored.Export())
	assert.Equal(t, s.State(), restored.State())

	require.NoError(t, restored.Revert())
	assert.Equal(t, 0, restored.HistoryLen())
	// the original is independent of the restored copy
	assert.Equal(t, 1, s.HistoryLen())
}

func TestRestoreSessionMalformed(t *testing.T) {
	_, err := RestoreSession(SessionState{History: []Mapping{{}}})
	assert.ErrorIs(t, err, ErrMalformedBracket)

	_, err = RestoreSession(SessionState{Bracket: &Mapping{Left: &Mapping{}}})
	assert.ErrorIs(t, err, ErrMalformedBracket)

	_, err = RestoreSession(SessionState{
		Bracket: &Mapping{},
		History: []Mapping{{Right: &Mapping{}}},
	})
	assert.ErrorIs(t, err, ErrMalformedBracket)

	empty, err := RestoreSession(SessionState{})
	require.NoError(t, err)
	assert.Equal(t, StateNoBracket, empty.State())
}

func TestConcurrentAdvanceIsSerialized(t *testing.T) {
	for run := 0; run < 20; run++ {
		s := fourPlayerSession(t)

		// both callers submit the complete first-round decision; whoever gets
		// the lock second sees the final B vs D, decides nothing and still
		// records an undo step
		var wg sync.WaitGroup
		queues := make([][]Pair, 2)
		for i := range queues {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				q, err := s.Advance(NewWinnerSet("B", "D"))
				assert.NoError(t, err)
				queues[i] = q
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 2, s.HistoryLen())
		assert.Equal(t, []Pair{{"B", "D"}}, queues[0])
		assert.Equal(t, []Pair{{"B", "D"}}, queues[1])
	}
}

func TestConcurrentAdvanceDistinctPairs(t *testing.T) {
	rankings := make(map[string]float64, 32)
	for i := 0; i < 32; i++ {
		rankings[fmt.Sprintf("p%02d", i)] = float64(i)
	}
	s := NewSession()
	queue, err := s.Generate(32, rankings, rand.New(rand.NewSource(10)))
	require.NoError(t, err)
	require.Len(t, queue, 16)

	var wg sync.WaitGroup
	for _, pair := range queue {
		wg.Add(1)
		go func(winner string) {
			defer wg.Done()
			_, err := s.Advance(NewWinnerSet(winner))
			assert.NoError(t, err)
		}(pair[0])
	}

	// readers only ever see whole states
	for i := 0; i < 50; i++ {
		state := s.Export()
		require.NotNil(t, state.Bracket)
		_, err := Deserialize(*state.Bracket)
		require.NoError(t, err)
	}
	wg.Wait()

	// every call applied against the result of the previous one; a caller that
	// arrives after its neighbour may also settle the second-round pair
	assert.Equal(t, 16, s.HistoryLen())
	assert.LessOrEqual(t, len(s.Queue()), 8)

	for i := 0; i < 16; i++ {
		require.NoError(t, s.Revert())
	}
	assert.Equal(t, queue, s.Queue())
}
