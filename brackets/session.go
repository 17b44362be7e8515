package brackets

import (
	"fmt"
	"math/rand"
	"sync"
)

type State string

const (
	StateNoBracket        State = "no_bracket"
	StateSeeded           State = "seeded"
	StateAwaitingDecision State = "awaiting_decision"
	StateResolved         State = "resolved"
)

// SessionState is the persisted form of a session.
type SessionState struct {
	Bracket *Mapping  `json:"bracket"`
	History []Mapping `json:"bracket_history"`
	Queue   []Pair    `json:"match_queue"`
}

// Decision records one matchup settled by an advancement.
type Decision struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

type Outcome struct {
	Decisions []Decision `json:"decisions"`
	Byes      int        `json:"byes"`
	Queue     []Pair     `json:"match_queue"`
}

// Session owns one active bracket, its undo history and the pending match
// queue. All mutations hold the write lock for the whole
// extract-snapshot-mutate-recompute sequence; readers get copies taken under
// the read lock.
type Session struct {
	mu           sync.RWMutex
	tree         *Tree
	history      []Mapping
	queue        []Pair
	historyLimit int
}

type SessionOption func(*Session)

// WithHistoryLimit keeps at most n snapshots, dropping the oldest. Zero or a
// negative n keeps everything.
func WithHistoryLimit(n int) SessionOption {
	return func(s *Session) {
		s.historyLimit = n
	}
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		history: make([]Mapping, 0),
		queue:   make([]Pair, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RestoreSession rebuilds a session from its persisted form. The stored queue
// is ignored and recomputed from the bracket.
func RestoreSession(state SessionState, opts ...SessionOption) (*Session, error) {
	s := NewSession(opts...)
	if state.Bracket == nil {
		if len(state.History) > 0 {
			return nil, fmt.Errorf("%w: history without an active bracket", ErrMalformedBracket)
		}
		return s, nil
	}

	tree, err := Deserialize(*state.Bracket)
	if err != nil {
		return nil, err
	}
	for i, snapshot := range state.History {
		if _, err := Deserialize(snapshot); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		s.history = append(s.history, snapshot.Clone())
	}
	s.tree = tree
	s.refreshQueue()
	return s, nil
}

// Generate replaces the session's bracket with a freshly seeded one and
// clears the history. A leafCount of zero sizes the bracket to the number of
// competitors.
func (s *Session) Generate(leafCount int, rankings map[string]float64, rng *rand.Rand) ([]Pair, error) {
	if leafCount == 0 {
		leafCount = len(rankings)
	}
	tree, err := BuildBracket(leafCount, rankings, rng)
	if err != nil {
		return nil, err
	}
	ResolveByes(tree)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = tree
	s.history = make([]Mapping, 0)
	s.refreshQueue()
	return s.copyQueue(), nil
}

// Advance settles every ready matchup where exactly one side is in winners
// and returns the recomputed match queue.
func (s *Session) Advance(winners map[string]struct{}) ([]Pair, error) {
	outcome, err := s.Decide(winners)
	if err != nil {
		return nil, err
	}
	return outcome.Queue, nil
}

// Decide is Advance with the list of settled matchups. Pairs where neither or
// both sides are winners are left for a later call. Every call pushes the
// pre-mutation snapshot, so each advance is one undo step even when it settles
// nothing.
func (s *Session) Decide(winners map[string]struct{}) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		return nil, ErrNoActiveBracket
	}

	matchups := ExtractMatchups(s.tree)
	s.pushHistory(Serialize(s.tree))

	decisions := make([]Decision, 0, len(matchups))
	for _, m := range matchups {
		_, leftWins := winners[*m.Left.Value]
		_, rightWins := winners[*m.Right.Value]
		switch {
		case leftWins && !rightWins:
			m.Parent().setValue(*m.Left.Value)
			decisions = append(decisions, Decision{Winner: *m.Left.Value, Loser: *m.Right.Value})
		case rightWins && !leftWins:
			m.Parent().setValue(*m.Right.Value)
			decisions = append(decisions, Decision{Winner: *m.Right.Value, Loser: *m.Left.Value})
		}
	}

	outcome := &Outcome{Decisions: decisions}
	if len(decisions) > 0 {
		outcome.Byes = ResolveByes(s.tree)
	}
	s.refreshQueue()
	outcome.Queue = s.copyQueue()
	return outcome, nil
}

// Revert restores the bracket as it was before the most recent advancement.
func (s *Session) Revert() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return ErrNoHistory
	}
	last := s.history[len(s.history)-1]
	tree, err := Deserialize(last)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.history = s.history[:len(s.history)-1]
	s.tree = tree
	s.refreshQueue()
	return nil
}

// Reset drops the bracket and its history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = nil
	s.history = make([]Mapping, 0)
	s.queue = make([]Pair, 0)
}

// Replace swaps the session's contents for state, keeping the session's
// options. On error the session is left as it was.
func (s *Session) Replace(state SessionState) error {
	restored, err := RestoreSession(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = restored.tree
	s.history = restored.history
	s.queue = restored.queue
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = append([]Mapping(nil), s.history[len(s.history)-s.historyLimit:]...)
	}
	return nil
}

func (s *Session) Queue() []Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyQueue()
}

// Snapshot returns the serialized active bracket.
func (s *Session) Snapshot() (Mapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return Mapping{}, false
	}
	return Serialize(s.tree), true
}

func (s *Session) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *Session) Winner() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return "", false
	}
	return s.tree.Winner()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state()
}

func (s *Session) state() State {
	switch {
	case s.tree == nil:
		return StateNoBracket
	case s.tree.root.Value != nil:
		return StateResolved
	case len(s.queue) > 0 && len(s.history) > 0:
		return StateAwaitingDecision
	default:
		return StateSeeded
	}
}

// Export returns a deep copy of the session in its persisted form.
func (s *Session) Export() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := SessionState{
		History: make([]Mapping, 0, len(s.history)),
		Queue:   s.copyQueue(),
	}
	if s.tree != nil {
		m := Serialize(s.tree)
		state.Bracket = &m
	}
	for _, snapshot := range s.history {
		state.History = append(state.History, snapshot.Clone())
	}
	return state
}

func (s *Session) pushHistory(snapshot Mapping) {
	s.history = append(s.history, snapshot)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = append([]Mapping(nil), s.history[len(s.history)-s.historyLimit:]...)
	}
}

func (s *Session) refreshQueue() {
	s.queue = make([]Pair, 0)
	if s.tree != nil {
		s.queue = Pairs(ExtractMatchups(s.tree))
	}
}

func (s *Session) copyQueue() []Pair {
	out := make([]Pair, len(s.queue))
	copy(out, s.queue)
	return out
}

// NewWinnerSet builds the winners argument for Advance.
func NewWinnerSet(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
