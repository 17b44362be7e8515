package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/metrics"
	"github.com/Dosada05/tournament-bracket/models"
	"github.com/Dosada05/tournament-bracket/realtime"
	"github.com/Dosada05/tournament-bracket/repositories"
	"github.com/Dosada05/tournament-bracket/storage"
	"golang.org/x/sync/errgroup"
)

const archiveContentType = "application/json"

// Notifier delivers session events to subscribers. *realtime.Hub satisfies it.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{}) int
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*models.Session, error)
	Get(ctx context.Context, id int) (*models.SessionView, error)
	List(ctx context.Context, input ListSessionsInput) ([]models.Session, error)
	Delete(ctx context.Context, id int) error

	Generate(ctx context.Context, id int, input GenerateInput) (*models.SessionView, error)
	Advance(ctx context.Context, id int, winners []string) (*AdvanceResult, error)
	Revert(ctx context.Context, id int) (*models.SessionView, error)
	Reset(ctx context.Context, id int) (*models.SessionView, error)
	Complete(ctx context.Context, id int) (*models.SessionView, error)
	ListMatchups(ctx context.Context, id int) ([]brackets.Pair, error)
}

type CreateSessionInput struct {
	Name string
}

type ListSessionsInput struct {
	Status *models.SessionStatus
	Limit  int
	Offset int
}

type GenerateInput struct {
	// LeafCount of zero sizes the bracket to the number of competitors.
	LeafCount int
	Rankings  map[string]float64
	// Seed makes the bracket shape reproducible.
	Seed *int64
}

type AdvanceResult struct {
	Session   *models.SessionView `json:"session"`
	Decisions []brackets.Decision `json:"decisions"`
	Byes      int                 `json:"byes"`
}

type SessionServiceConfig struct {
	Repo         repositories.SessionRepository
	Archiver     storage.Archiver // nil disables archive uploads
	Notifier     Notifier
	Metrics      *metrics.Bracket
	Logger       *slog.Logger
	HistoryLimit int
}

// liveSession is a session held in memory. mu serializes
// mutate-persist-broadcast for one session; the bracket session has its own
// lock for readers.
type liveSession struct {
	mu      sync.Mutex
	record  *models.Session
	bracket *brackets.Session
}

type sessionService struct {
	repo         repositories.SessionRepository
	archiver     storage.Archiver
	notifier     Notifier
	metrics      *metrics.Bracket
	logger       *slog.Logger
	historyLimit int
	now          func() time.Time

	mu   sync.Mutex
	live map[int]*liveSession
}

func NewSessionService(cfg SessionServiceConfig) SessionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewBracket()
	}
	return &sessionService{
		repo:         cfg.Repo,
		archiver:     cfg.Archiver,
		notifier:     cfg.Notifier,
		metrics:      m,
		logger:       logger.With(slog.String("component", "session_service")),
		historyLimit: cfg.HistoryLimit,
		now:          time.Now,
		live:         make(map[int]*liveSession),
	}
}

func (s *sessionService) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSessionNameRequired
	}

	session := &models.Session{
		Name:   name,
		Status: models.SessionStatusOpen,
		State: brackets.SessionState{
			History: []brackets.Mapping{},
			Queue:   []brackets.Pair{},
		},
	}
	if err := s.repo.Create(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionNameConflict) {
			return nil, ErrSessionNameConflict
		}
		return nil, fmt.Errorf("failed to create session %q: %w", name, err)
	}

	s.logger.Info("session created", slog.Int("session_id", session.ID), slog.String("name", name))
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id int) (*models.SessionView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return s.view(entry), nil
}

func (s *sessionService) List(ctx context.Context, input ListSessionsInput) ([]models.Session, error) {
	if input.Limit < 0 || input.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrValidationFailed)
	}
	sessions, err := s.repo.List(ctx, repositories.ListSessionsFilter{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		return []models.Session{}, nil
	}
	return sessions, nil
}

func (s *sessionService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	s.evict(id)
	s.logger.Info("session deleted", slog.Int("session_id", id))
	return nil
}

func (s *sessionService) Generate(ctx context.Context, id int, input GenerateInput) (*models.SessionView, error) {
	if len(input.Rankings) == 0 {
		return nil, ErrRankingsRequired
	}
	for name := range input.Rankings {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: competitor names must not be blank", ErrValidationFailed)
		}
	}

	seed := s.now().UnixNano()
	if input.Seed != nil {
		seed = *input.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	var queue []brackets.Pair
	view, err := s.mutate(ctx, id, func(entry *liveSession) error {
		var genErr error
		queue, genErr = entry.bracket.Generate(input.LeafCount, input.Rankings, rng)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionsGenerated.Inc()
	s.logger.Info("bracket generated",
		slog.Int("session_id", id),
		slog.Int("competitors", len(input.Rankings)),
		slog.Int("leaves", input.LeafCount),
		slog.Int64("seed", seed),
		slog.Int("ready_matchups", len(queue)),
	)
	s.publish(id, realtime.EventBracketGenerated, view)
	return view, nil
}

func (s *sessionService) Advance(ctx context.Context, id int, winners []string) (*AdvanceResult, error) {
	if len(winners) == 0 {
		return nil, ErrWinnersRequired
	}

	var outcome *brackets.Outcome
	view, err := s.mutate(ctx, id, func(entry *liveSession) error {
		var decideErr error
		outcome, decideErr = entry.bracket.Decide(brackets.NewWinnerSet(winners...))
		return decideErr
	})
	if err != nil {
		return nil, err
	}
	if len(outcome.Decisions) == 0 {
		s.logger.Debug("advance settled no matchups", slog.Int("session_id", id), slog.Any("winners", winners))
	}

	s.metrics.Advances.Inc()
	s.metrics.Decisions.Add(float64(len(outcome.Decisions)))
	s.metrics.Byes.Add(float64(outcome.Byes))
	s.logger.Info("bracket advanced",
		slog.Int("session_id", id),
		slog.Int("decisions", len(outcome.Decisions)),
		slog.Int("byes", outcome.Byes),
		slog.String("state", string(view.State)),
	)

	result := &AdvanceResult{Session: view, Decisions: outcome.Decisions, Byes: outcome.Byes}
	s.publish(id, realtime.EventBracketAdvanced, result)
	return result, nil
}

func (s *sessionService) Revert(ctx context.Context, id int) (*models.SessionView, error) {
	view, err := s.mutate(ctx, id, func(entry *liveSession) error {
		return entry.bracket.Revert()
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Reverts.Inc()
	s.logger.Info("bracket reverted", slog.Int("session_id", id), slog.Int("history_depth", view.HistoryDepth))
	s.publish(id, realtime.EventBracketReverted, view)
	return view, nil
}

func (s *sessionService) Reset(ctx context.Context, id int) (*models.SessionView, error) {
	view, err := s.mutate(ctx, id, func(entry *liveSession) error {
		entry.bracket.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Resets.Inc()
	s.logger.Info("bracket reset", slog.Int("session_id", id))
	s.publish(id, realtime.EventBracketReset, view)
	return view, nil
}

// Complete archives the final bracket and its history, then closes the
// session. Without an archiver the session is closed with no archive key.
func (s *sessionService) Complete(ctx context.Context, id int) (*models.SessionView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.record.Status == models.SessionStatusArchived {
		return nil, ErrSessionArchived
	}
	state := entry.bracket.Export()
	if state.Bracket == nil {
		return nil, brackets.ErrNoActiveBracket
	}

	archiveKey := ""
	if s.archiver != nil {
		archiveKey, err = s.archive(ctx, id, state)
		if err != nil {
			s.metrics.ArchiveFailures.Inc()
			return nil, err
		}
	}

	if err := s.repo.MarkArchived(ctx, nil, id, archiveKey); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			s.evict(id)
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to mark session %d archived: %w", id, err)
	}

	entry.record.Status = models.SessionStatusArchived
	if archiveKey != "" {
		entry.record.ArchiveKey = &archiveKey
	}
	view := s.view(entry)
	s.evict(id)

	s.metrics.SessionsCompleted.Inc()
	s.logger.Info("session completed", slog.Int("session_id", id), slog.String("archive_key", archiveKey))
	s.publish(id, realtime.EventSessionCompleted, view)
	return view, nil
}

func (s *sessionService) ListMatchups(ctx context.Context, id int) ([]brackets.Pair, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.bracket.Queue(), nil
}

// archive uploads the final bracket and the history side by side and returns
// the key of the final bracket. On failure any object that did make it is
// removed again.
func (s *sessionService) archive(ctx context.Context, id int, state brackets.SessionState) (string, error) {
	final, err := json.Marshal(state.Bracket)
	if err != nil {
		return "", fmt.Errorf("%w: encode bracket: %w", ErrArchiveFailed, err)
	}
	history, err := json.Marshal(state.History)
	if err != nil {
		return "", fmt.Errorf("%w: encode history: %w", ErrArchiveFailed, err)
	}

	at := s.now()
	documents := []struct {
		key  string
		body []byte
	}{
		{key: storage.ArchiveKey(id, "final", final, at), body: final},
		{key: storage.ArchiveKey(id, "history", history, at), body: history},
	}

	uploaded := make([]bool, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range documents {
		i, doc := i, doc
		g.Go(func() error {
			if _, err := s.archiver.Put(gctx, doc.key, archiveContentType, bytes.NewReader(doc.body)); err != nil {
				return err
			}
			uploaded[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, ok := range uploaded {
			if !ok {
				continue
			}
			if delErr := s.archiver.Delete(ctx, documents[i].key); delErr != nil {
				s.logger.Warn("failed to remove partial archive",
					slog.Int("session_id", id),
					slog.String("key", documents[i].key),
					slog.Any("error", delErr),
				)
			}
		}
		return "", fmt.Errorf("%w (session %d): %w", ErrArchiveFailed, id, err)
	}
	return documents[0].key, nil
}

// mutate runs fn on the live session under its lock, persists the result and
// returns the new view. If persisting fails the session is rolled back to its
// state before fn, so callers queued on the lock never build on an unsaved
// change.
func (s *sessionService) mutate(ctx context.Context, id int, fn func(entry *liveSession) error) (*models.SessionView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.record.Status == models.SessionStatusArchived {
		return nil, ErrSessionArchived
	}

	before := entry.bracket.Export()
	prevState, prevWinner := entry.record.State, entry.record.Winner
	if err := fn(entry); err != nil {
		return nil, err
	}

	entry.record.State = entry.bracket.Export()
	entry.record.Winner = nil
	if winner, ok := entry.bracket.Winner(); ok {
		entry.record.Winner = &winner
	}

	if err := s.repo.Save(ctx, nil, entry.record); err != nil {
		entry.record.State, entry.record.Winner = prevState, prevWinner
		if rbErr := entry.bracket.Replace(before); rbErr != nil {
			s.logger.Error("failed to roll back unsaved session change",
				slog.Int("session_id", id),
				slog.Any("error", rbErr),
			)
			entry.record.Status = models.SessionStatusArchived
			s.evict(id)
		}
		if errors.Is(err, repositories.ErrSessionNotFound) {
			s.evict(id)
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to save session %d: %w", id, err)
	}
	return s.view(entry), nil
}

// load returns the live session for id, restoring it from the repository on
// first use. Archived sessions are returned but not kept in memory.
func (s *sessionService) load(ctx context.Context, id int) (*liveSession, error) {
	s.mu.Lock()
	entry, ok := s.live[id]
	s.mu.Unlock()
	if ok {
		return entry, nil
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %d: %w", id, err)
	}

	bracket, err := brackets.RestoreSession(record.State, brackets.WithHistoryLimit(s.historyLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: session %d: %w", repositories.ErrSessionCorrupted, id, err)
	}
	entry = &liveSession{record: record, bracket: bracket}
	if record.Status == models.SessionStatusArchived {
		return entry, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[id]; ok {
		return existing, nil
	}
	s.live[id] = entry
	s.metrics.SessionsLive.Set(float64(len(s.live)))
	s.logger.Debug("session loaded", slog.Int("session_id", id))
	return entry, nil
}

func (s *sessionService) evict(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, id)
	s.metrics.SessionsLive.Set(float64(len(s.live)))
}

func (s *sessionService) view(entry *liveSession) *models.SessionView {
	state := entry.bracket.Export()
	view := &models.SessionView{
		ID:           entry.record.ID,
		Name:         entry.record.Name,
		Status:       entry.record.Status,
		State:        entry.bracket.State(),
		Bracket:      state.Bracket,
		MatchQueue:   state.Queue,
		HistoryDepth: len(state.History),
		Winner:       entry.record.Winner,
		UpdatedAt:    entry.record.UpdatedAt,
	}
	if winner, ok := entry.bracket.Winner(); ok {
		view.Winner = &winner
	}
	if s.archiver != nil && entry.record.ArchiveKey != nil {
		if u := s.archiver.PublicURL(*entry.record.ArchiveKey); u != "" {
			view.ArchiveURL = &u
		}
	}
	return view
}

func (s *sessionService) publish(id int, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	room := realtime.SessionRoom(id)
	delivered := s.notifier.BroadcastToRoom(room, realtime.Message{Type: event, Payload: payload, RoomID: room})
	s.logger.Debug("session event published",
		slog.Int("session_id", id),
		slog.String("event", event),
		slog.Int("delivered", delivered),
	)
}
