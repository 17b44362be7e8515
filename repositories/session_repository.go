package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-bracket/brackets"
	"github.com/Dosada05/tournament-bracket/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound     = errors.New("bracket session not found")
	ErrSessionNameConflict = errors.New("bracket session name already exists")
	ErrSessionCorrupted    = errors.New("stored bracket session could not be decoded")
)

type ListSessionsFilter struct {
	Status *models.SessionStatus
	Limit  int
	Offset int
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id int) (*models.Session, error)
	List(ctx context.Context, filter ListSessionsFilter) ([]models.Session, error)
	// Save writes bracket, history, queue and winner of the session.
	Save(ctx context.Context, exec SQLExecutor, session *models.Session) error
	MarkArchived(ctx context.Context, exec SQLExecutor, id int, archiveKey string) error
	Delete(ctx context.Context, id int) error
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.Status == "" {
		session.Status = models.SessionStatusOpen
	}
	bracket, history, queue, err := encodeState(session.State)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bracket_sessions (name, status, bracket, bracket_history, match_queue, winner)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		session.Name,
		session.Status,
		bracket,
		history,
		queue,
		session.Winner,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	return r.handleSessionError(err)
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.Session, error) {
	query := `
		SELECT id, name, status, bracket, bracket_history, match_queue, winner, archive_key, created_at, updated_at
		FROM bracket_sessions
		WHERE id = $1`

	session := &models.Session{}
	var bracket, history, queue []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Name,
		&session.Status,
		&bracket,
		&history,
		&queue,
		&session.Winner,
		&session.ArchiveKey,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket session %d: %w", id, err)
	}

	state, err := decodeState(bracket, history, queue)
	if err != nil {
		return nil, fmt.Errorf("%w: session %d: %v", ErrSessionCorrupted, id, err)
	}
	session.State = state
	return session, nil
}

func (r *postgresSessionRepository) List(ctx context.Context, filter ListSessionsFilter) ([]models.Session, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, status, winner, archive_key, created_at, updated_at
		FROM bracket_sessions`)

	args := []interface{}{}
	placeholderIndex := 1

	if filter.Status != nil {
		queryBuilder.WriteString(" WHERE status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY updated_at DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, filter.Limit)
		placeholderIndex++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bracket sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var s models.Session
		if scanErr := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Status,
			&s.Winner,
			&s.ArchiveKey,
			&s.CreatedAt,
			&s.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket session row: %w", scanErr)
		}
		sessions = append(sessions, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket session rows iteration: %w", err)
	}
	return sessions, nil
}

func (r *postgresSessionRepository) Save(ctx context.Context, exec SQLExecutor, session *models.Session) error {
	bracket, history, queue, err := encodeState(session.State)
	if err != nil {
		return err
	}

	query := `
		UPDATE bracket_sessions
		SET bracket = $1, bracket_history = $2, match_queue = $3, winner = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
		RETURNING updated_at`
	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		bracket,
		history,
		queue,
		session.Winner,
		session.ID,
		models.SessionStatusOpen,
	).Scan(&session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to save bracket session %d: %w", session.ID, err)
	}
	return nil
}

func (r *postgresSessionRepository) MarkArchived(ctx context.Context, exec SQLExecutor, id int, archiveKey string) error {
	query := `
		UPDATE bracket_sessions
		SET status = $1, archive_key = $2, updated_at = NOW()
		WHERE id = $3`
	key := sql.NullString{String: archiveKey, Valid: archiveKey != ""}
	result, err := r.getExecutor(exec).ExecContext(ctx, query, models.SessionStatusArchived, key, id)
	if err != nil {
		return fmt.Errorf("MarkArchived: failed to execute query for session %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM bracket_sessions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) handleSessionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// 23505: unique_violation
		if pqErr.Code == "23505" && pqErr.Constraint == "bracket_sessions_name_key" {
			return ErrSessionNameConflict
		}
		// 23514: check_violation
		if pqErr.Code == "23514" && pqErr.Constraint == "chk_bracket_sessions_status" {
			return fmt.Errorf("invalid bracket session status: %w", err)
		}
	}
	return err
}

// encodeState turns the session state into JSONB column values. lib/pq sends
// []byte as bytea, so the documents travel as text; a missing bracket is NULL.
func encodeState(state brackets.SessionState) (bracket sql.NullString, history string, queue string, err error) {
	if state.Bracket != nil {
		data, err := json.Marshal(state.Bracket)
		if err != nil {
			return bracket, "", "", fmt.Errorf("failed to encode bracket: %w", err)
		}
		bracket = sql.NullString{String: string(data), Valid: true}
	}
	hist := state.History
	if hist == nil {
		hist = []brackets.Mapping{}
	}
	histData, err := json.Marshal(hist)
	if err != nil {
		return bracket, "", "", fmt.Errorf("failed to encode bracket history: %w", err)
	}
	q := state.Queue
	if q == nil {
		q = []brackets.Pair{}
	}
	queueData, err := json.Marshal(q)
	if err != nil {
		return bracket, "", "", fmt.Errorf("failed to encode match queue: %w", err)
	}
	return bracket, string(histData), string(queueData), nil
}

func decodeState(bracket, history, queue []byte) (brackets.SessionState, error) {
	state := brackets.SessionState{
		History: []brackets.Mapping{},
		Queue:   []brackets.Pair{},
	}
	if len(bracket) > 0 && string(bracket) != "null" {
		tree, err := brackets.UnmarshalBracket(bracket)
		if err != nil {
			return state, err
		}
		m := brackets.Serialize(tree)
		state.Bracket = &m
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &state.History); err != nil {
			return state, fmt.Errorf("bracket_history: %w", err)
		}
	}
	if len(queue) > 0 {
		if err := json.Unmarshal(queue, &state.Queue); err != nil {
			return state, fmt.Errorf("match_queue: %w", err)
		}
	}
	return state, nil
}
