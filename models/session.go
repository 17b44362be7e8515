package models

import (
	"time"

	"github.com/Dosada05/tournament-bracket/brackets"
)

// SessionStatus mirrors the status column of bracket_sessions.
type SessionStatus string

const (
	SessionStatusOpen     SessionStatus = "open"
	SessionStatusArchived SessionStatus = "archived"
)

// Session is one bracket session as stored by the repository.
type Session struct {
	ID         int                   `json:"id" db:"id"`
	Name       string                `json:"name" db:"name"`
	Status     SessionStatus         `json:"status" db:"status"`
	State      brackets.SessionState `json:"-" db:"-"` // bracket, bracket_history, match_queue
	Winner     *string               `json:"winner,omitempty" db:"winner"`
	ArchiveKey *string               `json:"archive_key,omitempty" db:"archive_key"`
	CreatedAt  time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at" db:"updated_at"`
}

// SessionView is what the API returns for a session.
type SessionView struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Status       SessionStatus     `json:"status"`
	State        brackets.State    `json:"state"`
	Bracket      *brackets.Mapping `json:"bracket"`
	MatchQueue   []brackets.Pair   `json:"match_queue"`
	HistoryDepth int               `json:"history_depth"`
	Winner       *string           `json:"winner,omitempty"`
	ArchiveURL   *string           `json:"archive_url,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
