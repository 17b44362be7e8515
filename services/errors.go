package services

import "errors"

// Errors returned by the session service and mapped to HTTP statuses by the
// handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation
	ErrValidationFailed    = errors.New("validation failed")
	ErrSessionNameRequired = errors.New("session name is required")
	ErrWinnersRequired     = errors.New("at least one winner is required")
	ErrRankingsRequired    = errors.New("at least one competitor is required")

	// Conflicts
	ErrSessionNameConflict = errors.New("session name is already in use")
	ErrSessionArchived     = errors.New("session is archived and can no longer change")

	ErrSessionNotFound = errors.New("bracket session not found")

	ErrArchiveFailed = errors.New("failed to archive bracket session")
)
