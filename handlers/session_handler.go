package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/tournament-bracket/models"
	"github.com/Dosada05/tournament-bracket/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: ss,
	}
}

type createSessionRequest struct {
	Name string `json:"name"`
}

type generateBracketRequest struct {
	LeafCount int                `json:"leaf_count"`
	Rankings  map[string]float64 `json:"rankings"`
	Seed      *int64             `json:"seed"`
}

type advanceRequest struct {
	Winners []string `json:"winners"`
}

// CreateSession godoc
// @Summary Create a bracket session
// @Tags sessions
// @Accept json
// @Produce json
// @Param body body createSessionRequest true "Session name"
// @Success 201 {object} map[string]interface{} "Session created"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Name already in use"
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input createSessionRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.Create(r.Context(), services.CreateSessionInput{Name: input.Name})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/sessions/%d", session.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListSessions godoc
// @Summary List bracket sessions
// @Tags sessions
// @Produce json
// @Param status query string false "open or archived"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryInt(r, "limit")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := getQueryInt(r, "offset")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input := services.ListSessionsInput{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.SessionStatus(raw)
		if status != models.SessionStatusOpen && status != models.SessionStatusArchived {
			badRequestResponse(w, r, fmt.Errorf("unknown session status %q", raw))
			return
		}
		input.Status = &status
	}

	sessions, err := h.sessionService.List(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sessions": sessions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSession godoc
// @Summary Get a session with its bracket, match queue and state
// @Tags sessions
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /sessions/{sessionID} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags sessions
// @Param sessionID path int true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /sessions/{sessionID} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sessionService.Delete(r.Context(), sessionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateBracket godoc
// @Summary Generate and seed a new bracket
// @Tags brackets
// @Description Replaces the active bracket and clears the undo history. leaf_count 0 sizes the bracket to the number of competitors.
// @Accept json
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param body body generateBracketRequest true "Rankings keyed by competitor"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid size or too many competitors"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Session archived"
// @Router /sessions/{sessionID}/bracket [post]
func (h *SessionHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input generateBracketRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.Generate(r.Context(), sessionID, services.GenerateInput{
		LeafCount: input.LeafCount,
		Rankings:  input.Rankings,
		Seed:      input.Seed,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetBracket godoc
// @Summary Clear the active bracket and its history
// @Tags brackets
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /sessions/{sessionID}/bracket [delete]
func (h *SessionHandler) ResetBracket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.Reset(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatchups godoc
// @Summary Matchups ready to be decided
// @Tags brackets
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /sessions/{sessionID}/matchups [get]
func (h *SessionHandler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	queue, err := h.sessionService.ListMatchups(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_queue": queue}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceBracket godoc
// @Summary Record winners of ready matchups
// @Tags brackets
// @Description Every ready matchup with exactly one side listed in winners is settled. Other matchups stay queued.
// @Accept json
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param body body advanceRequest true "Winning competitors"
// @Success 200 {object} services.AdvanceResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "No active bracket or session archived"
// @Router /sessions/{sessionID}/advance [post]
func (h *SessionHandler) AdvanceBracket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input advanceRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.sessionService.Advance(r.Context(), sessionID, input.Winners)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RevertBracket godoc
// @Summary Undo the most recent advancement
// @Tags brackets
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Nothing to undo"
// @Router /sessions/{sessionID}/revert [post]
func (h *SessionHandler) RevertBracket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.Revert(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteSession godoc
// @Summary Archive the bracket and close the session
// @Tags sessions
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string "Archive upload failed"
// @Router /sessions/{sessionID}/complete [post]
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.Complete(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
