package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/shelf/internal/domain/filter"
	"github.com/okian/shelf/internal/domain/session"
)

// maxBodyBytes bounds request bodies on session routes.
const maxBodyBytes = 1 << 16

// SessionsHandler serves stateful browsing sessions.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type sessionView struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	State     filter.State  `json:"state"`
	Active    filter.Active `json:"active"`
}

// intentRequest is one intent in wire form. A body may carry a single
// intent or a list under "intents".
type intentRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type intentsRequest struct {
	intentRequest
	Intents []intentRequest `json:"intents"`
}

type categorySignalRequest struct {
	Category string `json:"category"`
}

func newSessionView(s *session.Session, state filter.State) sessionView {
	return sessionView{ID: s.ID(), CreatedAt: s.CreatedAt(), State: state, Active: state.Active()}
}

// HandleCreate handles POST /api/sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	s := h.deps.CreateSession(r.Context())
	w.Header().Set("Location", "/api/sessions/"+s.ID())
	writeJSON(w, http.StatusCreated, newSessionView(s, s.State()))
}

// HandleGet handles GET /api/sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s, s.State()))
}

// HandleDelete handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleIntent handles POST /api/sessions/{id}/intents. Every intent in the
// body is decoded before any is applied, so a bad one leaves the state
// untouched.
func (h *SessionsHandler) HandleIntent(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req intentsRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	wire := req.Intents
	if req.Type != "" {
		wire = append([]intentRequest{req.intentRequest}, wire...)
	}
	if len(wire) == 0 {
		writeDomainError(w, fmt.Errorf("%w: no intent given", ErrBadRequest))
		return
	}
	intents := make([]filter.Intent, 0, len(wire))
	for _, in := range wire {
		i, err := filter.Decode(in.Type, in.Value)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		intents = append(intents, i)
	}
	writeJSON(w, http.StatusOK, newSessionView(s, s.Apply(r.Context(), intents...)))
}

// HandleGames handles GET /api/sessions/{id}/games.
func (h *SessionsHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	c, version, err := h.deps.Catalog(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGamesResponse(s.State(), s.Visible(c, version)))
}

// HandleCategorySignal handles POST /api/sessions/{id}/signals/category,
// the jump-to-category action raised from a game's detail view.
func (h *SessionsHandler) HandleCategorySignal(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req categorySignalRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		writeDomainError(w, fmt.Errorf("%w: category is required", ErrBadRequest))
		return
	}
	state, err := s.SelectCategory(r.Context(), category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s, state))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
