// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/okian/shelf/internal/adapters/repository"
	"github.com/okian/shelf/internal/domain/filter"
	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/internal/domain/session"
)

const corsMaxAge = 300

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ready is closed once the catalog is loaded.
	Ready() <-chan struct{}

	// Catalog returns the loaded catalog and its version, or an error
	// wrapping repository.ErrNotReady.
	Catalog(ctx context.Context) (*model.Catalog, uint64, error)

	CreateSession(ctx context.Context) *session.Session
	Session(ctx context.Context, id string) (*session.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Server wires HTTP routes for the catalog API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	catalogHandler  *CatalogHandler
	sessionsHandler *SessionsHandler
	allowedOrigins  []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(statsProvider),
		catalogHandler:  NewCatalogHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
		allowedOrigins:  []string{"http://localhost:*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAge,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/readyz", s.healthHandler.HandleReady)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.catalogHandler.HandleCatalog)
		r.Get("/games", s.catalogHandler.HandleGames)
		r.Get("/games/{name}", s.catalogHandler.HandleGame)
		r.Get("/categories", s.catalogHandler.HandleCategories)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.sessionsHandler.HandleCreate)
			r.Get("/{id}", s.sessionsHandler.HandleGet)
			r.Delete("/{id}", s.sessionsHandler.HandleDelete)
			r.Post("/{id}/intents", s.sessionsHandler.HandleIntent)
			r.Get("/{id}/games", s.sessionsHandler.HandleGames)
			r.Post("/{id}/signals/category", s.sessionsHandler.HandleCategorySignal)
		})
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps sentinel errors from lower layers to HTTP codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, ErrGameNotFound):
		writeError(w, http.StatusNotFound, "game_not_found", err)
	case errors.Is(err, filter.ErrUnknownIntent):
		writeError(w, http.StatusBadRequest, "unknown_intent", err)
	case errors.Is(err, filter.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, "invalid_value", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
