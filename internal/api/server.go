package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/store"
)

// Refresher runs the acquisition and extraction pipeline for one council.
// Satisfied by core.RefreshService.
type Refresher interface {
	Refresh(ctx context.Context, slug string) (extract.Payload, error)
}

type Server struct {
	router     *chi.Mux
	store      *store.Store
	refresher  Refresher
	dateFormat string
}

func NewServer(store *store.Store, refresher Refresher, dateFormat string) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		store:      store,
		refresher:  refresher,
		dateFormat: dateFormat,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/councils", s.handleListCouncils)
	s.router.Get("/councils/{slug}/collections", s.handleGetCollections)
	s.router.Post("/councils/{slug}/refresh", s.handleRefresh)
	s.router.Get("/stats", s.handleStats)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
