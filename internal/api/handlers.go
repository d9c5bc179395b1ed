package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rddelacosta/UKBinCollectionData/internal/core"
	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/observability"
	"github.com/rddelacosta/UKBinCollectionData/internal/store"
)

func (s *Server) handleListCouncils(w http.ResponseWriter, r *http.Request) {
	councils, err := s.store.ListCouncils(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch councils: "+err.Error())
		return
	}
	// Return empty list if nil to be JSON friendly
	if councils == nil {
		councils = []store.Council{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": councils,
		"total": len(councils),
	})
}

func (s *Server) handleGetCollections(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if _, err := s.store.GetCouncil(r.Context(), slug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Unknown council: "+slug)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load council: "+err.Error())
		return
	}

	collections, err := s.store.GetCollections(r.Context(), slug)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load collections: "+err.Error())
		return
	}
	if len(collections) == 0 {
		respondError(w, http.StatusNotFound, "No collections cached for "+slug+"; refresh it first")
		return
	}
	if limit := parseLimit(r); limit > 0 && limit < len(collections) {
		collections = collections[:limit]
	}

	respondJSON(w, http.StatusOK, payloadFrom(collections, s.dateFormat))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	payload, err := s.refresher.Refresh(r.Context(), slug)
	if err != nil {
		respondError(w, statusForError(err), "Refresh failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

// payloadFrom renders cached rows into the wire shape, one fixed date
// format regardless of which adapter originally produced the records.
func payloadFrom(collections []store.Collection, dateFormat string) extract.Payload {
	bins := make([]extract.Bin, 0, len(collections))
	for _, col := range collections {
		bins = append(bins, extract.Bin{Type: col.BinType, CollectionDate: col.CollectionDate.Format(dateFormat)})
	}
	return extract.Payload{Bins: bins}
}

// parseLimit reads the optional limit query parameter; zero means no cap.
func parseLimit(r *http.Request) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownCouncil), errors.Is(err, extract.ErrNoCollectionsFound):
		return http.StatusNotFound
	case errors.Is(err, extract.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrSourceUnavailable), errors.Is(err, extract.ErrEmptyContent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
