package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

func (s *Server) handleListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.venues.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

func (s *Server) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	venue, err := s.venues.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (s *Server) handleGetVenueBySlug(w http.ResponseWriter, r *http.Request) {
	venue, err := s.venues.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (s *Server) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	var rec models.VenueRecord
	if !decodeJSON(w, r, &rec) {
		return
	}

	created, err := s.venues.Create(r.Context(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var rec models.VenueRecord
	if !decodeJSON(w, r, &rec) {
		return
	}

	updated, err := s.venues.Update(r.Context(), id, rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := s.venues.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLegacyCreate(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["type"] {
	case "concert":
		s.handleCreateConcert(w, r)
	case "venue":
		s.handleCreateVenue(w, r)
	default:
		badRequest(w, "invalid create type")
	}
}

func (s *Server) handleLegacyEdit(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["type"] {
	case "concert":
		s.handleUpdateConcert(w, r)
	case "venue":
		s.handleUpdateVenue(w, r)
	default:
		badRequest(w, "invalid edit type")
	}
}

func (s *Server) handleLegacyDelete(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["type"] {
	case "concert":
		s.handleDeleteConcert(w, r)
	case "venue":
		s.handleDeleteVenue(w, r)
	default:
		badRequest(w, "invalid delete type")
	}
}
