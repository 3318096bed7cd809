package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

func (s *Server) handleListConcerts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.ConcertFilter{
		Query: strings.TrimSpace(query.Get("q")),
		City:  strings.TrimSpace(query.Get("city")),
	}
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			badRequest(w, "year must be a positive number")
			return
		}
		filter.Year = year
	}

	concerts, err := s.concerts.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, concerts)
}

func (s *Server) handleGetConcert(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	concert, err := s.concerts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, concert)
}

func (s *Server) handleArtist(w http.ResponseWriter, r *http.Request) {
	concerts, err := s.concerts.ListByArtist(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, concerts)
}

func (s *Server) handleCreateConcert(w http.ResponseWriter, r *http.Request) {
	var in models.ConcertInput
	if !decodeJSON(w, r, &in) {
		return
	}

	created, err := s.concerts.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateConcert(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var in models.ConcertInput
	if !decodeJSON(w, r, &in) {
		return
	}

	updated, err := s.concerts.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteConcert(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := s.concerts.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Compute(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
