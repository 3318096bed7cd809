package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	doc, err := models.DecodeImportDocument(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.archive.Import(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.archive.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("show-log-%s.json", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, doc)
}
