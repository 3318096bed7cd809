package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ryanjpeterson/jimbos-show-log/internal/media"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

type deleteUploadRequest struct {
	FileURL   string `json:"fileUrl"`
	ConcertID int64  `json:"concertId,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, err)
			return
		}
		badRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	concertID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("concertId")), 10, 64)
	if err != nil || concertID <= 0 {
		badRequest(w, "concertId is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := s.media.Upload(r.Context(), media.UploadRequest{
		ConcertID:   concertID,
		IsMainImage: r.FormValue("isMainImage") == "true",
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	var req deleteUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.media.Remove(r.Context(), req.FileURL, req.ConcertID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
