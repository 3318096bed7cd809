package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ryanjpeterson/jimbos-show-log/internal/auth"
	"github.com/ryanjpeterson/jimbos-show-log/internal/logging"
	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	// Cause is the kind of the failure that rolled back an import.
	Cause string `json:"cause,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps err onto a status and a machine-readable kind. Unexpected
// errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classify(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error(), Kind: models.KindName(err)}

	var modelErr *models.Error
	if errors.As(err, &modelErr) && modelErr.Kind == models.ErrTransactionAborted && modelErr.Err != nil {
		resp.Cause = models.KindName(modelErr.Err)
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large", Kind: "validation"}
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, resp
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, resp
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrReferentialIntegrity):
		return http.StatusConflict, resp
	case errors.Is(err, store.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Kind: "unauthorized"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: "internal"}
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "validation"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, err)
			return false
		}
		badRequest(w, "invalid JSON payload")
		return false
	}
	return true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
