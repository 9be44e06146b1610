package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

// maxRequestBody caps every request body, JSON or protobuf.
const maxRequestBody = 64 << 10

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, msg, field string) {
	writeJSON(w, status, types.ErrorResponse{Error: code, Message: msg, Field: field})
}

func writeBadJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body", "")
}

// writeServiceError maps service error kinds to HTTP statuses. Anything
// without a kind is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrBadge):
		logger.Error().Err(err).Msg("badge failure")
		writeError(w, http.StatusInternalServerError, "badge_error", "badge generation failed", "qr_code")
		return
	default:
		logger.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error", "")
		return
	}

	var fe *service.FieldError
	if errors.As(err, &fe) {
		writeError(w, status, code, fe.Message, fe.Field)
		return
	}
	writeError(w, status, code, err.Error(), "")
}

// pathID parses the {id} URL parameter, writing a 404 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not_found", "Not found.", "")
		return 0, false
	}
	return id, true
}

func missingField(w http.ResponseWriter, field string) {
	writeError(w, http.StatusBadRequest, "validation_error", "This field is required.", field)
}
