package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// statusFor maps an error chain to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tcerrors.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, tcerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, tcerrors.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, tcerrors.ErrMissingAuthorization),
		errors.Is(err, tcerrors.ErrMissingTeam),
		errors.Is(err, tcerrors.ErrPathTraversal),
		errors.Is(err, tcerrors.ErrInvalidArtifactPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as an errorResponse. Client errors carry
// the operator-facing message; server errors carry the error text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	logger := hlog.FromRequest(r)

	msg := err.Error()
	switch {
	case code == http.StatusRequestEntityTooLarge:
		msg = "Request body is too large"
		logger.Warn().Err(err).Int("status", code).Msg("request rejected")
	case code < http.StatusInternalServerError:
		msg = tcerrors.UserMessage(err)
		logger.Debug().Err(err).Int("status", code).Msg("request rejected")
	default:
		logger.Error().Err(err).Int("status", code).Msg("request failed")
	}

	writeJSON(w, code, errorResponse{
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    msg,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
