package api

import (
	"encoding/json"
	"net/http"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var verr *apperrors.ValidationError
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized), apperrors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrStrategyInUse):
		return http.StatusConflict
	case apperrors.As(err, &verr),
		apperrors.Is(err, apperrors.ErrInvalidTrade),
		apperrors.Is(err, apperrors.ErrInvalidJournal),
		apperrors.Is(err, apperrors.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are logged
// and hidden from the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := ErrorResponse{
		Error:     err.Error(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	var verr *apperrors.ValidationError
	if apperrors.As(err, &verr) {
		body.Field = verr.Field
	}

	switch status {
	case http.StatusInternalServerError:
		log := logging.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		body.Error = "internal error"
	case http.StatusUnauthorized:
		body.Error = "unauthorized"
	}
	respondJSON(w, status, body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewValidationError("body", nil, err.Error())
	}
	return nil
}
