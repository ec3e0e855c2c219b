package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	bookingQueries "github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	bookingDomain "github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	timelineQueries "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	timelineDomain "github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// APIError is the body of every error response.
type APIError struct {
	Status   int                         `json:"-"`
	Code     string                      `json:"code"`
	Message  string                      `json:"message"`
	Conflict *bookingQueries.ConflictDTO `json:"conflict,omitempty"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &APIError{Status: status, Code: code, Message: message})
}

// writeDomainError maps application errors to HTTP responses. Unknown
// errors are logged and reported as 500 without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var conflict *bookingDomain.ConflictError
	if errors.As(err, &conflict) {
		dto := bookingQueries.ConflictFromError(conflict)
		writeJSON(w, http.StatusConflict, &APIError{
			Status:   http.StatusConflict,
			Code:     "booking_conflict",
			Message:  conflict.Error(),
			Conflict: &dto,
		})
		return
	}

	switch {
	case errors.Is(err, bookingDomain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, bookingDomain.ErrInvalidTransition),
		errors.Is(err, bookingDomain.ErrBookingConflict),
		errors.Is(err, timelineDomain.ErrVersionMismatch),
		errors.Is(err, timelineDomain.ErrNothingToUndo):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, bookingDomain.ErrInvalidInterval),
		errors.Is(err, bookingDomain.ErrNoOwner),
		errors.Is(err, bookingDomain.ErrLocationRequired),
		errors.Is(err, bookingDomain.ErrInvalidStatus),
		errors.Is(err, bookingQueries.ErrLocationRequired),
		errors.Is(err, timelineDomain.ErrInvalidDraftKey),
		errors.Is(err, timelineDomain.ErrUnknownShiftKind),
		errors.Is(err, timelineDomain.ErrUnknownPaintMode),
		errors.Is(err, timelineQueries.ErrDayKeyRequired),
		errors.Is(err, timelineQueries.ErrInvalidLayoutOptions):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// parseTimeParam reads an RFC 3339 query parameter. A missing value yields
// the zero time.
func parseTimeParam(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, errors.New(key + " must be an RFC 3339 timestamp")
	}
	return t, nil
}
