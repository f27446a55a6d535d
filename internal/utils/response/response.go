// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, an
// index…). Error responses always look like:
//
//	{ "status": "error", "error": "Student ID must contain only numbers." }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
// Use this for request-level problems (empty body, malformed JSON) where
// the raw error text is what the client needs.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// RecordError converts a validation or record store error into the
// user-facing message the other views show, paired with the HTTP status
// it maps to:
//
//	validation failure   → 400 Bad Request
//	duplicate student ID → 409 Conflict
//	stale / bad index    → 404 Not Found
//	anything else        → 500 Internal Server Error
//
// ─────────────────────────────────────────────────────────────────────────────
func RecordError(err error) (int, Response) {
	var fieldErr *validation.FieldError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &fieldErr):
		status = http.StatusBadRequest
	case errors.Is(err, records.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, records.ErrIndexOutOfRange):
		status = http.StatusNotFound
	}

	return status, Response{
		Status: StatusError,
		Error:  form.Message(err),
	}
}
