// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// The router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject dependencies each handler is built by a factory that accepts
// the record store and a logger and returns the actual handler:
//
//	router.HandleFunc("/api/students", student.New(store, log))
//
// Records are addressed by their position in the list ({index}), exactly
// like the rows of the table a client renders. A position is only valid
// against the list it was read from; after any change the client must
// re-read the list.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// IndexVar is the mux path variable holding a record position.
const IndexVar = "index"

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Appends a new student built from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Jane Doe", "id": "101", "email": "jane@example.com", "contact": "5551234567" }
//
// Success response (201 Created), the new record's position:
//
//	{ "index": 0 }
//
// Error responses:
//
//	400 Bad Request → empty body, malformed JSON, or failed validation
//	409 Conflict → student ID already in use
//	500 Internal → storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store form.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("creating a student")

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		if err := validation.ValidateStudent(student); err != nil {
			writeRecordError(w, log, err)
			return
		}

		index, err := store.Add(r.Context(), student)
		if err != nil {
			writeRecordError(w, log, err)
			return
		}

		log.Info("student created",
			zap.String("id", student.ID),
			zap.Int("index", index))

		response.WriteJSON(w, http.StatusCreated, map[string]int{"index": index})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns the whole list in display order. Returns [] (not null) when
// there are no students.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store form.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("getting all students")

		response.WriteJSON(w, http.StatusOK, store.List())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByIndex handles GET /api/students/{index}
// Fetches the record at a position, e.g. to fill an edit form.
//
// Error responses:
//
//	400 Bad Request → index is not a valid integer
//	404 Not Found → no record at that position
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByIndex(store form.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := parseIndex(w, r)
		if !ok {
			return
		}
		log.Debug("getting a student", zap.Int("index", index))

		student, err := store.Get(index)
		if err != nil {
			writeRecordError(w, log, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{index}
// Replaces ALL fields of the record at a position. Keeping the record's
// own ID is fine; taking another record's ID is a 409.
//
// Success response (200 OK): the stored record.
//
// Error responses:
//
//	400 Bad Request → invalid index, empty body, or validation failure
//	404 Not Found → no record at that position
//	409 Conflict → student ID used by another record
//	500 Internal → storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store form.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := parseIndex(w, r)
		if !ok {
			return
		}
		log.Info("updating a student", zap.Int("index", index))

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		if err := validation.ValidateStudent(student); err != nil {
			writeRecordError(w, log, err)
			return
		}

		if err := store.Update(r.Context(), index, student); err != nil {
			writeRecordError(w, log, err)
			return
		}

		log.Info("student updated", zap.Int("index", index))
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{index}
// Removes the record at a position; later records shift down by one.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store form.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := parseIndex(w, r)
		if !ok {
			return
		}
		log.Info("deleting a student", zap.Int("index", index))

		if err := store.Delete(r.Context(), index); err != nil {
			writeRecordError(w, log, err)
			return
		}

		log.Info("student deleted", zap.Int("index", index))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// decodeStudent reads the JSON body and trims every field. It writes the
// 400 response itself and reports false when the body is unusable.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	var student types.Student

	err := json.NewDecoder(r.Body).Decode(&student)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Student{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Student{}, false
	}

	return student.Trimmed(), true
}

func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)[IndexVar])
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid index: must be an integer")))
		return 0, false
	}
	return index, true
}

func writeRecordError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, body := response.RecordError(err)
	if status == http.StatusInternalServerError {
		log.Error("record store operation failed", zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	response.WriteJSON(w, status, body)
}
