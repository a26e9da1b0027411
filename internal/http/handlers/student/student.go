// Package student contains all HTTP handlers for the Student resource.
//
// HANDLER PATTERN: closure / factory
// ────────────────────────────────────
// The router wants func(http.ResponseWriter, *http.Request), which has no
// room for a database. Each exported function here takes the storage
// dependency once at startup and returns the handler that runs on every
// request:
//
//	router.HandleFunc("POST /students", student.New(storage))
//
// Handlers only see the storage.Storage interface, never a concrete
// backend.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-docstore/internal/http/middleware"
	"github.com/aanand-mishra/students-docstore/internal/storage"
	"github.com/aanand-mishra/students-docstore/internal/types"
	"github.com/aanand-mishra/students-docstore/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Confirmation bodies for the write routes.
const (
	MsgAdded   = "Student added successfully"
	MsgUpdated = "Student updated successfully"
	MsgDeleted = "Student deleted successfully"
)

// validator.Validate caches struct metadata and is safe for concurrent
// use, so one instance serves every request.
var validate = validator.New()

// New handles POST /students.
//
// Request body (JSON):
//
//	{ "name": "Ana", "age": 20, "subject": "Math" }
//
// Success: 200, text "Student added successfully", Location header
// pointing at the new record.
//
// Errors: 400 for an empty/malformed/invalid body, 500 for storage.
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())
		log.Info("creating a student")

		input, ok := decodeInput(w, r)
		if !ok {
			return
		}

		id, err := storage.CreateStudent(r.Context(), input.Student())
		if err != nil {
			log.Error("error creating student", slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		log.Info("student created", slog.String("id", id))

		w.Header().Set("Location", "/students/"+id)
		response.WriteText(w, http.StatusOK, MsgAdded)
	}
}

// GetByID handles GET /students/{id}.
//
// Success: 200 with the student as JSON.
// An id that is malformed or matches nothing is a plain 404 with no body.
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())

		// r.PathValue reads the {id} wildcard of the Go 1.22+ mux pattern.
		id := r.PathValue("id")
		log.Info("getting a student", slog.String("id", id))

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /students.
//
// Returns a JSON array of every student; [] (not null) when empty.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())
		log.Info("getting all students")

		students, err := storage.ListStudents(r.Context())
		if err != nil {
			log.Error("error getting students", slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /students/{id}.
//
// Sets name, age and subject; the id is never changed, even if the body
// carries an "_id". A well-formed id that matches nothing still answers
// 200: the update is a no-op.
//
// Errors: 400 for a malformed id or body, 500 for storage.
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())
		id := r.PathValue("id")
		log.Info("updating a student", slog.String("id", id))

		input, ok := decodeInput(w, r)
		if !ok {
			return
		}

		if err := storage.UpdateStudentByID(r.Context(), id, input.Student()); err != nil {
			log.Error("error updating student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		log.Info("student updated", slog.String("id", id))
		response.WriteText(w, http.StatusOK, MsgUpdated)
	}
}

// Delete handles DELETE /students/{id}.
//
// Errors: 400 for a malformed id, 500 for storage.
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())
		id := r.PathValue("id")
		log.Info("deleting a student", slog.String("id", id))

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			log.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			writeStorageError(w, err)
			return
		}

		log.Info("student deleted", slog.String("id", id))
		response.WriteText(w, http.StatusOK, MsgDeleted)
	}
}

// decodeInput reads and validates the JSON body shared by create and
// update. On failure it has already written the 400 and returns false.
func decodeInput(w http.ResponseWriter, r *http.Request) (types.StudentInput, bool) {
	var input types.StudentInput

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&input)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return input, false
	}
	if err != nil {
		// Malformed JSON or a wrong type, e.g. age -1 or "twenty".
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return input, false
	}

	// Anything after the object, even a second object, is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body must contain a single JSON object")))
		return input, false
	}

	if err := validate.Struct(input); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return input, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return input, false
	}

	return input, true
}

// writeStorageError maps gateway errors onto status codes:
//
//	ErrNotFound          → 404, no body (also covers a bad id on GET)
//	ErrInvalidIdentifier → 400
//	anything else        → 500
func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteStatus(w, http.StatusNotFound)
	case errors.Is(err, storage.ErrInvalidIdentifier):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
	default:
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
