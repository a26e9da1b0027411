// Package response provides helpers for writing consistent HTTP responses.
//
// Reads return JSON, writes return a short plain-text confirmation, and
// every error uses the same JSON envelope so API consumers always know
// what a failure looks like.
package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases:
//
//	{ "status": "error", "error": "field Name is required" }
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error,omitempty"`
}

// Status string constants, so a typo is caught by the compiler.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode() appends a newline after the JSON; handy for curl.
	return json.NewEncoder(w).Encode(data)
}

// WriteText writes a plain-text body. Used for the write confirmations.
func WriteText(w http.ResponseWriter, status int, text string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	_, err := io.WriteString(w, text)
	return err
}

// WriteStatus writes a status line with no body.
func WriteStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// OK is the body of a successful health check.
func OK() Response {
	return Response{Status: StatusOK}
}

// GeneralError wraps any Go error into our standard Response shape.
//
//	response.WriteJSON(w, http.StatusInternalServerError,
//	    response.GeneralError(err))
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator.ValidationErrors into a single
// human-readable Response, one sentence per failing field:
//
//	{ "status": "error", "error": "field Name is required, field Age is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
