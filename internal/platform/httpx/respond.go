// Package httpx writes JSON and RFC 7807 problem responses for the record API
// and maps them back to store errors on the client side.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/admindash/internal/shared"
)

// MaxBodyBytes caps request bodies accepted by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ProblemContentType is the media type of problem responses.
const ProblemContentType = "application/problem+json"

// ProblemDetail is the RFC 7807 body. Fields carries per-field validation
// messages keyed by JSON field name.
type ProblemDetail struct {
	Type   string            `json:"type,omitempty"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, "application/json", status, data)
}

// Problem writes a problem response. An empty title falls back to the status text.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, ProblemDetail{Title: title, Status: status, Detail: detail})
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	write(w, ProblemContentType, p.Status, p)
}

func write(w http.ResponseWriter, contentType string, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON reads a single JSON document of at most MaxBodyBytes into target.
// Unknown fields, trailing data and oversized bodies are rejected with an
// error wrapping shared.ErrValidation.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", shared.ErrValidation, tooLarge.Limit)
		}
		return fmt.Errorf("%w: malformed body: %v", shared.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: malformed body: trailing data", shared.ErrValidation)
	}
	return nil
}
