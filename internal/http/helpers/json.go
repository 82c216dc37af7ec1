// Package helpers contains small shared utilities for the HTTP layer.
package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ReadJSON decodes JSON tolerantly (unknown fields are ignored). It checks
// Content-Type and caps the body at 1MB. Returns false if it already wrote an
// HTTP error.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		apperrors.WriteError(w, apperrors.ErrBadRequest.WithDetail("Content-Type must be application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		apperrors.WriteError(w, apperrors.ErrInvalidJSON)
		return false
	}
	return true
}

// ValidateStruct runs the validate tags on v. Returns false if it already
// wrote an HTTP error listing the first offending field.
func ValidateStruct(w http.ResponseWriter, v any) bool {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			detail := "field '" + strings.ToLower(first.Field()) + "' failed on '" + first.Tag() + "'"
			apperrors.WriteError(w, apperrors.ErrValidation.WithDetail(detail))
			return false
		}
		apperrors.WriteError(w, apperrors.ErrValidation)
		return false
	}
	return true
}

// WriteJSON writes a standard JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
