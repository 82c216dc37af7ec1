// Package errors defines the HTTP error envelope and the mapping from domain
// errors to wire responses.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
)

// errorResponse controls exactly which fields reach the client.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError writes an HTTP response for the given error. Non-AppError values
// become a generic internal error.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			logger.String("code", appErr.Code),
			logger.Err(appErr),
		)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// FromRepository maps domain sentinel errors onto catalog entries. Unknown
// errors become internal errors with the cause attached.
func FromRepository(err error) *AppError {
	switch {
	case errors.Is(err, repository.ErrAlreadyHasCode):
		return ErrAlreadyHasCode
	case errors.Is(err, repository.ErrAlreadyClaimed):
		return ErrAlreadyClaimed
	case errors.Is(err, repository.ErrNoCode):
		return ErrNoCode
	case errors.Is(err, repository.ErrCodeInactive):
		return ErrCodeInactive
	case errors.Is(err, repository.ErrInvalidCode):
		return ErrInvalidCode
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	default:
		return ErrInternalServerError.WithCause(err)
	}
}
