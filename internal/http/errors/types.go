package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard shape for application errors crossing the HTTP
// boundary.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, logged but never exposed
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError converts a generic error into an AppError. Anything that is not
// already an AppError becomes a generic internal error with the original
// preserved as cause.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail returns a COPY with the detail set, so the base catalog entries
// are never mutated.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause returns a COPY with the original error attached.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Predefined errors

// 400 Bad Request

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request has invalid syntax or missing parameters.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Required fields are missing from the request.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "One or more fields failed validation.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrInvalidCode covers malformed tokens AND verification misses on the
	// scan path. Both map to the same response so callers cannot probe which
	// codes exist.
	ErrInvalidCode = &AppError{
		Code:       "INVALID_CODE",
		Message:    "The QR code is invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrAlreadyHasCode = &AppError{
		Code:       "ALREADY_HAS_CODE",
		Message:    "You already have a QR code.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrAlreadyClaimed = &AppError{
		Code:       "ALREADY_CLAIMED",
		Message:    "This QR code is already registered to another user.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// 401 Unauthorized

var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "The access token is invalid or malformed.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "No authentication token was provided.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 403 Forbidden

var (
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "You do not have permission to perform this action.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrCodeInactive = &AppError{
		Code:       "CODE_INACTIVE",
		Message:    "This QR code is currently deactivated.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 Not Found

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "The requested resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrNoCode = &AppError{
		Code:       "NO_CODE",
		Message:    "You do not have a QR code yet.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "The requested route does not exist.",
		HTTPStatus: http.StatusNotFound,
	}
)

// 405 Method Not Allowed

var (
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "The HTTP method is not allowed for this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// 409 Conflict

var (
	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "The request conflicts with the current server state.",
		HTTPStatus: http.StatusConflict,
	}
)

// 429 Too Many Requests

var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests. Try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 500+ Server Errors

var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "An internal server error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "The service is temporarily unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
