package repository

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a constraint violation (duplicate, lost race).
	ErrConflict = errors.New("conflict")

	// ErrAlreadyHasCode indicates the user already owns a QR code.
	ErrAlreadyHasCode = errors.New("user already has a qr code")

	// ErrAlreadyClaimed indicates the QR code is bound to another user.
	ErrAlreadyClaimed = errors.New("qr code already claimed")

	// ErrNoCode indicates the user owns no QR code.
	ErrNoCode = errors.New("user has no qr code")

	// ErrCodeInactive indicates the QR code has been deactivated by its owner.
	ErrCodeInactive = errors.New("qr code is inactive")

	// ErrInvalidCode indicates a token that did not verify: malformed,
	// no candidate match, or over the search cap. One value for all three so
	// callers cannot probe which codes exist.
	ErrInvalidCode = errors.New("invalid qr code")

	// ErrInvalidInput indicates malformed input data.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
