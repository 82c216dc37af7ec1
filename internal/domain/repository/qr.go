package repository

import (
	"context"
	"time"
)

// QRCode is one issued code. The identifier is a UUID string generated at
// creation time and never changes. UserID is nil until the code is claimed.
type QRCode struct {
	ID        string
	UserID    *string
	IsActive  bool
	CreatedAt time.Time
}

// Bound reports whether the code has an owner.
func (q *QRCode) Bound() bool { return q.UserID != nil }

// QRAnalytics is the per-code scan counter state, 1:1 with QRCode.
type QRAnalytics struct {
	QRID          string
	ScanCount     int64
	UniqueUsers   int64
	UniqueUserIDs []string
	LastScanned   *time.Time
}

// AggregateAnalytics are the service-wide totals.
type AggregateAnalytics struct {
	TotalQRCodes     int64
	TotalScans       int64
	TotalUniqueUsers int64
}

// QRRepository owns the QRCode lifecycle.
//
// Create and Claim must be atomic with respect to the one-code-per-user and
// one-user-per-code invariants: concurrent violating writers must observe
// ErrAlreadyHasCode / ErrAlreadyClaimed rather than both succeeding.
type QRRepository interface {
	// Create inserts a new code plus its zero-valued analytics row.
	// userID nil creates an unbound (admin-issued) code.
	// Returns ErrAlreadyHasCode when the user already owns a code.
	Create(ctx context.Context, id string, userID *string) (*QRCode, error)

	// GetByID returns the code or ErrNotFound.
	GetByID(ctx context.Context, id string) (*QRCode, error)

	// GetByUserID returns the code owned by the user, or ErrNotFound.
	GetByUserID(ctx context.Context, userID string) (*QRCode, error)

	// ListIDsCreatedOn returns identifiers of codes created on the given UTC
	// day, capped at limit. Used by the verifier to bound its search.
	ListIDsCreatedOn(ctx context.Context, day time.Time, limit int) ([]string, error)

	// Claim binds an unbound code to the user and reactivates it.
	// First committer wins. Returns ErrAlreadyHasCode when the user owns a
	// code, ErrAlreadyClaimed when another user got there first, and
	// ErrNotFound when no row with that id exists.
	Claim(ctx context.Context, id, userID string) (*QRCode, error)

	// SetActive toggles the active flag on the user's code. Idempotent.
	// Returns ErrNoCode when the user owns nothing.
	SetActive(ctx context.Context, userID string, active bool) (*QRCode, error)
}

// AnalyticsRepository mutates and reads scan analytics.
type AnalyticsRepository interface {
	// RecordScan applies one scan event atomically: scan_count always
	// increments; a non-nil scanner not seen before also increments
	// unique_users. Concurrent calls on the same code must not lose updates.
	RecordScan(ctx context.Context, qrID string, scannerID *string, at time.Time) error

	// GetByQRID returns the analytics row or ErrNotFound.
	GetByQRID(ctx context.Context, qrID string) (*QRAnalytics, error)

	// Aggregate sums counters across all codes. Read-only; eventual
	// consistency with in-flight scans is acceptable.
	Aggregate(ctx context.Context) (*AggregateAnalytics, error)
}

// Profile is the subset of user identity data this service forwards to the
// external user directory when issuing or claiming a code.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// UserDirectory is the collaborator holding user identities. The QR service
// only pushes profile updates through it; account management lives elsewhere.
type UserDirectory interface {
	UpdateProfile(ctx context.Context, userID string, p Profile) error
}

// Pinger is implemented by stores that can report connectivity for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}
