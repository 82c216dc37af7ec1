package qrtoken

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
)

// CandidateLister narrows the verification search to codes created on the
// token's embedded date. Satisfied by repository.QRRepository.
type CandidateLister interface {
	ListIDsCreatedOn(ctx context.Context, day time.Time, limit int) ([]string, error)
}

// DefaultMaxCandidates bounds the per-verification HMAC work. The candidate
// set is codes-created-that-day, small in practice; hitting the cap means
// something abnormal and the token is treated as unverifiable.
const DefaultMaxCandidates = 1000

// Verifier recovers a raw QR identifier from an opaque token.
type Verifier struct {
	ring          *KeyRing
	candidates    CandidateLister
	maxCandidates int
}

// NewVerifier builds a verifier. maxCandidates <= 0 selects the default cap.
func NewVerifier(ring *KeyRing, candidates CandidateLister, maxCandidates int) *Verifier {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Verifier{ring: ring, candidates: candidates, maxCandidates: maxCandidates}
}

// Verify decodes the token and searches the date-scoped candidate set with
// every ring key, newest first. All failure modes (malformed token, no
// candidates, no key match, cap exceeded) collapse into
// repository.ErrInvalidCode so callers cannot distinguish which codes exist.
//
// Known precision limit: the search window is exactly the embedded UTC date.
// A code whose stored creation timestamp falls on a different UTC day than
// the token it was issued with (clock skew across the midnight boundary)
// will not verify. Widening the window would reintroduce the full-table
// scan this scheme exists to avoid.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	dec, err := Decode(token)
	if err != nil {
		return "", repository.ErrInvalidCode
	}

	// limit+1 so an over-cap day is detectable.
	ids, err := v.candidates.ListIDsCreatedOn(ctx, dec.Date, v.maxCandidates+1)
	if err != nil {
		return "", err
	}
	if len(ids) > v.maxCandidates {
		logger.From(ctx).Warn("verification candidate cap exceeded",
			logger.Op("Verifier.Verify"),
			logger.TokenDate(dec.Date.Format(dateLayout)),
			logger.Count(len(ids)),
		)
		return "", repository.ErrInvalidCode
	}

	want := []byte(dec.RawHash)
	for _, id := range ids {
		for _, key := range v.ring.VerificationKeys() {
			got := []byte(HashID(key, id))
			if subtle.ConstantTimeCompare(got, want) == 1 {
				return id, nil
			}
		}
	}

	return "", repository.ErrInvalidCode
}
