package qrtoken

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
)

// fakeLister maps YYYYMMDD days to candidate identifiers.
type fakeLister struct {
	byDay map[string][]string
}

func (f *fakeLister) ListIDsCreatedOn(_ context.Context, day time.Time, limit int) ([]string, error) {
	ids := f.byDay[day.Format(dateLayout)]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func TestVerify_FindsIdentifier(t *testing.T) {
	c := fixedCodec(t, []string{"k"}, "20240101")
	tok := c.Encode("a1b2")

	lister := &fakeLister{byDay: map[string][]string{
		"20240101": {"zzzz", "a1b2", "yyyy"},
	}}
	v := NewVerifier(c.ring, lister, 0)

	id, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "a1b2", id)
}

func TestVerify_AfterKeyRotation(t *testing.T) {
	// Token issued while "old" was the signing key.
	issued := fixedCodec(t, []string{"old"}, "20240101")
	tok := issued.Encode("a1b2")

	lister := &fakeLister{byDay: map[string][]string{"20240101": {"a1b2"}}}

	// Ring after rotation: "new" signs, "old" demoted but still verifies.
	rotated, err := NewKeyRing([]string{"new", "old"})
	require.NoError(t, err)

	id, err := NewVerifier(rotated, lister, 0).Verify(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "a1b2", id)

	// Fresh tokens use the new signing key only.
	fresh := fixedCodec(t, []string{"new", "old"}, "20240101")
	dec, err := Decode(fresh.Encode("a1b2"))
	require.NoError(t, err)
	require.Equal(t, HashID([]byte("new"), "a1b2"), dec.RawHash)

	// And a ring without the old key rejects the old token.
	onlyNew, err := NewKeyRing([]string{"new"})
	require.NoError(t, err)
	_, err = NewVerifier(onlyNew, lister, 0).Verify(context.Background(), tok)
	require.ErrorIs(t, err, repository.ErrInvalidCode)
}

func TestVerify_DateScopingExcludesOtherDays(t *testing.T) {
	c := fixedCodec(t, []string{"k"}, "20240101")
	tok := c.Encode("a1b2")

	// The identifier exists, but only under the next day: the hash would
	// match, the date bound excludes it anyway.
	lister := &fakeLister{byDay: map[string][]string{"20240102": {"a1b2"}}}

	_, err := NewVerifier(c.ring, lister, 0).Verify(context.Background(), tok)
	require.ErrorIs(t, err, repository.ErrInvalidCode)
}

func TestVerify_MalformedTokenIsInvalidCode(t *testing.T) {
	ring, err := NewKeyRing([]string{"k"})
	require.NoError(t, err)
	v := NewVerifier(ring, &fakeLister{}, 0)

	_, err = v.Verify(context.Background(), "@@definitely-not-a-token@@")
	// Malformed and unknown are indistinguishable to callers.
	require.ErrorIs(t, err, repository.ErrInvalidCode)
}

func TestVerify_NoMatchAcrossCandidates(t *testing.T) {
	c := fixedCodec(t, []string{"k"}, "20240101")
	tok := c.Encode("missing")

	lister := &fakeLister{byDay: map[string][]string{"20240101": {"a", "b", "c"}}}

	_, err := NewVerifier(c.ring, lister, 0).Verify(context.Background(), tok)
	require.ErrorIs(t, err, repository.ErrInvalidCode)
}

func TestVerify_CandidateCap(t *testing.T) {
	c := fixedCodec(t, []string{"k"}, "20240101")
	tok := c.Encode("id-5")

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	lister := &fakeLister{byDay: map[string][]string{"20240101": ids}}

	// Under the cap the token verifies, over it the day is rejected outright.
	id, err := NewVerifier(c.ring, lister, 50).Verify(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "id-5", id)

	_, err = NewVerifier(c.ring, lister, 10).Verify(context.Background(), tok)
	require.ErrorIs(t, err, repository.ErrInvalidCode)
}
