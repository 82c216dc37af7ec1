package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
)

func TestCreate_SelfIssuedBindsOwner(t *testing.T) {
	s := New()
	user := "user-1"

	code, err := s.Create(context.Background(), "qr-1", &user)
	require.NoError(t, err)
	require.Equal(t, "qr-1", code.ID)
	require.NotNil(t, code.UserID)
	require.Equal(t, user, *code.UserID)
	require.True(t, code.IsActive)

	_, err = s.Create(context.Background(), "qr-2", &user)
	require.ErrorIs(t, err, repository.ErrAlreadyHasCode)
}

func TestCreate_AdminIssuedIsUnbound(t *testing.T) {
	s := New()

	code, err := s.Create(context.Background(), "qr-1", nil)
	require.NoError(t, err)
	require.Nil(t, code.UserID)
	require.True(t, code.IsActive)

	_, err = s.Create(context.Background(), "qr-1", nil)
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestClaim_Transitions(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "qr-1", nil)
	require.NoError(t, err)

	code, err := s.Claim(ctx, "qr-1", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", *code.UserID)

	_, err = s.Claim(ctx, "qr-1", "alice")
	require.ErrorIs(t, err, repository.ErrAlreadyHasCode)

	_, err = s.Claim(ctx, "qr-1", "bob")
	require.ErrorIs(t, err, repository.ErrAlreadyClaimed)
}

func TestClaim_OwnerOfAnotherCodeSeesAlreadyHasCode(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "qr-alice", nil)
	require.NoError(t, err)
	_, err = s.Claim(ctx, "qr-alice", "alice")
	require.NoError(t, err)

	_, err = s.Create(ctx, "qr-other", nil)
	require.NoError(t, err)
	_, err = s.Claim(ctx, "qr-other", "bob")
	require.NoError(t, err)

	// Owning a code outranks the target being bound to someone else.
	_, err = s.Claim(ctx, "qr-other", "alice")
	require.ErrorIs(t, err, repository.ErrAlreadyHasCode)
}

func TestClaim_MissingRowIsCreatedBound(t *testing.T) {
	s := New()

	code, err := s.Claim(context.Background(), "qr-ghost", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", *code.UserID)
	require.True(t, code.IsActive)

	got, err := s.GetByUserID(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "qr-ghost", got.ID)
}

func TestClaim_ConcurrentExactlyOneWins(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "qr-1", nil)
	require.NoError(t, err)

	const claimers = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []string
	)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", n)
			if _, err := s.Claim(ctx, "qr-1", user); err == nil {
				mu.Lock()
				wins = append(wins, user)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, wins, 1)

	code, err := s.GetByID(ctx, "qr-1")
	require.NoError(t, err)
	require.Equal(t, wins[0], *code.UserID)
}

func TestSetActive(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := "user-1"

	_, err := s.SetActive(ctx, user, false)
	require.ErrorIs(t, err, repository.ErrNoCode)

	_, err = s.Create(ctx, "qr-1", &user)
	require.NoError(t, err)

	code, err := s.SetActive(ctx, user, false)
	require.NoError(t, err)
	require.False(t, code.IsActive)

	code, err = s.SetActive(ctx, user, true)
	require.NoError(t, err)
	require.True(t, code.IsActive)
}

func TestListIDsCreatedOn_HonorsLimit(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, fmt.Sprintf("qr-%d", i), nil)
		require.NoError(t, err)
	}

	today := time.Now().UTC()
	ids, err := s.ListIDsCreatedOn(ctx, today, 3)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	ids, err = s.ListIDsCreatedOn(ctx, today.AddDate(0, 0, -1), 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestRecordScan_ConcurrentCountsAreExact(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "qr-1", nil)
	require.NoError(t, err)

	const scans = 100
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// two distinct users, scanning over and over
			user := fmt.Sprintf("user-%d", n%2)
			err := s.RecordScan(ctx, "qr-1", &user, time.Now().UTC())
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	a, err := s.GetByQRID(ctx, "qr-1")
	require.NoError(t, err)
	require.Equal(t, int64(scans), a.ScanCount)
	require.Equal(t, int64(2), a.UniqueUsers)
	require.Len(t, a.UniqueUserIDs, 2)
	require.NotNil(t, a.LastScanned)
}

func TestRecordScan_AnonymousScannerCountsTotalOnly(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "qr-1", nil)
	require.NoError(t, err)

	require.NoError(t, s.RecordScan(ctx, "qr-1", nil, time.Now().UTC()))

	a, err := s.GetByQRID(ctx, "qr-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), a.ScanCount)
	require.Equal(t, int64(0), a.UniqueUsers)
}

func TestRecordScan_UnknownCode(t *testing.T) {
	s := New()
	err := s.RecordScan(context.Background(), "nope", nil, time.Now().UTC())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAggregate(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "qr-1", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, "qr-2", nil)
	require.NoError(t, err)

	alice := "alice"
	require.NoError(t, s.RecordScan(ctx, "qr-1", &alice, time.Now().UTC()))
	require.NoError(t, s.RecordScan(ctx, "qr-1", &alice, time.Now().UTC()))
	require.NoError(t, s.RecordScan(ctx, "qr-2", &alice, time.Now().UTC()))

	agg, err := s.Aggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), agg.TotalQRCodes)
	require.Equal(t, int64(3), agg.TotalScans)
	require.Equal(t, int64(2), agg.TotalUniqueUsers)
}

func TestUpdateProfile(t *testing.T) {
	s := New()
	p := repository.Profile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	require.NoError(t, s.UpdateProfile(context.Background(), "user-1", p))

	got, ok := s.Profile("user-1")
	require.True(t, ok)
	require.Equal(t, p, got)
}
