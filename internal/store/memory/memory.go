// Package memory implements the domain repositories in process memory.
//
// It mirrors the postgres adapter's invariants under a single mutex, which
// makes it the fixture for the concurrency tests and the default driver for
// local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
)

type analyticsState struct {
	scanCount   int64
	uniqueUsers int64
	uniqueIDs   []string
	seen        map[string]struct{}
	lastScanned *time.Time
}

// Store holds all state. The zero value is not usable; call New.
type Store struct {
	mu        sync.Mutex
	codes     map[string]repository.QRCode
	byUser    map[string]string // userID -> qrID
	analytics map[string]*analyticsState
	profiles  map[string]repository.Profile
}

func New() *Store {
	return &Store{
		codes:     make(map[string]repository.QRCode),
		byUser:    make(map[string]string),
		analytics: make(map[string]*analyticsState),
		profiles:  make(map[string]repository.Profile),
	}
}

// QRCodes returns the QRRepository view of the store.
func (s *Store) QRCodes() repository.QRRepository { return s }

// Analytics returns the AnalyticsRepository view of the store.
func (s *Store) Analytics() repository.AnalyticsRepository { return s }

// Users returns the UserDirectory view of the store.
func (s *Store) Users() repository.UserDirectory { return s }

func (s *Store) Ping(context.Context) error { return nil }

func copyCode(c repository.QRCode) *repository.QRCode {
	out := c
	if c.UserID != nil {
		u := *c.UserID
		out.UserID = &u
	}
	return &out
}

// QRRepository

func (s *Store) Create(_ context.Context, id string, userID *string) (*repository.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != nil {
		if _, taken := s.byUser[*userID]; taken {
			return nil, repository.ErrAlreadyHasCode
		}
	}
	if _, dup := s.codes[id]; dup {
		return nil, repository.ErrConflict
	}

	code := repository.QRCode{ID: id, IsActive: true, CreatedAt: time.Now().UTC()}
	if userID != nil {
		u := *userID
		code.UserID = &u
		s.byUser[u] = id
	}
	s.codes[id] = code
	s.analytics[id] = &analyticsState{seen: make(map[string]struct{})}
	return copyCode(code), nil
}

func (s *Store) GetByID(_ context.Context, id string) (*repository.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyCode(code), nil
}

func (s *Store) GetByUserID(_ context.Context, userID string) (*repository.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	code := s.codes[id]
	return copyCode(code), nil
}

func (s *Store) ListIDsCreatedOn(_ context.Context, day time.Time, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := day.UTC().Format("20060102")
	var ids []string
	for id, code := range s.codes {
		if code.CreatedAt.UTC().Format("20060102") == want {
			ids = append(ids, id)
			if len(ids) >= limit {
				break
			}
		}
	}
	return ids, nil
}

func (s *Store) Claim(_ context.Context, id, userID string) (*repository.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUser[userID]; taken {
		return nil, repository.ErrAlreadyHasCode
	}

	code, ok := s.codes[id]
	if !ok {
		// Defensive path, mirroring the pg adapter: a verified identifier
		// with no stored row is created bound and active.
		u := userID
		code = repository.QRCode{ID: id, UserID: &u, IsActive: true, CreatedAt: time.Now().UTC()}
		s.codes[id] = code
		s.byUser[userID] = id
		s.analytics[id] = &analyticsState{seen: make(map[string]struct{})}
		return copyCode(code), nil
	}

	if code.UserID != nil {
		if *code.UserID == userID {
			return nil, repository.ErrAlreadyHasCode
		}
		return nil, repository.ErrAlreadyClaimed
	}

	u := userID
	code.UserID = &u
	code.IsActive = true
	s.codes[id] = code
	s.byUser[userID] = id
	return copyCode(code), nil
}

func (s *Store) SetActive(_ context.Context, userID string, active bool) (*repository.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, repository.ErrNoCode
	}
	code := s.codes[id]
	code.IsActive = active
	s.codes[id] = code
	return copyCode(code), nil
}

// AnalyticsRepository

func (s *Store) RecordScan(_ context.Context, qrID string, scannerID *string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analytics[qrID]
	if !ok {
		return repository.ErrNotFound
	}

	a.scanCount++
	if scannerID != nil {
		if _, seen := a.seen[*scannerID]; !seen {
			a.seen[*scannerID] = struct{}{}
			a.uniqueIDs = append(a.uniqueIDs, *scannerID)
			a.uniqueUsers++
		}
	}
	t := at
	a.lastScanned = &t
	return nil
}

func (s *Store) GetByQRID(_ context.Context, qrID string) (*repository.QRAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analytics[qrID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	out := repository.QRAnalytics{
		QRID:          qrID,
		ScanCount:     a.scanCount,
		UniqueUsers:   a.uniqueUsers,
		UniqueUserIDs: append([]string(nil), a.uniqueIDs...),
	}
	if a.lastScanned != nil {
		t := *a.lastScanned
		out.LastScanned = &t
	}
	return &out, nil
}

func (s *Store) Aggregate(context.Context) (*repository.AggregateAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := repository.AggregateAnalytics{TotalQRCodes: int64(len(s.codes))}
	for _, a := range s.analytics {
		agg.TotalScans += a.scanCount
		agg.TotalUniqueUsers += a.uniqueUsers
	}
	return &agg, nil
}

// UserDirectory

func (s *Store) UpdateProfile(_ context.Context, userID string, p repository.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = p
	return nil
}

// Profile returns the stored profile, for tests.
func (s *Store) Profile(userID string) (repository.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p, ok
}
