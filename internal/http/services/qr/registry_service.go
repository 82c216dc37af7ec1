package qr

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	"github.com/dropDatabas3/qrcall/internal/metrics"
	"github.com/dropDatabas3/qrcall/internal/notify"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
	"github.com/dropDatabas3/qrcall/internal/qrtoken"
)

// IssuedCode is the outcome of creating a code: the scannable URL plus an
// inline PNG rendering of it.
type IssuedCode struct {
	QRCodeURL   string
	QRCodeImage string
}

// RegistryService owns the lifecycle of QR codes: issuance, claiming and the
// active toggle.
type RegistryService struct {
	codes    repository.QRRepository
	users    repository.UserDirectory
	codec    *qrtoken.Codec
	verifier *qrtoken.Verifier
	links    *LinkService
	notifier *notify.ClaimNotifier
}

func NewRegistryService(d Deps) *RegistryService {
	return &RegistryService{
		codes:    d.Codes,
		users:    d.Users,
		codec:    d.Codec,
		verifier: d.Verifier,
		links:    d.Links,
		notifier: d.Notifier,
	}
}

func (s *RegistryService) issued(id string) (*IssuedCode, error) {
	token := s.codec.Encode(id)
	img, err := s.links.ImageDataURL(token)
	if err != nil {
		return nil, err
	}
	return &IssuedCode{QRCodeURL: s.links.URL(token), QRCodeImage: img}, nil
}

// CreateSelfIssued creates a code already bound to the caller. The profile is
// forwarded to the user directory first so the account carries the contact
// fields the call flow needs. Fails with repository.ErrAlreadyHasCode when
// the caller already owns a code.
func (s *RegistryService) CreateSelfIssued(ctx context.Context, userID string, profile repository.Profile) (*IssuedCode, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("qr.registry"),
		logger.Op("CreateSelfIssued"),
		logger.UserID(userID),
	)

	if err := s.users.UpdateProfile(ctx, userID, profile); err != nil {
		log.Error("profile update failed", logger.Err(err))
		return nil, err
	}

	id := uuid.NewString()
	code, err := s.codes.Create(ctx, id, &userID)
	if err != nil {
		log.Debug("create rejected", logger.Err(err))
		return nil, err
	}

	out, err := s.issued(code.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordIssued("self")
	log.Info("qr code issued", logger.QRID(code.ID))
	return out, nil
}

// CreateAdminIssued creates an unbound code for pre-printing. The first user
// to register it becomes its owner.
func (s *RegistryService) CreateAdminIssued(ctx context.Context) (*IssuedCode, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("qr.registry"),
		logger.Op("CreateAdminIssued"),
	)

	id := uuid.NewString()
	code, err := s.codes.Create(ctx, id, nil)
	if err != nil {
		log.Error("create failed", logger.Err(err))
		return nil, err
	}

	out, err := s.issued(code.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordIssued("admin")
	log.Info("unbound qr code issued", logger.QRID(code.ID))
	return out, nil
}

// Claim binds the caller to the code behind the token and returns the scan
// URL for that same token. First committer wins; the loser sees
// repository.ErrAlreadyClaimed. The caller's profile is stored regardless of
// which domain outcome the claim itself has, since the account fields are
// valid either way.
func (s *RegistryService) Claim(ctx context.Context, token, userID string, profile repository.Profile) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("qr.registry"),
		logger.Op("Claim"),
		logger.UserID(userID),
	)

	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		metrics.RecordClaim("invalid_code")
		return "", err
	}

	if err := s.users.UpdateProfile(ctx, userID, profile); err != nil {
		log.Error("profile update failed", logger.Err(err))
		return "", err
	}

	code, err := s.codes.Claim(ctx, id, userID)
	if err != nil {
		metrics.RecordClaim(claimResult(err))
		log.Debug("claim rejected", logger.QRID(id), logger.Err(err))
		return "", err
	}

	metrics.RecordClaim("claimed")
	log.Info("qr code claimed", logger.QRID(code.ID))
	s.notifier.CodeClaimed(code.ID, userID, time.Now().UTC())
	// The presented token stays the scannable one; re-encoding would move the
	// embedded date away from the code's creation day.
	return s.links.URL(token), nil
}

func claimResult(err error) string {
	switch {
	case errors.Is(err, repository.ErrAlreadyHasCode):
		return "already_has_code"
	case errors.Is(err, repository.ErrAlreadyClaimed):
		return "already_claimed"
	default:
		return "error"
	}
}

// SetActive toggles the caller's code. Idempotent; fails with
// repository.ErrNoCode when the caller owns nothing.
func (s *RegistryService) SetActive(ctx context.Context, userID string, active bool) (*repository.QRCode, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("qr.registry"),
		logger.Op("SetActive"),
		logger.UserID(userID),
	)

	code, err := s.codes.SetActive(ctx, userID, active)
	if err != nil {
		log.Debug("toggle rejected", logger.Err(err))
		return nil, err
	}

	log.Info("qr code toggled", logger.QRID(code.ID), logger.Bool("is_active", code.IsActive))
	return code, nil
}
