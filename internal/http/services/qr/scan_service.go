package qr

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	"github.com/dropDatabas3/qrcall/internal/metrics"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
	"github.com/dropDatabas3/qrcall/internal/qrtoken"
)

// Scan actions.
const (
	ActionMakeCall = "make_call"
	ActionRegister = "register"
)

// ScanService resolves a scanned token to the action the scanner should take.
type ScanService struct {
	codes     repository.QRRepository
	analytics repository.AnalyticsRepository
	verifier  *qrtoken.Verifier
}

func NewScanService(d Deps) *ScanService {
	return &ScanService{codes: d.Codes, analytics: d.Analytics, verifier: d.Verifier}
}

// Scan verifies the token, enforces the active flag and records the scan.
// scannerID is nil for anonymous scanners; they count towards scan_count but
// not unique_users.
//
// An inactive code records nothing and fails with repository.ErrCodeInactive.
// Unverifiable tokens fail with repository.ErrInvalidCode; a code missing
// after successful verification fails with repository.ErrNotFound.
func (s *ScanService) Scan(ctx context.Context, token string, scannerID *string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("qr.scan"),
		logger.Op("Scan"),
	)

	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCode) {
			metrics.RecordScan("invalid_code")
		}
		return "", err
	}

	code, err := s.codes.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.RecordScan("not_found")
		}
		return "", err
	}

	if !code.IsActive {
		metrics.RecordScan("inactive")
		log.Debug("scan of inactive code", logger.QRID(code.ID))
		return "", repository.ErrCodeInactive
	}

	if err := s.analytics.RecordScan(ctx, code.ID, scannerID, time.Now().UTC()); err != nil {
		// The scanner still gets an answer; losing one count beats failing
		// the call flow.
		log.Error("scan recording failed", logger.QRID(code.ID), logger.Err(err))
	}

	action := ActionRegister
	if code.Bound() {
		action = ActionMakeCall
	}

	metrics.RecordScan(action)
	log.Info("scan resolved", logger.QRID(code.ID), logger.Action(action))
	return action, nil
}
