// Package qr contains the services behind the QR endpoints.
package qr

import (
	"time"

	"github.com/dropDatabas3/qrcall/internal/cache"
	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	"github.com/dropDatabas3/qrcall/internal/notify"
	"github.com/dropDatabas3/qrcall/internal/qrtoken"
)

// Deps holds everything the QR services need.
type Deps struct {
	Codes     repository.QRRepository
	Analytics repository.AnalyticsRepository
	Users     repository.UserDirectory
	Codec     *qrtoken.Codec
	Verifier  *qrtoken.Verifier
	Links     *LinkService
	Cache     cache.Client
	Notifier  *notify.ClaimNotifier

	// AggregateTTL bounds staleness of the cached admin aggregate.
	AggregateTTL time.Duration
}

// Services groups the QR domain services.
type Services struct {
	Registry  *RegistryService
	Scan      *ScanService
	Analytics *AnalyticsService
}

// NewServices wires the QR services from shared dependencies.
func NewServices(d Deps) Services {
	return Services{
		Registry:  NewRegistryService(d),
		Scan:      NewScanService(d),
		Analytics: NewAnalyticsService(d),
	}
}
