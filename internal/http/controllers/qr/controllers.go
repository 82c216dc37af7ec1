// Package qr contains controllers for the QR endpoints.
package qr

import (
	svc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
)

// Controllers groups the QR controllers.
type Controllers struct {
	Generate  *GenerateController
	Scan      *ScanController
	Register  *RegisterController
	Control   *ControlController
	Analytics *AnalyticsController
}

// NewControllers creates the QR controllers aggregator.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Generate:  NewGenerateController(s.Registry),
		Scan:      NewScanController(s.Scan),
		Register:  NewRegisterController(s.Registry),
		Control:   NewControlController(s.Registry),
		Analytics: NewAnalyticsController(s.Analytics),
	}
}
