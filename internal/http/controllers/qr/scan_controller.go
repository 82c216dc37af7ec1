package qr

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/qrcall/internal/http/dto/qr"
	httperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
	"github.com/dropDatabas3/qrcall/internal/http/helpers"
	"github.com/dropDatabas3/qrcall/internal/http/middlewares"
	svc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
)

// ScanController handles GET /qr/scan/{token}.
type ScanController struct {
	scan *svc.ScanService
}

func NewScanController(scan *svc.ScanService) *ScanController {
	return &ScanController{scan: scan}
}

// Scan resolves a scanned token. Works for both anonymous and authenticated
// scanners; an authenticated scanner is counted towards unique users.
func (c *ScanController) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := chi.URLParam(r, "token")
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidCode)
		return
	}

	var scannerID *string
	if uid := middlewares.GetUserID(ctx); uid != "" {
		scannerID = &uid
	}

	action, err := c.scan.Scan(ctx, token, scannerID)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ScanResponse{Action: action})
}
