package qr

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/qrcall/internal/http/dto/qr"
	httperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
	"github.com/dropDatabas3/qrcall/internal/http/helpers"
	svc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
)

// AnalyticsController handles the analytics endpoints.
type AnalyticsController struct {
	analytics *svc.AnalyticsService
}

func NewAnalyticsController(analytics *svc.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Summary handles GET /qr/analytics/{token}.
func (c *AnalyticsController) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := chi.URLParam(r, "token")
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return
	}

	a, err := c.analytics.Summary(ctx, token)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	resp := dto.AnalyticsResponse{
		ScanCount:   a.ScanCount,
		UniqueUsers: a.UniqueUsers,
	}
	if a.LastScanned != nil {
		s := a.LastScanned.UTC().Format(time.RFC3339)
		resp.LastScanned = &s
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Aggregate handles GET /qr/admin/analytics.
func (c *AnalyticsController) Aggregate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agg, err := c.analytics.Aggregate(ctx)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.AdminAnalyticsResponse{
		TotalQRCodes:     agg.TotalQRCodes,
		TotalScans:       agg.TotalScans,
		TotalUniqueUsers: agg.TotalUniqueUsers,
	})
}
