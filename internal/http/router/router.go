// Package router assembles the HTTP surface of the service.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/qrcall/internal/auth"
	qrctrl "github.com/dropDatabas3/qrcall/internal/http/controllers/qr"
	httperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
	"github.com/dropDatabas3/qrcall/internal/http/helpers"
	mw "github.com/dropDatabas3/qrcall/internal/http/middlewares"
	"github.com/dropDatabas3/qrcall/internal/metrics"
	"github.com/dropDatabas3/qrcall/internal/rate"
)

// Deps contains everything the router mounts.
type Deps struct {
	QR        *qrctrl.Controllers
	Verifier  *auth.Verifier
	AdminRole string

	// Limiter guards the scan endpoint. nil disables limiting.
	Limiter rate.Limiter

	// MetricsHandler serves GET /metrics. nil hides the endpoint.
	MetricsHandler http.Handler

	// Ping reports storage readiness for /readyz. nil means always ready.
	Ping func(ctx context.Context) error
}

// New builds the router with the full middleware stack.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(metrics.WithHTTP)
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	requireAuth := mw.RequireAuth(d.Verifier)
	requireAdmin := mw.RequireAdmin(d.AdminRole)
	optionalAuth := mw.OptionalAuth(d.Verifier)

	r.Route("/qr", func(r chi.Router) {
		r.With(requireAuth).Post("/generate", d.QR.Generate.Generate)
		r.With(requireAuth).Post("/control", d.QR.Control.Control)
		r.With(requireAuth).Post("/register/{token}", d.QR.Register.Register)
		r.With(requireAuth).Get("/analytics/{token}", d.QR.Analytics.Summary)

		// The scan endpoint serves anonymous callers too; rate limiting sits
		// after OptionalAuth so authenticated scanners are keyed by user.
		scanMws := []func(http.Handler) http.Handler{optionalAuth}
		if d.Limiter != nil {
			scanMws = append(scanMws, mw.WithRateLimit(d.Limiter, mw.ScanRateKey))
		}
		r.With(scanMws...).Get("/scan/{token}", d.QR.Scan.Scan)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/generate", d.QR.Generate.AdminGenerate)
			r.Get("/analytics", d.QR.Analytics.Aggregate)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
				return
			}
		}
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	return r
}
