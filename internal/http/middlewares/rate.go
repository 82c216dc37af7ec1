package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/qrcall/internal/http/errors"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
	"github.com/dropDatabas3/qrcall/internal/rate"
)

// clientIP extracts the client IP, honoring proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc derives the limiter key for a request.
type RateKeyFunc func(r *http.Request) string

// ScanRateKey keys the scan endpoint by user when authenticated, else by IP.
func ScanRateKey(r *http.Request) string {
	if uid := GetUserID(r.Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + clientIP(r)
}

// WithRateLimit rejects requests over the limit with 429 and standard
// X-RateLimit headers. Limiter errors fail open.
func WithRateLimit(limiter rate.Limiter, keyFn RateKeyFunc) Middleware {
	if keyFn == nil {
		keyFn = ScanRateKey
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				// limiter outage must not take the endpoint down
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				if secs := int64(res.RetryAfter.Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
