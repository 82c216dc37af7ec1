package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/qrcall/internal/auth"
	"github.com/dropDatabas3/qrcall/internal/http/errors"
)

func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}

// RequireAuth validates Authorization: Bearer <JWT> and stores the claims in
// the context. Missing or invalid tokens answer 401.
func RequireAuth(verifier *auth.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			claims, err := verifier.Validate(r.Context(), raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			ctx := WithClaims(r.Context(), &claims)
			ctx = WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth validates the token when present but never fails the request.
// The scan endpoint uses this: anonymous scanners are served, authenticated
// scanners are counted towards unique users.
func OptionalAuth(verifier *auth.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Validate(r.Context(), raw)
			if err != nil {
				// invalid but optional, continue anonymously
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithClaims(r.Context(), &claims)
			ctx = WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks the role claim against the configured admin role.
// Must run after RequireAuth.
func RequireAdmin(adminRole string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if claims.Role != adminRole {
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
