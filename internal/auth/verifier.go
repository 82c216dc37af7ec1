// Package auth validates bearer tokens issued by the external auth service.
//
// This service never issues tokens. It only checks the HS256 signature with
// the shared secret, the standard time claims, the optional issuer, and the
// jti blacklist the auth service maintains through the shared cache.
package auth

import (
	"context"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/qrcall/internal/cache"
)

var (
	// ErrInvalidToken covers bad signature, expiry and malformed claims.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenRevoked means the token's jti is blacklisted.
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// Claims is the subset of JWT claims this service consumes.
type Claims struct {
	UserID string // "sub"
	Role   string // "role", empty when absent
	JTI    string // "jti", used for blacklist lookups
}

// Verifier validates bearer tokens.
type Verifier struct {
	secret    []byte
	issuer    string // enforced when non-empty
	blacklist cache.Client
}

// NewVerifier builds a verifier. blacklist may be nil to skip revocation
// checks (tests).
func NewVerifier(secret, issuer string, blacklist cache.Client) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, blacklist: blacklist}
}

// Validate parses and verifies a raw bearer token.
func (v *Verifier) Validate(ctx context.Context, raw string) (Claims, error) {
	keyfunc := func(*jwtv5.Token) (any, error) { return v.secret, nil }

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(v.issuer))
	}

	tok, err := jwtv5.Parse(raw, keyfunc, opts...)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	c := Claims{}
	if sub, _ := mc["sub"].(string); sub != "" {
		c.UserID = sub
	} else {
		return Claims{}, ErrInvalidToken
	}
	c.Role, _ = mc["role"].(string)
	c.JTI, _ = mc["jti"].(string)

	if v.blacklist != nil && c.JTI != "" {
		revoked, err := v.blacklist.Exists(ctx, "jwt:blacklist:"+c.JTI)
		if err == nil && revoked {
			return Claims{}, ErrTokenRevoked
		}
		// A cache outage must not lock everyone out; the signature already
		// passed, so fail open and leave a trace in the caller's logs.
	}

	return c, nil
}
