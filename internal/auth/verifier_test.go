package auth

import (
	"context"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/qrcall/internal/cache"
)

const testSecret = "auth-test-secret"

func sign(t *testing.T, secret string, claims jwtv5.MapClaims) string {
	t.Helper()
	raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestValidate_OK(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)

	raw := sign(t, testSecret, jwtv5.MapClaims{
		"sub":  "user-1",
		"role": "admin",
		"jti":  "tok-1",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	c, err := v.Validate(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", c.UserID)
	require.Equal(t, "admin", c.Role)
	require.Equal(t, "tok-1", c.JTI)
}

func TestValidate_WrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)

	raw := sign(t, "other-secret", jwtv5.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Validate(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)

	raw := sign(t, testSecret, jwtv5.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := v.Validate(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_MissingSubject(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)

	raw := sign(t, testSecret, jwtv5.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Validate(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_IssuerEnforced(t *testing.T) {
	v := NewVerifier(testSecret, "auth.example.com", nil)

	raw := sign(t, testSecret, jwtv5.MapClaims{
		"sub": "user-1",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := v.Validate(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)

	raw = sign(t, testSecret, jwtv5.MapClaims{
		"sub": "user-1",
		"iss": "auth.example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = v.Validate(context.Background(), raw)
	require.NoError(t, err)
}

func TestValidate_RevokedJTI(t *testing.T) {
	blacklist := cache.NewMemory("test:")
	require.NoError(t, blacklist.Set(context.Background(), "jwt:blacklist:tok-1", "1", 0))

	v := NewVerifier(testSecret, "", blacklist)

	raw := sign(t, testSecret, jwtv5.MapClaims{
		"sub": "user-1",
		"jti": "tok-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Validate(context.Background(), raw)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// a different jti passes
	raw = sign(t, testSecret, jwtv5.MapClaims{
		"sub": "user-1",
		"jti": "tok-2",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = v.Validate(context.Background(), raw)
	require.NoError(t, err)
}
