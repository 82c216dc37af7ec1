package qrtoken

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedCodec(t *testing.T, secrets []string, day string) *Codec {
	t.Helper()
	ring, err := NewKeyRing(secrets)
	require.NoError(t, err)
	c := NewCodec(ring)
	at, err := time.ParseInLocation(dateLayout, day, time.UTC)
	require.NoError(t, err)
	c.now = func() time.Time { return at }
	return c
}

func TestEncode_KnownVector(t *testing.T) {
	c := fixedCodec(t, []string{"k"}, "20240101")

	tok := c.Encode("a1b2")

	dec, err := Decode(tok)
	require.NoError(t, err)
	require.Equal(t, HashID([]byte("k"), "a1b2"), dec.RawHash)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dec.Date)
}

func TestEncode_DeterministicSameDaySameKey(t *testing.T) {
	c := fixedCodec(t, []string{"secret-a"}, "20240315")

	require.Equal(t, c.Encode("id-1"), c.Encode("id-1"))
	require.NotEqual(t, c.Encode("id-1"), c.Encode("id-2"))
}

func TestDecode_RoundTrip(t *testing.T) {
	c := fixedCodec(t, []string{"current", "older"}, "20251224")

	dec, err := Decode(c.Encode("3d5e0a52-9f1c-4f9e-a3a7-6f2b8c1d0e9f"))
	require.NoError(t, err)
	// New tokens always hash with the newest key.
	require.Equal(t, HashID([]byte("current"), "3d5e0a52-9f1c-4f9e-a3a7-6f2b8c1d0e9f"), dec.RawHash)
}

func TestDecode_AcceptsUnpadded(t *testing.T) {
	c := fixedCodec(t, []string{"k"}, "20240101")
	tok := c.Encode("a1b2")

	stripped := tok
	for len(stripped) > 0 && stripped[len(stripped)-1] == '=' {
		stripped = stripped[:len(stripped)-1]
	}

	dec, err := Decode(stripped)
	require.NoError(t, err)
	require.Equal(t, HashID([]byte("k"), "a1b2"), dec.RawHash)
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"no separator", base64.URLEncoding.EncodeToString([]byte("deadbeef20240101"))},
		{"two separators", base64.URLEncoding.EncodeToString([]byte("dead:beef:20240101"))},
		{"empty hash", base64.URLEncoding.EncodeToString([]byte(":20240101"))},
		{"bad date", base64.URLEncoding.EncodeToString([]byte("deadbeef:2024-01-01"))},
		{"impossible date", base64.URLEncoding.EncodeToString([]byte("deadbeef:20241341"))},
		{"empty token", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.token)
			require.Error(t, err)
			var mt *MalformedTokenError
			require.ErrorAs(t, err, &mt)
		})
	}
}

func TestNewKeyRing_Validation(t *testing.T) {
	_, err := NewKeyRing(nil)
	require.ErrorIs(t, err, ErrEmptyKeyRing)

	_, err = NewKeyRing([]string{"ok", ""})
	require.Error(t, err)

	ring, err := NewKeyRing([]string{"new", "old"})
	require.NoError(t, err)
	require.Equal(t, []byte("new"), ring.SigningKey())
	require.Equal(t, 2, ring.Len())
}
