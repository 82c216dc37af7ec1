package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// dateLayout is the wire format of the embedded creation date (UTC).
const dateLayout = "20060102"

// MalformedTokenError reports a token that could not be decoded. The reason
// is for logs only; external callers see the same "invalid code" response as
// a verification miss so that malformed and unknown are indistinguishable.
type MalformedTokenError struct {
	Reason string
}

func (e *MalformedTokenError) Error() string {
	return "qrtoken: malformed token: " + e.Reason
}

// Decoded is the result of taking a token apart, before any verification.
type Decoded struct {
	// RawHash is the hex HMAC-SHA256 digest embedded in the token.
	RawHash string
	// Date is the UTC creation date embedded in the token.
	Date time.Time
}

// Codec derives opaque tokens from QR identifiers using the ring's signing
// key. Encoding is deterministic on purpose: same identifier, same day, same
// key yields the same token, so nothing has to be stored to verify later.
type Codec struct {
	ring *KeyRing
	// now is swappable in tests.
	now func() time.Time
}

// NewCodec builds a codec over the given ring.
func NewCodec(ring *KeyRing) *Codec {
	return &Codec{ring: ring, now: time.Now}
}

// HashID computes hex(HMAC-SHA256(key, id)).
func HashID(key []byte, id string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// Encode produces the opaque token for an identifier:
// base64url(hex(HMAC-SHA256(signingKey, id)) + ":" + YYYYMMDD).
func (c *Codec) Encode(id string) string {
	date := c.now().UTC().Format(dateLayout)
	payload := HashID(c.ring.SigningKey(), id) + ":" + date
	return base64.URLEncoding.EncodeToString([]byte(payload))
}

// Decode takes a token apart without verifying it. It fails with
// *MalformedTokenError on bad base64, a payload without exactly one ":"
// separator, or a date segment that is not a calendar date.
//
// Decoding is a pure function of the token; which key later verifies the
// hash plays no part here.
func Decode(token string) (Decoded, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		// Tolerate unpadded input from clients that strip "=".
		raw, err = base64.RawURLEncoding.DecodeString(token)
		if err != nil {
			return Decoded{}, &MalformedTokenError{Reason: "invalid base64"}
		}
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 2 {
		return Decoded{}, &MalformedTokenError{Reason: "payload must be hash:date"}
	}
	rawHash, dateStr := parts[0], parts[1]
	if rawHash == "" {
		return Decoded{}, &MalformedTokenError{Reason: "empty hash segment"}
	}

	date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return Decoded{}, &MalformedTokenError{Reason: fmt.Sprintf("bad date segment %q", dateStr)}
	}

	return Decoded{RawHash: rawHash, Date: date}, nil
}
