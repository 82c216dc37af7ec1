package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/qrcall/internal/auth"
	"github.com/dropDatabas3/qrcall/internal/cache"
	qrctrl "github.com/dropDatabas3/qrcall/internal/http/controllers/qr"
	qrsvc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
	"github.com/dropDatabas3/qrcall/internal/notify"
	"github.com/dropDatabas3/qrcall/internal/qrtoken"
	"github.com/dropDatabas3/qrcall/internal/store/memory"
)

const testSecret = "router-test-secret"

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	claims := jwtv5.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ring, err := qrtoken.NewKeyRing([]string{"router-test-key"})
	require.NoError(t, err)

	store := memory.New()
	services := qrsvc.NewServices(qrsvc.Deps{
		Codes:     store,
		Analytics: store,
		Users:     store,
		Codec:     qrtoken.NewCodec(ring),
		Verifier:  qrtoken.NewVerifier(ring, store, 0),
		Links:     qrsvc.NewLinkService("http://localhost:8080", 64),
		Cache:     cache.NewMemory("test:"),
		Notifier:  notify.NewClaimNotifier(nil, ""),
	})

	return New(Deps{
		QR:        qrctrl.NewControllers(services),
		Verifier:  auth.NewVerifier(testSecret, "", nil),
		AdminRole: "admin",
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func profileBody() map[string]string {
	return map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
	}
}

func generatedToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		QRCodeURL   string `json:"qr_code_url"`
		QRCodeImage string `json:"qr_code_image"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.QRCodeURL)
	i := strings.LastIndex(resp.QRCodeURL, "/")
	return resp.QRCodeURL[i+1:]
}

func TestGenerate_RequiresAuth(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/qr/generate", "", profileBody())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerate_MissingProfileFields(t *testing.T) {
	h := newTestRouter(t)
	tok := signToken(t, "alice", "")

	rec := doJSON(t, h, http.MethodPost, "/qr/generate", tok, map[string]string{"first_name": "Ada"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestGenerateScanFlow(t *testing.T) {
	h := newTestRouter(t)
	alice := signToken(t, "alice", "")

	rec := doJSON(t, h, http.MethodPost, "/qr/generate", alice, profileBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	qrToken := generatedToken(t, rec)

	// duplicate issuance rejected
	rec = doJSON(t, h, http.MethodPost, "/qr/generate", alice, profileBody())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ALREADY_HAS_CODE")

	// anonymous scan of a bound code
	rec = doJSON(t, h, http.MethodGet, "/qr/scan/"+qrToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "make_call")

	// owner reads analytics
	rec = doJSON(t, h, http.MethodGet, "/qr/analytics/"+qrToken, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		ScanCount   int64 `json:"scan_count"`
		UniqueUsers int64 `json:"unique_users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, int64(1), summary.ScanCount)
	require.Equal(t, int64(0), summary.UniqueUsers) // anonymous scanner

	// deactivate, scan now rejected with 403
	off := false
	rec = doJSON(t, h, http.MethodPost, "/qr/control", alice, map[string]any{"is_active": off})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/qr/scan/"+qrToken, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "CODE_INACTIVE")
}

func TestAdminGenerateAndRegisterFlow(t *testing.T) {
	h := newTestRouter(t)
	admin := signToken(t, "root", "admin")
	bob := signToken(t, "bob", "")

	// non-admin rejected
	rec := doJSON(t, h, http.MethodPost, "/qr/admin/generate", bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/qr/admin/generate", admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	qrToken := generatedToken(t, rec)

	// scanning an unbound code prompts registration
	rec = doJSON(t, h, http.MethodGet, "/qr/scan/"+qrToken, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "register")

	// bob claims it
	rec = doJSON(t, h, http.MethodPost, "/qr/register/"+qrToken, bob, map[string]string{
		"first_name": "Bob", "last_name": "Builder", "email": "bob@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "/qr/scan/"+qrToken)

	// carol loses the race
	carol := signToken(t, "carol", "")
	rec = doJSON(t, h, http.MethodPost, "/qr/register/"+qrToken, carol, map[string]string{
		"first_name": "Carol", "last_name": "C", "email": "carol@example.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ALREADY_CLAIMED")

	// the code now routes calls
	rec = doJSON(t, h, http.MethodGet, "/qr/scan/"+qrToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "make_call")

	// aggregate visible to admin only
	rec = doJSON(t, h, http.MethodGet, "/qr/admin/analytics", bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/qr/admin/analytics", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var agg struct {
		TotalQRCodes int64 `json:"total_qr_codes"`
		TotalScans   int64 `json:"total_scans"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agg))
	require.Equal(t, int64(1), agg.TotalQRCodes)
	require.Equal(t, int64(2), agg.TotalScans)
}

func TestScan_GarbageToken(t *testing.T) {
	h := newTestRouter(t)

	// malformed and unverifiable tokens answer alike: 400 INVALID_CODE
	rec := doJSON(t, h, http.MethodGet, "/qr/scan/@@not-base64@@", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_CODE")
}

func TestControl_NoCode(t *testing.T) {
	h := newTestRouter(t)
	tok := signToken(t, "nobody", "")

	on := true
	rec := doJSON(t, h, http.MethodPost, "/qr/control", tok, map[string]any{"is_active": on})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NO_CODE")
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "ROUTE_NOT_FOUND")
}

func TestExpiredTokenRejected(t *testing.T) {
	h := newTestRouter(t)

	claims := jwtv5.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/qr/generate", raw, profileBody())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "TOKEN_INVALID")
}
