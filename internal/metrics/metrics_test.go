package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegister_ServesSuppliedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	h, err := Register(Config{Registry: reg})
	require.NoError(t, err)

	RecordScan("make_call")
	RecordIssued("self")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "qr_scans_total")
	require.Contains(t, body, "qr_codes_issued_total")
}

func TestNormalizePath_CollapsesDynamicSegments(t *testing.T) {
	cases := map[string]string{
		"/qr/scan/YWJjZGVmYWJjZGVmYWJjZGVmYWJjZGVmYWJjZGVmYWI=": "/qr/scan/:param",
		"/qr/generate": "/qr/generate",
		"/qr/analytics/6f1e0d4a-9d3b-4f55-93f1-0a8b1f6f2abc": "/qr/analytics/:param",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizePath(in), in)
	}
}
