package middleware

import (
	"coin-dashboard-service/internal/infrastructure/logging"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTracingMiddleware_SetsRequestID(t *testing.T) {
	var seenID, seenIP string
	handler := RequestTracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.GetRequestID(r.Context())
		seenIP = logging.GetRemoteIP(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("X-Real-IP", "10.0.0.7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "10.0.0.7", seenIP)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRequestTracingMiddleware_ReusesIncomingID(t *testing.T) {
	handler := RequestTracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req_from_proxy")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req_from_proxy", rec.Header().Get("X-Request-ID"))
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	rw := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rw.Hijack()
	assert.Error(t, err)
}

func TestIsSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		query string
		want  bool
	}{
		{"plain api call", "/api/v1/coins/bitcoin/chart", "days=7", false},
		{"path traversal", "/api/v1/coins/../../etc/passwd", "", true},
		{"encoded traversal in query", "/api/v1/markets", "f=%2E%2E/secret", true},
		{"script in query", "/api/v1/markets", "x=<SCRIPT>alert(1)", true},
		{"sql in query", "/api/v1/markets", "x=1 UNION SELECT 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: tt.path, RawQuery: tt.query}}
			assert.Equal(t, tt.want, isSuspiciousRequest(req))
		})
	}
}

func TestIsSuspiciousRequest_LargeBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	req.ContentLength = 1 << 20
	assert.True(t, isSuspiciousRequest(req))
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	called := false
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/ticker", nil))
	assert.True(t, called)
}
