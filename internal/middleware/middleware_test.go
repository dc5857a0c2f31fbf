package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EmpoweredVote/LSG-Trends/internal/metrics"
	"github.com/EmpoweredVote/LSG-Trends/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestCORS_AllowedOrigin verifies that an allow-listed origin is echoed back.
func TestCORS_AllowedOrigin(t *testing.T) {
	h := middleware.CORS([]string{"https://lsg.example.org"})(ok)

	req := httptest.NewRequest(http.MethodGet, "/trends/kpis", nil)
	req.Header.Set("Origin", "https://lsg.example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://lsg.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Snapshot-ID")
}

// TestCORS_UnknownOrigin verifies that other origins get no allow header.
func TestCORS_UnknownOrigin(t *testing.T) {
	h := middleware.CORS(nil)(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	h := middleware.CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/trends/refresh", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

// TestRateLimiter_PerClient verifies that each client address gets its own
// bucket.
func TestRateLimiter_PerClient(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 2).Middleware(ok)
	before := testutil.ToFloat64(metrics.RateLimitedTotal)

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedTotal))
}

// TestRateLimiter_IgnoresForwardedFor verifies that a client cannot pick a
// fresh bucket by varying X-Forwarded-For.
func TestRateLimiter_IgnoresForwardedFor(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 1).Middleware(ok)

	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.2"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := middleware.NewRateLimiter(0, 0).Middleware(ok)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

// TestMetrics_RecordsRoutePattern verifies requests are labelled with the chi
// pattern rather than the raw path.
func TestMetrics_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/trends/localbodies/{lbCode}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/trends/localbodies/{lbCode}", "404"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trends/localbodies/G01001", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/trends/localbodies/{lbCode}", "404")))
}
