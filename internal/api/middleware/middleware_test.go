package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-RoomBookingService/pkg/metrics"
)

type testLogger struct{}

func (testLogger) Warn(string, ...interface{}) {}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/booking/", okHandler).Methods(http.MethodGet)
	r.HandleFunc("/conflict", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}).Methods(http.MethodPost)

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/booking/?from=10:00", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/conflict", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/booking/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/conflict", "409")))
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	limiter := NewRateLimiter(0.001, 2, m, testLogger{})

	r := mux.NewRouter()
	r.Handle("/booking/", limiter.Middleware(http.HandlerFunc(okHandler)))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/booking/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRateLimited.WithLabelValues("/booking/")))

	// Другой клиент получает свой бакет
	req := httptest.NewRequest(http.MethodPost, "/booking/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1, nil, testLogger{})
	limiter.get("a")
	limiter.get("b")

	limiter.cleanup(time.Now().Add(time.Hour))

	assert.Empty(t, limiter.entries)
}

func TestClientKey(t *testing.T) {
	limiter := NewRateLimiter(1, 1, nil, testLogger{})
	limiter.TrustProxies([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")})

	tests := []struct {
		name       string
		remoteAddr string
		xff        []string
		want       string
	}{
		{"direct client", "203.0.113.7:5555", nil, "203.0.113.7"},
		{"header from untrusted peer is ignored", "203.0.113.7:5555", []string{"1.2.3.4"}, "203.0.113.7"},
		{"trusted proxy without header", "10.0.0.9:5555", nil, "10.0.0.9"},
		{"trusted proxy forwards client", "10.0.0.9:5555", []string{"1.2.3.4"}, "1.2.3.4"},
		{"spoofed leftmost entry is skipped", "10.0.0.9:5555", []string{"6.6.6.6, 1.2.3.4"}, "1.2.3.4"},
		{"chain of trusted proxies", "10.0.0.9:5555", []string{"1.2.3.4, 10.0.0.5"}, "1.2.3.4"},
		{"multiple header lines", "10.0.0.9:5555", []string{"6.6.6.6", "1.2.3.4"}, "1.2.3.4"},
		{"garbage in header", "10.0.0.9:5555", []string{"not-an-ip"}, "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, limiter.clientKey(req))
		})
	}
}

func TestRateLimiter_RotatingForwardedForDoesNotBypassLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1, nil, testLogger{})
	handler := limiter.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/booking/", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
