package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonMunkholm/crashaudit/internal/metrics"
)

func echoRemoteAddr(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.RemoteAddr))
}

func TestTrustedRealIP(t *testing.T) {
	h := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"})(http.HandlerFunc(echoRemoteAddr))

	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"trusted cidr with real ip", "10.1.2.3:5000", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"trusted single ip with xff", "192.168.1.5:80", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"untrusted peer keeps addr", "172.16.0.1:80", map[string]string{"X-Real-IP": "203.0.113.7"}, "172.16.0.1:80"},
		{"invalid header keeps addr", "10.1.2.3:5000", map[string]string{"X-Real-IP": "garbage"}, "10.1.2.3:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name     string
		required bool
		key      string
		want     int
	}{
		{"disabled", false, "", http.StatusNoContent},
		{"missing key", true, "", http.StatusUnauthorized},
		{"wrong key", true, "nope", http.StatusForbidden},
		{"valid key", true, "k2", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(tt.required, []string{"k1", "k2"})(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/sessions/{id}", "404"))
	if got != 3 {
		t.Errorf("requests{/api/sessions/{id}} = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(m.HTTPRequestsTotal); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute, func() time.Time { return now })
	h := rl.Handler(http.HandlerFunc(echoRemoteAddr))

	hit := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i, want := range []int{200, 200, 429} {
		if got := hit("1.2.3.4:5000"); got != want {
			t.Errorf("request %d status = %d, want %d", i+1, got, want)
		}
	}
	// same host on a different port shares the budget
	if got := hit("1.2.3.4:6000"); got != http.StatusTooManyRequests {
		t.Errorf("other port status = %d, want 429", got)
	}
	if got := hit("5.6.7.8:5000"); got != http.StatusOK {
		t.Errorf("other client status = %d, want 200", got)
	}

	now = now.Add(time.Minute)
	if got := hit("1.2.3.4:5000"); got != http.StatusOK {
		t.Errorf("after window status = %d, want 200", got)
	}

	now = now.Add(3 * time.Minute)
	rl.Allow("9.9.9.9")
	if got := rl.Visitors(); got != 1 {
		t.Errorf("Visitors() after sweep = %d, want 1", got)
	}
}
