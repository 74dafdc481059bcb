package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(SecurityHeaders(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("api.example.com")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "API.example.com:443"
	assert.Equal(t, http.StatusNoContent, serve(h, req).Code)

	req.Host = "evil.example.net"
	assert.Equal(t, http.StatusForbidden, serve(h, req).Code)

	req.Host = "anything"
	assert.Equal(t, http.StatusNoContent, serve(HostCheck("")(okHandler), req).Code)
}

func TestLimiterSet(t *testing.T) {
	set := newLimiterSet(rate.Every(time.Hour), 2)
	h := set.middleware(func(r *http.Request) bool { return r.Method == http.MethodPatch }, "slow down")(okHandler)

	patch := func(addr string) int {
		req := httptest.NewRequest(http.MethodPatch, "/api/responses", nil)
		req.RemoteAddr = addr
		return serve(h, req).Code
	}

	assert.Equal(t, http.StatusNoContent, patch("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, patch("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, patch("10.0.0.1:1002"))
	assert.Equal(t, http.StatusNoContent, patch("10.0.0.2:1000"))

	get := httptest.NewRequest(http.MethodGet, "/api/responses", nil)
	get.RemoteAddr = "10.0.0.1:1003"
	assert.Equal(t, http.StatusNoContent, serve(h, get).Code)
}

func TestLimiterSet_EvictsIdle(t *testing.T) {
	set := newLimiterSet(rate.Limit(1), 1)
	set.get("a")
	set.evictIdle(time.Now().Add(limiterTTL + time.Minute))
	assert.Empty(t, set.entries)
}

func TestResponseRateLimit_NilClientPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/responses", nil)
	req.Header.Set("X-Forwarded-For", "52.1.2.3")
	assert.Equal(t, http.StatusNoContent, serve(ResponseRateLimit(nil)(okHandler), req).Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/responses", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := serve(h, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/s/abc", nil)
	req.Header.Set("Origin", "https://other.example.com")
	rec = serve(h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
