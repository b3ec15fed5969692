package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareOpenWhenNoTokens(t *testing.T) {
	h := Middleware(SecConfig{})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redfish/v1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareRejectsBadToken(t *testing.T) {
	cfg := SecConfig{Tokens: map[string]struct{}{"secret": {}}}
	h := Middleware(cfg)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redfish/v1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/redfish/v1", nil)
	req.Header.Set("X-Auth-Token", "wrong")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec2.Code)
	}
}

func TestMiddlewareAcceptsToken(t *testing.T) {
	cfg := SecConfig{Tokens: map[string]struct{}{"secret": {}}}
	h := Middleware(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/redfish/v1", nil)
	req.Header.Set("X-Auth-Token", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Authorization: Bearer works too
	req2 := httptest.NewRequest(http.MethodGet, "/redfish/v1", nil)
	req2.Header.Set("Authorization", "Bearer secret")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("bearer status = %d, want 200", rec2.Code)
	}
}

func TestMiddlewareProbesBypassAuth(t *testing.T) {
	cfg := SecConfig{Tokens: map[string]struct{}{"secret": {}}}
	h := Middleware(cfg)(okHandler())

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("probe %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMiddlewareRateLimits(t *testing.T) {
	cfg := SecConfig{RPS: 1, Burst: 2}
	h := Middleware(cfg)(okHandler())

	var limited bool
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/redfish/v1", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("burst of requests was never rate limited")
	}
}
