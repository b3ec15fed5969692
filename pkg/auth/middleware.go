// Package auth guards the management interface: per-client rate
// limiting, session-token authentication, and audit recording of
// configuration-changing requests.
package auth

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"bmcd/pkg/eventlog"
	"bmcd/pkg/logger"
	"bmcd/pkg/models"
)

// SecConfig configures the request middleware.
type SecConfig struct {
	// RPS and Burst bound per-client request rates; zero values fall
	// back to conservative defaults.
	RPS   float64
	Burst int
	// Tokens holds valid session tokens. An empty set disables
	// authentication (open local interface).
	Tokens map[string]struct{}
	// Audit enables event-log records for non-GET requests.
	Audit bool
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func tokenValid(cfg SecConfig, r *http.Request) bool {
	if len(cfg.Tokens) == 0 {
		return true
	}
	tok := strings.TrimSpace(r.Header.Get("X-Auth-Token"))
	if tok == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tok = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if tok == "" {
		return false
	}
	for k := range cfg.Tokens {
		if subtle.ConstantTimeCompare([]byte(k), []byte(tok)) == 1 {
			return true
		}
	}
	return false
}

// Middleware wraps next with rate limiting, token authentication and
// audit recording. Probe endpoints (/healthz, /readyz, /metrics) stay
// unauthenticated.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r.RemoteAddr)
			if !limiters.Allow(key) {
				logger.Warn("rate_limited", "remote", key, "path", r.URL.Path)
				http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
				return
			}

			authed := tokenValid(cfg, r)
			if !authed {
				logger.Warn("unauthorized", "remote", key, "path", r.URL.Path)
				auditRequest(cfg, r, false)
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
			auditRequest(cfg, r, true)
		})
	}
}

// auditRequest records configuration-changing requests in the event
// log. Reads are not audited; failures to record are logged, never
// propagated to the client path.
func auditRequest(cfg SecConfig, r *http.Request, success bool) {
	if !cfg.Audit || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return
	}
	if !eventlog.Ready() {
		return
	}
	sev := models.SeverityOK
	if !success {
		sev = models.SeverityWarning
	}
	_, err := eventlog.Append(models.Event{
		Severity:   sev,
		Source:     "audit",
		Message:    r.Method + " " + r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		Success:    success,
	})
	if err != nil {
		logger.Error("audit_append_failed", "error", err)
	}
}
