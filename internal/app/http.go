package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"

	"bmcd/pkg/api"
	"bmcd/pkg/auth"
	"bmcd/pkg/banner"
	"bmcd/pkg/eventlog"
	"bmcd/pkg/telemetry"
)

// server abstracts the two transport implementations for shutdown.
type server interface {
	Shutdown(ctx context.Context) error
}

type fastServer struct{ srv *fasthttp.Server }

// Shutdown ignores ctx: fasthttp's Shutdown takes no deadline and
// returns once idle connections drain.
func (f fastServer) Shutdown(ctx context.Context) error { return f.srv.Shutdown() }

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "" && a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "" && a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.eff, verStr)
}

// setupHTTPHandlers sets up all HTTP handlers on the provided mux.
func (a *App) setupHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/readyz", a.readyzHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.Handler())
}

// readyzHandler handles the /readyz endpoint.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !eventlog.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// secConfig builds the auth middleware configuration.
func (a *App) secConfig() auth.SecConfig {
	secCfg := auth.SecConfig{
		RPS:    a.eff.Config.Security.RateLimit.RPS,
		Burst:  a.eff.Config.Security.RateLimit.Burst,
		Tokens: map[string]struct{}{},
		Audit:  a.eff.Config.Security.Audit,
	}
	for _, t := range a.eff.Config.Security.Tokens {
		secCfg.Tokens[t] = struct{}{}
	}
	return secCfg
}

// startHTTP builds the handler, starts the configured transport in a
// goroutine and returns a channel that will carry any server error.
func (a *App) startHTTP() <-chan error {
	errCh := make(chan error, 1)
	cert := a.eff.Config.Server.TLS.CertFile
	key := a.eff.Config.Server.TLS.KeyFile

	if a.eff.Config.Server.Transport == "fasthttp" {
		// The fasthttp transport serves the management API only; probe
		// and metrics endpoints need net/http and are not exposed here.
		srv := &fasthttp.Server{Handler: api.FastHandler()}
		a.servers = append(a.servers, fastServer{srv: srv})
		go func() {
			if cert != "" && key != "" {
				errCh <- srv.ListenAndServeTLS(a.eff.Addr, cert, key)
			} else {
				errCh <- srv.ListenAndServe(a.eff.Addr)
			}
		}()
		return errCh
	}

	mux := http.NewServeMux()
	a.setupHTTPHandlers(mux)

	// wrap mux with auth middleware, then telemetry middleware
	wrapped := auth.Middleware(a.secConfig())(mux)
	wrapped = telemetry.Middleware(wrapped)

	srv := &http.Server{Addr: a.eff.Addr, Handler: wrapped}
	a.servers = append(a.servers, srv)
	go func() {
		if cert != "" && key != "" {
			errCh <- srv.ListenAndServeTLS(cert, key)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()
	return errCh
}
