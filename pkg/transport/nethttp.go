package transport

import (
	"net/http"

	"github.com/gorilla/mux"

	"bmcd/pkg/logger"
	"bmcd/pkg/response"
)

// NetHTTP adapts a HandlerFunc onto net/http. The adapter owns the
// response's completion handler: it serializes the finished response to
// the underlying writer exactly once, whenever End runs. The adapter
// does not return until the response completes or the client goes away.
//
// A deferred End may race client disconnection, so the handler slot is
// written once, before the handler runs, and never touched again; the
// guard mutex decides between serializing and abandoning. This keeps
// the response core's single-owner contract intact without locking it.
func NetHTTP(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &Request{
			Ctx:        r.Context(),
			ID:         newRequestID(),
			Method:     r.Method,
			Path:       r.URL.Path,
			Header:     r.Header.Clone(),
			Body:       r.Body,
			RemoteAddr: r.RemoteAddr,
			Vars:       mux.Vars(r),
			Raw:        r,
		}

		res := response.New()
		res.SetIsAliveCheck(func() bool { return r.Context().Err() == nil })
		if inm := r.Header.Get("If-None-Match"); inm != "" {
			res.SetExpectedHash(inm)
		}

		var guard abandonGuard
		done := make(chan struct{})
		res.SetCompleteHandler(func(res *response.Response) {
			if !guard.Begin() {
				// Client is gone; the serializer must never touch the
				// dead writer.
				return
			}
			defer guard.Finish()
			status, headers, body := finishBuffered(res, r.Header.Get("Accept-Encoding"))
			for _, e := range headers.All() {
				w.Header().Add(e.Name, e.Value)
			}
			w.Header().Set("X-Request-Id", req.ID)
			w.WriteHeader(status)
			if !noBody(status, r.Method) {
				if _, err := w.Write(body); err != nil {
					logger.Debug("response_write_failed", "id", req.ID, "error", err)
				}
			}
			close(done)
		})

		h(req, res)

		select {
		case <-done:
		case <-r.Context().Done():
			guard.Abandon()
			logger.Debug("request_abandoned", "id", req.ID, "path", req.Path)
		}
	})
}

// NetHTTPStream adapts a StreamHandlerFunc onto net/http with the same
// completion discipline as NetHTTP.
func NetHTTPStream(h StreamHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &Request{
			Ctx:        r.Context(),
			ID:         newRequestID(),
			Method:     r.Method,
			Path:       r.URL.Path,
			Header:     r.Header.Clone(),
			Body:       r.Body,
			RemoteAddr: r.RemoteAddr,
			Vars:       mux.Vars(r),
			Raw:        r,
		}

		res := response.NewStream()
		res.SetIsAliveCheck(func() bool { return r.Context().Err() == nil })

		var guard abandonGuard
		done := make(chan struct{})
		res.SetCompleteHandler(func() {
			if !guard.Begin() {
				return
			}
			defer guard.Finish()
			status, headers, body := finishStream(res)
			for _, e := range headers.All() {
				w.Header().Add(e.Name, e.Value)
			}
			w.Header().Set("X-Request-Id", req.ID)
			w.WriteHeader(status)
			if !noBody(status, r.Method) {
				if _, err := w.Write(body); err != nil {
					logger.Debug("response_write_failed", "id", req.ID, "error", err)
				}
			}
			close(done)
		})

		h(req, res)

		select {
		case <-done:
		case <-r.Context().Done():
			guard.Abandon()
			logger.Debug("request_abandoned", "id", req.ID, "path", req.Path)
		}
	})
}
