package transport

import (
	"bytes"
	"io"
	"net/http"

	"github.com/valyala/fasthttp"

	"bmcd/pkg/response"
)

// FastHTTP adapts a HandlerFunc onto fasthttp, mirroring NetHTTP. The
// RequestCtx doubles as the request context: its Done channel drives
// the liveness predicate.
func FastHTTP(h HandlerFunc) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		hdr := make(http.Header)
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			hdr[string(k)] = append(hdr[string(k)], string(v))
		})

		req := &Request{
			Ctx:        ctx,
			ID:         newRequestID(),
			Method:     string(ctx.Method()),
			Path:       string(ctx.Path()),
			Header:     hdr,
			Body:       io.NopCloser(bytes.NewReader(ctx.PostBody())),
			RemoteAddr: ctx.RemoteAddr().String(),
			Vars:       userVars(ctx),
			Raw:        ctx,
		}

		res := response.New()
		res.SetIsAliveCheck(func() bool { return ctx.Err() == nil })
		if inm := hdr.Get("If-None-Match"); inm != "" {
			res.SetExpectedHash(inm)
		}

		var guard abandonGuard
		done := make(chan struct{})
		res.SetCompleteHandler(func(res *response.Response) {
			if !guard.Begin() {
				return
			}
			defer guard.Finish()
			status, headers, body := finishBuffered(res, hdr.Get("Accept-Encoding"))
			for _, e := range headers.All() {
				ctx.Response.Header.Add(e.Name, e.Value)
			}
			ctx.Response.Header.Set("X-Request-Id", req.ID)
			ctx.SetStatusCode(status)
			if !noBody(status, req.Method) {
				ctx.SetBody(body)
			}
			close(done)
		})

		h(req, res)

		select {
		case <-done:
		case <-ctx.Done():
			guard.Abandon()
		}
	}
}

// FastHTTPStream adapts a StreamHandlerFunc onto fasthttp with the same
// completion discipline as FastHTTP.
func FastHTTPStream(h StreamHandlerFunc) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		hdr := make(http.Header)
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			hdr[string(k)] = append(hdr[string(k)], string(v))
		})

		req := &Request{
			Ctx:        ctx,
			ID:         newRequestID(),
			Method:     string(ctx.Method()),
			Path:       string(ctx.Path()),
			Header:     hdr,
			Body:       io.NopCloser(bytes.NewReader(ctx.PostBody())),
			RemoteAddr: ctx.RemoteAddr().String(),
			Vars:       userVars(ctx),
			Raw:        ctx,
		}

		res := response.NewStream()
		res.SetIsAliveCheck(func() bool { return ctx.Err() == nil })

		var guard abandonGuard
		done := make(chan struct{})
		res.SetCompleteHandler(func() {
			if !guard.Begin() {
				return
			}
			defer guard.Finish()
			status, headers, body := finishStream(res)
			for _, e := range headers.All() {
				ctx.Response.Header.Add(e.Name, e.Value)
			}
			ctx.Response.Header.Set("X-Request-Id", req.ID)
			ctx.SetStatusCode(status)
			if !noBody(status, req.Method) {
				ctx.SetBody(body)
			}
			close(done)
		})

		h(req, res)

		select {
		case <-done:
		case <-ctx.Done():
			guard.Abandon()
		}
	}
}

// userVars collects path variables stashed on the RequestCtx by the
// router via SetUserValue.
func userVars(ctx *fasthttp.RequestCtx) map[string]string {
	vars := map[string]string{}
	ctx.VisitUserValues(func(k []byte, v any) {
		if s, ok := v.(string); ok {
			vars[string(k)] = s
		}
	})
	return vars
}
