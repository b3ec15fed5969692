// Package transport bridges the response lifecycle core to concrete
// HTTP server implementations. Adapters construct a response object per
// request, register the completion handler that serializes the finished
// response back onto the wire, and hand the pair to an application
// handler. Handlers may end the response synchronously or hold it for a
// deferred continuation; the adapter blocks until completion or client
// disconnect.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"bmcd/pkg/compression"
	"bmcd/pkg/logger"
	"bmcd/pkg/response"
)

// Request is the unified request representation handed to handlers.
type Request struct {
	Ctx        context.Context
	ID         string
	Method     string
	Path       string
	Header     http.Header
	Body       io.ReadCloser
	RemoteAddr string
	// Vars holds router path variables when the route declares any.
	Vars map[string]string
	// Raw holds the underlying transport-specific request object
	// (*http.Request or *fasthttp.RequestCtx) for escape hatches.
	Raw any
}

// HandlerFunc is the application handler signature for buffered
// responses. The handler (or a continuation it arranges) must call
// res.End exactly once.
type HandlerFunc func(req *Request, res *response.Response)

// StreamHandlerFunc is the handler signature for bounded streaming
// responses.
type StreamHandlerFunc func(req *Request, res *response.StreamResponse)

func newRequestID() string { return uuid.NewString() }

// abandonGuard arbitrates between the completion handler serializing a
// finished response and the adapter goroutine abandoning the request on
// client disconnect. The completion handler may run on a continuation
// goroutine long after the adapter decided to leave, so the two sides
// settle it under a lock: whichever enters first wins, and Abandon does
// not return while a serialization is in flight. The zero value is
// ready to use.
type abandonGuard struct {
	mu        sync.Mutex
	abandoned bool
}

// Begin claims the right to serialize. It returns false when the
// request has been abandoned; the caller must then leave the writer
// untouched. On true the caller must call Finish when done writing.
func (g *abandonGuard) Begin() bool {
	g.mu.Lock()
	if g.abandoned {
		g.mu.Unlock()
		return false
	}
	return true
}

// Finish releases the claim taken by a successful Begin.
func (g *abandonGuard) Finish() { g.mu.Unlock() }

// Abandon marks the request dead. It blocks until any in-flight
// serialization finishes, so the adapter only returns once the writer
// is quiescent.
func (g *abandonGuard) Abandon() {
	g.mu.Lock()
	g.abandoned = true
	g.mu.Unlock()
}

// finishBuffered turns a completed buffered response into wire-ready
// status/headers/body. A non-empty JSON value is serialized into the
// body when the handler produced no raw body itself, and the body is
// content-encoded per the client's Accept-Encoding.
func finishBuffered(res *response.Response, acceptEncoding string) (int, *response.Headers, []byte) {
	if j := res.JSON(); j != nil && len(res.Body()) == 0 && res.Status() != http.StatusNotModified {
		b, err := json.Marshal(j)
		if err != nil {
			logger.Error("response_json_marshal_failed", "error", err)
			res.SetStatus(http.StatusInternalServerError)
			res.SetBody([]byte(`{"error":"internal error"}`))
		} else {
			res.SetBody(b)
		}
		if res.GetHeader("Content-Type") == "" {
			res.SetHeader("Content-Type", "application/json")
		}
	}

	body := res.Body()
	if len(body) > 0 {
		if enc := compression.Negotiate(acceptEncoding); enc != compression.EncodingIdentity {
			if compressed, err := compression.Compress(body, enc); err == nil {
				body = compressed
				res.SetBody(compressed)
				res.SetHeader("Content-Encoding", enc.String())
				res.AddHeader("Vary", "Accept-Encoding")
			} else {
				logger.Error("response_compress_failed", "encoding", enc.String(), "error", err)
			}
		}
	}

	res.PreparePayload()
	if !res.KeepAlive() {
		res.SetHeader("Connection", "close")
	}
	return res.Status(), res.Headers(), body
}

// finishStream prepares a completed streaming response for the wire.
// Stream bodies are written as produced; no encoding is applied.
func finishStream(res *response.StreamResponse) (int, *response.Headers, []byte) {
	res.PreparePayload()
	if !res.KeepAlive() {
		res.SetHeader("Connection", "close")
	}
	return res.Status(), res.Headers(), res.Body()
}

func noBody(status int, method string) bool {
	if method == http.MethodHead {
		return true
	}
	return status == http.StatusNoContent || status == http.StatusNotModified
}
