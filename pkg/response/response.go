// Package response models the lifecycle of a single outgoing HTTP
// response inside the management interface server. Two concrete types
// share one lifecycle contract: Response buffers its whole payload in
// memory and supports etag-based conditional GET; StreamResponse backs
// its body with a fixed-capacity buffer for incremental output.
//
// A response is owned by exactly one logical task at a time. Ownership
// moves between processing stages with Take, which also decides whether
// the pending completion handler travels along. There is no internal
// locking; serial access by the current owner is the safety contract.
package response

import (
	"net/http"
	"strconv"

	"bmcd/pkg/logger"
)

// CompleteHandler is the one-shot completion notification for a buffered
// Response. It is invoked synchronously by End, at most once, with the
// finished response.
type CompleteHandler func(*Response)

// Response is the fully buffered response representation. Handlers
// populate either Body (raw payload) or the JSON value (structured
// payload, the canonical source for fingerprinting) and finish the
// response with End.
type Response struct {
	status    int
	headers   Headers
	body      []byte
	jsonValue any
	keepAlive bool
	completed bool

	expectedHash    string
	completeHandler CompleteHandler
	isAliveCheck    func() bool
}

// New returns an empty buffered response with status 200.
func New() *Response {
	return &Response{status: http.StatusOK, keepAlive: true}
}

// SetHeader sets a header, replacing existing values for the name.
func (r *Response) SetHeader(name, value string) { r.headers.Set(name, value) }

// AddHeader appends a header value without replacing existing ones.
func (r *Response) AddHeader(name, value string) { r.headers.Add(name, value) }

// GetHeader returns the first value for name, or "" when absent. Lookup
// is case-insensitive.
func (r *Response) GetHeader(name string) string { return r.headers.Get(name) }

// Headers exposes the underlying header set.
func (r *Response) Headers() *Headers { return &r.headers }

// SetStatus sets the HTTP status code.
func (r *Response) SetStatus(code int) { r.status = code }

// Status returns the HTTP status code.
func (r *Response) Status() int { return r.status }

// StatusText returns the canonical reason phrase for the current code.
func (r *Response) StatusText() string { return http.StatusText(r.status) }

// SetKeepAlive records the transport keep-alive hint.
func (r *Response) SetKeepAlive(k bool) { r.keepAlive = k }

// KeepAlive returns the transport keep-alive hint.
func (r *Response) KeepAlive() bool { return r.keepAlive }

// Write appends p to the body. It may be called multiple times before
// End and never fails; it implements io.Writer.
func (r *Response) Write(p []byte) (int, error) {
	r.body = append(r.body, p...)
	return len(p), nil
}

// WriteString appends s to the body.
func (r *Response) WriteString(s string) {
	r.body = append(r.body, s...)
}

// Body returns the buffered body.
func (r *Response) Body() []byte { return r.body }

// SetBody replaces the buffered body.
func (r *Response) SetBody(b []byte) { r.body = b }

// SetJSON sets the structured payload value. A non-empty JSON value is
// the canonical content source for fingerprinting.
func (r *Response) SetJSON(v any) { r.jsonValue = v }

// JSON returns the structured payload value, or nil.
func (r *Response) JSON() any { return r.jsonValue }

// Completed reports whether End has run.
func (r *Response) Completed() bool { return r.completed }

// PreparePayload sets the framing headers once the body is final. It
// must not be called before content is final and no further writes will
// occur.
func (r *Response) PreparePayload() {
	if r.status == http.StatusNoContent || r.status == http.StatusNotModified {
		r.headers.Del("Content-Length")
		return
	}
	r.headers.Set("Content-Length", strconv.Itoa(len(r.body)))
}

// ComputeEtag returns the quoted content fingerprint, or "" when the
// response is not eligible: only a 200 with a non-empty JSON value is
// fingerprinted.
func (r *Response) ComputeEtag() string {
	if r.status != http.StatusOK {
		return ""
	}
	if emptyJSON(r.jsonValue) {
		return ""
	}
	tag, err := jsonFingerprint(r.jsonValue)
	if err != nil {
		logger.Error("etag_fingerprint_failed", "error", err)
		return ""
	}
	return tag
}

// SetExpectedHash records the client's previously seen fingerprint
// (sourced from an If-None-Match precondition) for HandleNotModified.
func (r *Response) SetExpectedHash(hash string) { r.expectedHash = hash }

// HandleNotModified applies conditional-GET short-circuiting. When a
// fingerprint is computable it is set as the ETag header; when it also
// equals the expected hash the payload is dropped and the status
// rewritten to 304. Callers run this before End; it is not
// auto-triggered.
func (r *Response) HandleNotModified() {
	etag := r.ComputeEtag()
	if etag == "" {
		return
	}
	r.headers.Set("ETag", etag)
	if r.expectedHash != "" && etag == r.expectedHash {
		r.jsonValue = nil
		r.body = nil
		r.status = http.StatusNotModified
	}
}

// End finalizes the response exactly once. The content fingerprint, if
// computable, is set as the ETag header first. A second End is logged
// and ignored. The registered completion handler, if any, is invoked
// synchronously with the response; the handler slot is left in place
// (Clear or the owner resets it for reuse).
func (r *Response) End() {
	if etag := r.ComputeEtag(); etag != "" {
		r.headers.Set("ETag", etag)
	}
	if r.completed {
		logger.Error("response_ended_twice", "status", r.status)
		return
	}
	r.completed = true
	logger.Debug("response_completed", "status", r.status)
	if r.completeHandler != nil {
		r.completeHandler(r)
	}
}

// SetCompleteHandler registers the one-shot completion notification.
func (r *Response) SetCompleteHandler(fn CompleteHandler) {
	r.completeHandler = fn
}

// ReleaseCompleteHandler removes and returns the completion handler,
// leaving the response without one. End still completes the response;
// it just notifies nobody.
func (r *Response) ReleaseCompleteHandler() CompleteHandler {
	fn := r.completeHandler
	r.completeHandler = nil
	return fn
}

// SetIsAliveCheck registers the connection liveness predicate.
func (r *Response) SetIsAliveCheck(fn func() bool) { r.isAliveCheck = fn }

// ReleaseIsAliveCheck removes and returns the liveness predicate.
func (r *Response) ReleaseIsAliveCheck() func() bool {
	fn := r.isAliveCheck
	r.isAliveCheck = nil
	return fn
}

// IsAlive reports whether the underlying connection is still usable.
// Without a registered predicate the connection is assumed dead. The
// check is advisory; owners use it to skip expensive work, never for
// correctness.
func (r *Response) IsAlive() bool {
	return r.isAliveCheck != nil && r.isAliveCheck()
}

// Clear resets the response to its empty state for reuse without
// reallocation. The completion handler and liveness predicate slots are
// left as the caller last set them; callers reusing a response across
// independent requests must reset those themselves.
func (r *Response) Clear() {
	logger.Debug("response_cleared")
	r.status = http.StatusOK
	r.headers.Reset()
	r.body = r.body[:0]
	r.jsonValue = nil
	r.keepAlive = true
	r.completed = false
	r.expectedHash = ""
}

// Take moves src's state into r, leaving src as freshly constructed.
// Content, keep-alive and the expected hash always transfer. The
// completion handler transfers only while src has not completed; a
// completed source's handler has already been consumed, so r's slot is
// cleared instead to keep a stale handler from firing under new
// ownership. The liveness predicate transfers regardless and is removed
// from src.
func (r *Response) Take(src *Response) {
	if r == src {
		return
	}
	logger.Debug("response_moved", "completed", src.completed)
	r.status = src.status
	r.headers = src.headers
	r.body = src.body
	r.jsonValue = src.jsonValue
	r.keepAlive = src.keepAlive
	r.expectedHash = src.expectedHash
	r.completed = src.completed

	if !src.completed {
		r.completeHandler = src.completeHandler
	} else {
		r.completeHandler = nil
	}
	r.isAliveCheck = src.isAliveCheck

	*src = Response{status: http.StatusOK, keepAlive: true}
}
