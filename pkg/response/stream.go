package response

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"bmcd/pkg/logger"
)

// DefaultStreamCapacity is the fixed body capacity of a StreamResponse.
const DefaultStreamCapacity = 1 << 20

// ErrCapacityExceeded is returned by StreamResponse.Write when a write
// would grow the body past its fixed capacity. This is a hard failure:
// the streaming path exists precisely to cap per-response memory, so
// overflowing writes fail the request rather than truncate or
// reallocate.
var ErrCapacityExceeded = errors.New("stream response capacity exceeded")

// StreamResponse is the bounded streaming response representation. It
// shares the Response lifecycle contract (status, headers, keep-alive,
// one-shot completion, liveness) but stores its body in a
// fixed-capacity buffer and has no structured value or fingerprinting
// support. StreamResponse must not be copied; ownership moves with
// Take.
type StreamResponse struct {
	status    int
	headers   Headers
	buf       []byte
	keepAlive bool
	completed bool

	completeHandler func()
	isAliveCheck    func() bool
}

var streamCapacity int64 = DefaultStreamCapacity

// SetStreamCapacity overrides the capacity used by NewStream. Intended
// for startup configuration; values below one fall back to the default.
func SetStreamCapacity(n int64) {
	if n < 1 {
		n = DefaultStreamCapacity
	}
	atomic.StoreInt64(&streamCapacity, n)
}

// NewStream returns an empty streaming response with the configured
// capacity, 1 MiB unless overridden. The buffer is allocated up front so
// the worst-case memory footprint per in-flight response is fixed.
func NewStream() *StreamResponse {
	return NewStreamSize(int(atomic.LoadInt64(&streamCapacity)))
}

// NewStreamSize returns an empty streaming response with the given body
// capacity in bytes.
func NewStreamSize(capacity int) *StreamResponse {
	return &StreamResponse{
		status:    http.StatusOK,
		keepAlive: true,
		buf:       make([]byte, 0, capacity),
	}
}

// SetHeader sets a header, replacing existing values for the name.
func (s *StreamResponse) SetHeader(name, value string) { s.headers.Set(name, value) }

// AddHeader appends a header value without replacing existing ones.
func (s *StreamResponse) AddHeader(name, value string) { s.headers.Add(name, value) }

// GetHeader returns the first value for name, or "" when absent.
func (s *StreamResponse) GetHeader(name string) string { return s.headers.Get(name) }

// Headers exposes the underlying header set.
func (s *StreamResponse) Headers() *Headers { return &s.headers }

// SetStatus sets the HTTP status code.
func (s *StreamResponse) SetStatus(code int) { s.status = code }

// Status returns the HTTP status code.
func (s *StreamResponse) Status() int { return s.status }

// StatusText returns the canonical reason phrase for the current code.
func (s *StreamResponse) StatusText() string { return http.StatusText(s.status) }

// SetKeepAlive records the transport keep-alive hint.
func (s *StreamResponse) SetKeepAlive(k bool) { s.keepAlive = k }

// KeepAlive returns the transport keep-alive hint.
func (s *StreamResponse) KeepAlive() bool { return s.keepAlive }

// Write appends p to the bounded body buffer. A write that would exceed
// the capacity fails whole with ErrCapacityExceeded; no partial data is
// retained from it.
func (s *StreamResponse) Write(p []byte) (int, error) {
	if len(s.buf)+len(p) > cap(s.buf) {
		logger.Error("stream_response_overflow", "len", len(s.buf), "cap", cap(s.buf), "write", len(p))
		return 0, ErrCapacityExceeded
	}
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// WriteString appends s to the bounded body buffer.
func (s *StreamResponse) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Body returns the buffered body.
func (s *StreamResponse) Body() []byte { return s.buf }

// Len returns the current body length.
func (s *StreamResponse) Len() int { return len(s.buf) }

// Capacity returns the fixed body capacity.
func (s *StreamResponse) Capacity() int { return cap(s.buf) }

// Completed reports whether End has run.
func (s *StreamResponse) Completed() bool { return s.completed }

// PreparePayload sets the framing headers once the body is final.
func (s *StreamResponse) PreparePayload() {
	if s.status == http.StatusNoContent || s.status == http.StatusNotModified {
		s.headers.Del("Content-Length")
		return
	}
	s.headers.Set("Content-Length", strconv.Itoa(len(s.buf)))
}

// End finalizes the response exactly once, invoking the registered
// completion handler synchronously. A second End is logged and ignored.
func (s *StreamResponse) End() {
	if s.completed {
		logger.Error("stream_response_ended_twice", "status", s.status)
		return
	}
	s.completed = true
	logger.Debug("stream_response_completed", "status", s.status)
	if s.completeHandler != nil {
		s.completeHandler()
	}
}

// SetCompleteHandler registers the one-shot completion notification.
// The streaming handler takes no argument; the owner keeps its own
// reference to the response.
func (s *StreamResponse) SetCompleteHandler(fn func()) { s.completeHandler = fn }

// SetIsAliveCheck registers the connection liveness predicate.
func (s *StreamResponse) SetIsAliveCheck(fn func() bool) { s.isAliveCheck = fn }

// IsAlive reports whether the underlying connection is still usable.
func (s *StreamResponse) IsAlive() bool {
	return s.isAliveCheck != nil && s.isAliveCheck()
}

// Clear resets the response for reuse, keeping the allocated buffer and
// the handler slots.
func (s *StreamResponse) Clear() {
	logger.Debug("stream_response_cleared")
	s.status = http.StatusOK
	s.headers.Reset()
	s.buf = s.buf[:0]
	s.keepAlive = true
	s.completed = false
}

// Take moves src's state into s and hands s's old buffer (emptied) to
// src, so src is left freshly constructed without a new allocation.
// When the two were sized differently, src ends up with s's former
// capacity. The completion handler follows the same conditional-carry
// rule as Response.Take.
func (s *StreamResponse) Take(src *StreamResponse) {
	if s == src {
		return
	}
	logger.Debug("stream_response_moved", "completed", src.completed)
	oldBuf := s.buf[:0]
	s.status = src.status
	s.headers = src.headers
	s.buf = src.buf
	s.keepAlive = src.keepAlive
	s.completed = src.completed
	if !src.completed {
		s.completeHandler = src.completeHandler
	} else {
		s.completeHandler = nil
	}
	s.isAliveCheck = src.isAliveCheck

	*src = StreamResponse{status: http.StatusOK, keepAlive: true, buf: oldBuf}
}
