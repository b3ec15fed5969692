package response

import (
	"net/http"
	"strings"
	"testing"
)

func TestFingerprintDeterministicAcrossKeyOrder(t *testing.T) {
	a := New()
	a.SetJSON(map[string]any{"alpha": 1, "beta": "two", "gamma": []any{1, 2, 3}})

	b := New()
	b.SetJSON(map[string]any{"gamma": []any{1, 2, 3}, "beta": "two", "alpha": 1})

	ta := a.ComputeEtag()
	tb := b.ComputeEtag()
	if ta == "" || tb == "" {
		t.Fatalf("expected non-empty etags, got %q and %q", ta, tb)
	}
	if ta != tb {
		t.Fatalf("equal json values produced different etags: %q vs %q", ta, tb)
	}
	if !strings.HasPrefix(ta, `"`) || !strings.HasSuffix(ta, `"`) {
		t.Fatalf("etag not quoted: %q", ta)
	}
	if len(ta) != 18 { // 16 hex digits plus two quotes
		t.Fatalf("etag not fixed width: %q (len %d)", ta, len(ta))
	}
}

func TestComputeEtagSkipConditions(t *testing.T) {
	r := New()
	if tag := r.ComputeEtag(); tag != "" {
		t.Fatalf("empty json value should not produce etag, got %q", tag)
	}

	r.SetJSON(map[string]any{"a": 1})
	r.SetStatus(http.StatusInternalServerError)
	if tag := r.ComputeEtag(); tag != "" {
		t.Fatalf("non-200 status should not produce etag, got %q", tag)
	}

	r.SetStatus(http.StatusOK)
	if tag := r.ComputeEtag(); tag == "" {
		t.Fatalf("200 with json value should produce etag")
	}
}

func TestEndInvokesHandlerExactlyOnce(t *testing.T) {
	r := New()
	calls := 0
	r.SetCompleteHandler(func(res *Response) {
		calls++
		if !res.Completed() {
			t.Fatalf("handler observed incomplete response")
		}
	})

	r.End()
	r.End()

	if calls != 1 {
		t.Fatalf("completion handler called %d times, want 1", calls)
	}
	if !r.Completed() {
		t.Fatalf("response not completed after End")
	}
}

func TestEndWithoutHandlerIsNoop(t *testing.T) {
	r := New()
	r.End()
	if !r.Completed() {
		t.Fatalf("response should complete without a handler")
	}
}

func TestEndSetsEtagHeader(t *testing.T) {
	r := New()
	r.SetJSON(map[string]any{"a": 1})
	r.WriteString(`{"a":1}`)
	r.End()

	if r.Status() != http.StatusOK {
		t.Fatalf("status = %d, want 200", r.Status())
	}
	if r.GetHeader("etag") == "" {
		t.Fatalf("expected etag header after End")
	}
	if len(r.Body()) == 0 {
		t.Fatalf("body should be untouched by End")
	}
}

func TestHandleNotModifiedMatch(t *testing.T) {
	ref := New()
	ref.SetJSON(map[string]any{"a": 1})
	expected := ref.ComputeEtag()
	if expected == "" {
		t.Fatalf("reference etag empty")
	}

	r := New()
	r.SetJSON(map[string]any{"a": 1})
	r.WriteString(`{"a":1}`)
	r.SetExpectedHash(expected)
	r.HandleNotModified()
	r.End()

	if r.Status() != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", r.Status())
	}
	if r.JSON() != nil {
		t.Fatalf("json value should be cleared on 304")
	}
	if len(r.Body()) != 0 {
		t.Fatalf("body should be cleared on 304")
	}
	if r.GetHeader("ETag") != expected {
		t.Fatalf("etag header = %q, want %q", r.GetHeader("ETag"), expected)
	}
}

func TestHandleNotModifiedMismatchLeavesResponse(t *testing.T) {
	r := New()
	r.SetJSON(map[string]any{"a": 1})
	r.WriteString(`{"a":1}`)
	r.SetExpectedHash(`"0000000000000000"`)
	r.HandleNotModified()

	if r.Status() != http.StatusOK {
		t.Fatalf("status = %d, want 200", r.Status())
	}
	if r.JSON() == nil || len(r.Body()) == 0 {
		t.Fatalf("content should be unchanged on hash mismatch")
	}
	if r.GetHeader("ETag") == "" {
		t.Fatalf("etag header should still be set on mismatch")
	}
}

func TestTakeCarriesPendingHandler(t *testing.T) {
	src := New()
	src.SetStatus(http.StatusAccepted)
	src.WriteString("payload")
	src.SetJSON(map[string]any{"k": "v"})
	src.SetExpectedHash(`"cafe"`)
	src.SetKeepAlive(false)
	calls := 0
	src.SetCompleteHandler(func(*Response) { calls++ })
	src.SetIsAliveCheck(func() bool { return true })

	dst := New()
	dst.Take(src)

	// source is reusable and empty, handler slots gone
	if src.Completed() || len(src.Body()) != 0 || src.JSON() != nil || src.Status() != http.StatusOK {
		t.Fatalf("source not reset after Take: %+v", src)
	}
	if src.ReleaseCompleteHandler() != nil {
		t.Fatalf("source kept completion handler after Take")
	}
	if src.IsAlive() {
		t.Fatalf("source kept liveness predicate after Take")
	}

	if dst.Status() != http.StatusAccepted || string(dst.Body()) != "payload" {
		t.Fatalf("content did not transfer")
	}
	if !dst.IsAlive() {
		t.Fatalf("liveness predicate did not transfer")
	}
	dst.End()
	if calls != 1 {
		t.Fatalf("transferred handler called %d times, want 1", calls)
	}
}

func TestTakeFromCompletedClearsHandler(t *testing.T) {
	src := New()
	src.SetCompleteHandler(func(*Response) {})
	src.End()

	dst := New()
	stale := 0
	dst.SetCompleteHandler(func(*Response) { stale++ })
	dst.Take(src)

	if dst.ReleaseCompleteHandler() != nil {
		t.Fatalf("destination inherited a handler from a completed source")
	}
	if !dst.Completed() {
		t.Fatalf("completed flag should transfer")
	}
	if stale != 0 {
		t.Fatalf("stale handler fired during Take")
	}
}

func TestTakeSelfIsNoop(t *testing.T) {
	r := New()
	r.WriteString("body")
	r.Take(r)
	if string(r.Body()) != "body" {
		t.Fatalf("self-Take mutated response")
	}
}

func TestClearResetsStateAllowsReEnd(t *testing.T) {
	r := New()
	calls := 0
	r.SetCompleteHandler(func(*Response) { calls++ })
	r.SetExpectedHash(`"beef"`)
	r.SetStatus(http.StatusTeapot)
	r.WriteString("x")
	r.SetHeader("X-Test", "1")
	r.End()

	r.Clear()
	if r.Completed() {
		t.Fatalf("Clear should reset completed")
	}
	if r.Status() != http.StatusOK || len(r.Body()) != 0 || r.GetHeader("X-Test") != "" {
		t.Fatalf("Clear left state behind")
	}

	// Handler slot survives Clear; a fresh End fires it again.
	r.End()
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2 (once per logical request)", calls)
	}
}

func TestClearDropsExpectedHash(t *testing.T) {
	ref := New()
	ref.SetJSON(map[string]any{"a": 1})
	expected := ref.ComputeEtag()

	r := New()
	r.SetJSON(map[string]any{"a": 1})
	r.SetExpectedHash(expected)
	r.Clear()

	r.SetJSON(map[string]any{"a": 1})
	r.HandleNotModified()
	if r.Status() == http.StatusNotModified {
		t.Fatalf("expected hash survived Clear")
	}
}

func TestIsAliveWithoutPredicate(t *testing.T) {
	r := New()
	if r.IsAlive() {
		t.Fatalf("no predicate should mean not alive")
	}
	r.SetIsAliveCheck(func() bool { return false })
	if r.IsAlive() {
		t.Fatalf("predicate result not honored")
	}
	r.SetIsAliveCheck(func() bool { return true })
	if !r.IsAlive() {
		t.Fatalf("predicate result not honored")
	}
}

func TestPreparePayloadFraming(t *testing.T) {
	r := New()
	r.WriteString("hello")
	r.PreparePayload()
	if got := r.GetHeader("Content-Length"); got != "5" {
		t.Fatalf("Content-Length = %q, want 5", got)
	}

	r.SetStatus(http.StatusNotModified)
	r.PreparePayload()
	if r.GetHeader("Content-Length") != "" {
		t.Fatalf("304 must not carry Content-Length")
	}
}

func TestDeferredCompletionFromAnotherCallSite(t *testing.T) {
	// Handler returns without ending; a later continuation holding the
	// response finishes it. Exercises the deferred-End contract.
	r := New()
	done := make(chan int, 1)
	r.SetCompleteHandler(func(res *Response) { done <- res.Status() })

	finish := func(res *Response) {
		res.SetStatus(http.StatusAccepted)
		res.End()
	}
	finish(r)

	select {
	case st := <-done:
		if st != http.StatusAccepted {
			t.Fatalf("completion saw status %d, want 202", st)
		}
	default:
		t.Fatalf("completion handler did not run")
	}
}
