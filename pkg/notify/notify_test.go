package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bmcd/pkg/models"
)

func TestSendDeliversEvent(t *testing.T) {
	var got models.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender([]string{srv.URL}, WithRetry(1, 0))
	ev := models.Event{ID: "e1", Message: "hello", Severity: models.SeverityOK}
	if err := s.Send(context.Background(), ev); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.ID != "e1" || got.Message != "hello" {
		t.Fatalf("delivered = %+v", got)
	}
}

func TestSendRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewSender([]string{srv.URL}, WithRetry(5, time.Millisecond))
	if err := s.Send(context.Background(), models.Event{ID: "e2"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestSendGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSender([]string{srv.URL}, WithRetry(2, time.Millisecond))
	if err := s.Send(context.Background(), models.Event{ID: "e3"}); err == nil {
		t.Fatalf("expected delivery failure")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestSenderDisabledWithoutURLs(t *testing.T) {
	s := NewSender(nil)
	if s.Enabled() {
		t.Fatalf("sender with no urls should be disabled")
	}
	if err := s.Send(context.Background(), models.Event{}); err != nil {
		t.Fatalf("Send with no subscribers should be a no-op, got %v", err)
	}
}
