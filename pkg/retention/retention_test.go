package retention

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bmcd/pkg/eventlog"
	"bmcd/pkg/models"
)

func TestRunOncePurgesAgedEvents(t *testing.T) {
	if err := eventlog.Open(filepath.Join(t.TempDir(), "eventlog")); err != nil {
		t.Fatalf("eventlog.Open: %v", err)
	}
	t.Cleanup(func() { _ = eventlog.Close() })

	old := time.Now().Add(-72 * time.Hour).UTC().UnixNano()
	if _, err := eventlog.Append(models.Event{Source: "t", Message: "old", TS: old}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := eventlog.Append(models.Event{Source: "t", Message: "fresh"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := RunOnce(Config{Enabled: true, Period: 24 * time.Hour}); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	evs, err := eventlog.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evs) != 1 || evs[0].Message != "fresh" {
		t.Fatalf("survivors = %+v", evs)
	}
}

func TestRunOnceRejectsZeroPeriod(t *testing.T) {
	if err := RunOnce(Config{}); err == nil {
		t.Fatalf("zero period should be rejected")
	}
}

func TestStartValidation(t *testing.T) {
	if _, err := Start(context.Background(), Config{Enabled: true, Period: time.Hour, Cron: "not a cron"}); err == nil {
		t.Fatalf("invalid cron should be rejected")
	}

	cancel, err := Start(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("disabled Start: %v", err)
	}
	cancel()

	cancel2, err := Start(context.Background(), Config{Enabled: true, Period: time.Hour})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel2()
}
