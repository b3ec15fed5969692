package eventlog

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bmcd/pkg/models"
)

func openTestLog(t *testing.T) {
	t.Helper()
	if err := Open(filepath.Join(t.TempDir(), "eventlog")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestAppendAndList(t *testing.T) {
	openTestLog(t)

	ev, err := Append(models.Event{Source: "test", Message: "first"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ev.ID == "" || ev.TS == 0 || ev.Severity != models.SeverityOK {
		t.Fatalf("defaults not filled: %+v", ev)
	}
	if _, err := Append(models.Event{Source: "test", Message: "second", Severity: models.SeverityWarning}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	evs, err := List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("List returned %d events, want 2", len(evs))
	}
	if evs[0].Message != "first" || evs[1].Message != "second" {
		t.Fatalf("events out of order: %+v", evs)
	}

	limited, err := List(1)
	if err != nil {
		t.Fatalf("List(1): %v", err)
	}
	if len(limited) != 1 || limited[0].Message != "first" {
		t.Fatalf("List(1) = %+v", limited)
	}
}

func TestGetByID(t *testing.T) {
	openTestLog(t)

	ev, err := Append(models.Event{Source: "test", Message: "findme"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := Get(ev.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Message != "findme" {
		t.Fatalf("Get = %+v", got)
	}
	if _, err := Get("nope"); err == nil {
		t.Fatalf("Get of unknown id should fail")
	}
}

func TestClear(t *testing.T) {
	openTestLog(t)

	for i := 0; i < 3; i++ {
		if _, err := Append(models.Event{Source: "test", Message: "x"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	n, err := Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Fatalf("Clear removed %d, want 3", n)
	}
	evs, err := List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("events remain after Clear: %+v", evs)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	openTestLog(t)

	old := time.Now().Add(-48 * time.Hour).UTC().UnixNano()
	if _, err := Append(models.Event{Source: "test", Message: "old", TS: old}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := Append(models.Event{Source: "test", Message: "new"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	n, err := PurgeOlderThan(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d, want 1", n)
	}
	evs, err := List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evs) != 1 || evs[0].Message != "new" {
		t.Fatalf("wrong survivor: %+v", evs)
	}
}

func TestExportText(t *testing.T) {
	openTestLog(t)

	if _, err := Append(models.Event{Source: "bmc", Message: "power on", Severity: models.SeverityOK}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	out, err := ExportText(0)
	if err != nil {
		t.Fatalf("ExportText: %v", err)
	}
	if !strings.Contains(out, "[OK] bmc: power on") {
		t.Fatalf("export = %q", out)
	}
}

func TestNotOpened(t *testing.T) {
	if Ready() {
		t.Fatalf("store should not be open")
	}
	if _, err := Append(models.Event{}); err == nil {
		t.Fatalf("Append without Open should fail")
	}
	if _, err := List(0); err == nil {
		t.Fatalf("List without Open should fail")
	}
}
