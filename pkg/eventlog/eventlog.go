// Package eventlog persists the management event/audit log in a Pebble
// database. Records are keyed by a sortable timestamp so listing in
// insertion order is a prefix scan.
package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"bmcd/pkg/logger"
	"bmcd/pkg/models"
	"bmcd/pkg/telemetry"
)

var db *pebble.DB

// seq breaks key collisions when multiple events share a nanosecond
// timestamp.
var seq uint64

const keyPrefix = "event:"

// notifier, when set, is invoked after every successful Append. The
// callback must not block; delivery to remote subscribers happens on
// the caller's own goroutines.
var notifier func(models.Event)

// SetNotifier installs the post-append callback. Pass nil to remove it.
func SetNotifier(fn func(models.Event)) { notifier = fn }

// Open opens (or creates) the event log database at path and keeps a
// package-level handle.
func Open(path string) error {
	var err error
	logger.Info("opening_eventlog_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("eventlog_open_failed", "path", path, "error", err)
		return err
	}
	return nil
}

// Close closes the event log database if open.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("eventlog_closed")
	return nil
}

// Ready reports whether the store is opened.
func Ready() bool { return db != nil }

func eventKey(ts int64, s uint64) string {
	return fmt.Sprintf("%s%020d-%06d", keyPrefix, ts, s)
}

// Append stores an event. A missing ID and timestamp are filled in.
func Append(ev models.Event) (models.Event, error) {
	if db == nil {
		return ev, fmt.Errorf("event log not opened; call eventlog.Open first")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.TS == 0 {
		ev.TS = time.Now().UTC().UnixNano()
	}
	if ev.Severity == "" {
		ev.Severity = models.SeverityOK
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return ev, fmt.Errorf("marshal event: %w", err)
	}
	key := eventKey(ev.TS, atomic.AddUint64(&seq, 1))
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("event_append_failed", "key", key, "error", err)
		return ev, err
	}
	telemetry.EventsAppended.Inc()
	logger.Debug("event_appended", "id", ev.ID, "severity", ev.Severity, "source", ev.Source)
	if notifier != nil {
		notifier(ev)
	}
	return ev, nil
}

// List returns events in insertion order. limit <= 0 means no limit.
func List(limit int) ([]models.Event, error) {
	if db == nil {
		return nil, fmt.Errorf("event log not opened; call eventlog.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	prefix := []byte(keyPrefix)
	var out []models.Event
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var ev models.Event
		if err := json.Unmarshal(iter.Value(), &ev); err != nil {
			logger.Error("event_decode_failed", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Get returns the event with the given ID, or an error when absent.
func Get(id string) (models.Event, error) {
	evs, err := List(0)
	if err != nil {
		return models.Event{}, err
	}
	for _, ev := range evs {
		if ev.ID == id {
			return ev, nil
		}
	}
	return models.Event{}, fmt.Errorf("event %s not found", id)
}

// Clear deletes all events and returns the number removed.
func Clear() (int, error) {
	return deleteWhere(func(models.Event) bool { return true })
}

// PurgeOlderThan deletes events with a timestamp before cutoff and
// returns the number removed.
func PurgeOlderThan(cutoff time.Time) (int, error) {
	c := cutoff.UTC().UnixNano()
	return deleteWhere(func(ev models.Event) bool { return ev.TS < c })
}

func deleteWhere(match func(models.Event) bool) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("event log not opened; call eventlog.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	prefix := []byte(keyPrefix)
	var doomed [][]byte
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var ev models.Event
		if err := json.Unmarshal(iter.Value(), &ev); err != nil {
			// undecodable records are removed too; they cannot be served
			doomed = append(doomed, append([]byte(nil), iter.Key()...))
			continue
		}
		if match(ev) {
			doomed = append(doomed, append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	batch := db.NewBatch()
	for _, k := range doomed {
		if err := batch.Delete(k, nil); err != nil {
			_ = batch.Close()
			return 0, err
		}
	}
	if err := db.Apply(batch, pebble.Sync); err != nil {
		_ = batch.Close()
		return 0, err
	}
	if err := batch.Close(); err != nil {
		return 0, err
	}
	telemetry.EventsPurged.Add(float64(len(doomed)))
	if len(doomed) > 0 {
		logger.Info("events_deleted", "count", len(doomed))
	}
	return len(doomed), nil
}

// ExportText renders events as one human-readable line each, oldest
// first, for the raw log export endpoint.
func ExportText(limit int) (string, error) {
	evs, err := List(limit)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, ev := range evs {
		fmt.Fprintf(&b, "%s [%s] %s: %s\n",
			time.Unix(0, ev.TS).UTC().Format(time.RFC3339Nano), ev.Severity, ev.Source, ev.Message)
	}
	return b.String(), nil
}
