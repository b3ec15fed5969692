package api

import (
	"net/http"
	"strconv"
	"time"

	"bmcd/pkg/eventlog"
	"bmcd/pkg/logger"
	"bmcd/pkg/models"
	"bmcd/pkg/response"
	"bmcd/pkg/transport"
)

const entriesBase = "/redfish/v1/Managers/bmc/LogServices/EventLog/Entries"

func eventLogService(req *transport.Request, res *response.Response) {
	res.SetJSON(map[string]any{
		"@odata.id":   "/redfish/v1/Managers/bmc/LogServices/EventLog",
		"@odata.type": "#LogService.v1_2_0.LogService",
		"Id":          "EventLog",
		"Name":        "Event Log Service",
		"Entries":     map[string]any{"@odata.id": entriesBase},
		"Actions": map[string]any{
			"#LogService.ClearLog": map[string]any{
				"target": "/redfish/v1/Managers/bmc/LogServices/EventLog/Actions/LogService.ClearLog",
			},
		},
	})
	res.HandleNotModified()
	res.End()
}

func entryJSON(ev models.Event) map[string]any {
	return map[string]any{
		"@odata.id":   entriesBase + "/" + ev.ID,
		"@odata.type": "#LogEntry.v1_9_0.LogEntry",
		"Id":          ev.ID,
		"Name":        "Event Log Entry",
		"EntryType":   "Event",
		"Severity":    ev.Severity,
		"Message":     ev.Message,
		"Created":     time.Unix(0, ev.TS).UTC().Format(time.RFC3339),
		"Oem": map[string]any{
			"Source": ev.Source,
		},
	}
}

func eventLogEntries(req *transport.Request, res *response.Response) {
	limit := 0
	if raw := req.Header.Get("X-Max-Entries"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	evs, err := eventlog.List(limit)
	if err != nil {
		logger.Error("eventlog_list_failed", "error", err)
		internalError(res)
		return
	}
	members := make([]any, 0, len(evs))
	for _, ev := range evs {
		members = append(members, entryJSON(ev))
	}
	res.SetJSON(map[string]any{
		"@odata.id":           entriesBase,
		"@odata.type":         "#LogEntryCollection.LogEntryCollection",
		"Name":                "Event Log Entries",
		"Members":             members,
		"Members@odata.count": len(members),
	})
	res.HandleNotModified()
	res.End()
}

func eventLogEntry(req *transport.Request, res *response.Response) {
	id := req.Vars["entryID"]
	ev, err := eventlog.Get(id)
	if err != nil {
		resourceNotFound(res, "LogEntry", id)
		return
	}
	res.SetJSON(entryJSON(ev))
	res.HandleNotModified()
	res.End()
}

func eventLogClear(req *transport.Request, res *response.Response) {
	n, err := eventlog.Clear()
	if err != nil {
		logger.Error("eventlog_clear_failed", "error", err)
		internalError(res)
		return
	}
	logger.Info("eventlog_cleared", "removed", n, "remote", req.RemoteAddr)
	res.SetStatus(http.StatusNoContent)
	res.End()
}

// eventLogExport streams the raw log text through the bounded response.
// An overflowing log fails the request outright; the bounded buffer is
// a hard ceiling, not a soft limit.
func eventLogExport(req *transport.Request, res *response.StreamResponse) {
	if !res.IsAlive() {
		// peer is gone; skip the export work entirely
		res.SetStatus(http.StatusServiceUnavailable)
		res.End()
		return
	}
	text, err := eventlog.ExportText(0)
	if err != nil {
		logger.Error("eventlog_export_failed", "error", err)
		res.SetStatus(http.StatusInternalServerError)
		res.End()
		return
	}
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	if _, err := res.WriteString(text); err != nil {
		logger.Error("eventlog_export_overflow", "error", err)
		res.Clear()
		res.SetStatus(http.StatusInsufficientStorage)
		res.End()
		return
	}
	res.End()
}
