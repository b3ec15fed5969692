package models

// Severity levels used in event log records.
const (
	SeverityOK       = "OK"
	SeverityWarning  = "Warning"
	SeverityCritical = "Critical"
)

// Event is a single management event log record. Audit-relevant fields
// (User, RemoteAddr, Success) are populated for configuration-changing
// requests; plain platform events leave them empty.
type Event struct {
	ID         string `json:"id"`
	TS         int64  `json:"ts"`
	Severity   string `json:"severity"`
	Source     string `json:"source"`
	Message    string `json:"message"`
	User       string `json:"user,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Success    bool   `json:"success,omitempty"`
}
