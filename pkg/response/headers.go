package response

import "strings"

// HeaderEntry is a single header name/value pair.
type HeaderEntry struct {
	Name  string
	Value string
}

// Headers is an ordered header multimap. Names are matched
// case-insensitively on read; writes impose no uniqueness constraint,
// matching HTTP field semantics. The zero value is ready to use.
//
// Headers is not safe for concurrent use; a response and its headers are
// owned by one logical task at a time (see Response ownership rules).
type Headers struct {
	entries []HeaderEntry
}

// Set replaces any existing values for name with a single value,
// preserving the position of the first occurrence. If name is not
// present it is appended.
func (h *Headers) Set(name, value string) {
	out := h.entries[:0]
	replaced := false
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			if !replaced {
				out = append(out, HeaderEntry{Name: name, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, e)
	}
	h.entries = out
	if !replaced {
		h.entries = append(h.entries, HeaderEntry{Name: name, Value: value})
	}
}

// Add appends a value for name, keeping any existing values.
func (h *Headers) Add(name, value string) {
	h.entries = append(h.entries, HeaderEntry{Name: name, Value: value})
}

// Get returns the first value for name, or "" when absent.
func (h *Headers) Get(name string) string {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value
		}
	}
	return ""
}

// Values returns all values for name in insertion order.
func (h *Headers) Values(name string) []string {
	var vals []string
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			vals = append(vals, e.Value)
		}
	}
	return vals
}

// Has reports whether at least one value exists for name.
func (h *Headers) Has(name string) bool {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

// Del removes all values for name.
func (h *Headers) Del(name string) {
	out := h.entries[:0]
	for _, e := range h.entries {
		if !strings.EqualFold(e.Name, name) {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Len returns the number of stored entries.
func (h *Headers) Len() int { return len(h.entries) }

// All returns a copy of the entries in insertion order.
func (h *Headers) All() []HeaderEntry {
	out := make([]HeaderEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Reset drops all entries.
func (h *Headers) Reset() { h.entries = nil }
