package response

import "testing"

func TestHeadersCaseInsensitiveLookup(t *testing.T) {
	var h Headers
	h.Set("Content-Type", "application/json")
	if got := h.Get("content-type"); got != "application/json" {
		t.Fatalf("Get = %q", got)
	}
	if got := h.Get("CONTENT-TYPE"); got != "application/json" {
		t.Fatalf("Get = %q", got)
	}
	if got := h.Get("missing"); got != "" {
		t.Fatalf("missing header = %q, want empty", got)
	}
}

func TestHeadersMultiValue(t *testing.T) {
	var h Headers
	h.Add("Set-Cookie", "a=1")
	h.Add("set-cookie", "b=2")
	vals := h.Values("SET-COOKIE")
	if len(vals) != 2 || vals[0] != "a=1" || vals[1] != "b=2" {
		t.Fatalf("Values = %v", vals)
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
}

func TestHeadersSetReplacesAllValues(t *testing.T) {
	var h Headers
	h.Add("X-Token", "one")
	h.Add("x-token", "two")
	h.Set("X-TOKEN", "three")
	if vals := h.Values("x-token"); len(vals) != 1 || vals[0] != "three" {
		t.Fatalf("Values after Set = %v", vals)
	}
}

func TestHeadersPreserveInsertionOrder(t *testing.T) {
	var h Headers
	h.Set("B", "2")
	h.Set("A", "1")
	h.Set("C", "3")
	all := h.All()
	if len(all) != 3 || all[0].Name != "B" || all[1].Name != "A" || all[2].Name != "C" {
		t.Fatalf("All = %v", all)
	}
}

func TestHeadersDel(t *testing.T) {
	var h Headers
	h.Add("X-A", "1")
	h.Add("x-a", "2")
	h.Set("X-B", "3")
	h.Del("X-A")
	if h.Has("x-a") {
		t.Fatalf("Del left entries behind")
	}
	if h.Get("x-b") != "3" {
		t.Fatalf("Del removed wrong header")
	}
}
