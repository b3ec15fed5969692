package response

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// jsonFingerprint digests the canonical JSON encoding of v into a quoted
// fixed-width hex entity tag. encoding/json writes map keys in sorted
// order, so semantically equal values produce identical tags regardless
// of insertion order, run, or platform.
func jsonFingerprint(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json value for fingerprint: %w", err)
	}
	return `"` + fmt.Sprintf("%016x", xxhash.Sum64(b)) + `"`, nil
}

// emptyJSON reports whether v carries no content: nil, an empty object,
// an empty array, or an empty string.
func emptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	}
	return false
}
