// Package category normalizes transaction category values.
//
// Upstream data stores the category column in several shapes: a JSON array
// literal, a bracket/quote-delimited comma list, a bare label, or nothing at
// all. This package is the single parser for all of them; call sites must
// never re-infer the shape themselves. Persisted rows always use the
// canonical form produced by Encode.
package category

import (
	"encoding/json"
	"strings"
)

// Labels used by the spending pipeline.
const (
	Food          = "Food and Drink"
	Entertainment = "Entertainment"
	Travel        = "Travel"
)

// Parse extracts an ordered list of trimmed category labels from a raw
// category value. It attempts strict JSON decoding first; on failure it
// strips one layer of bracket and double-quote characters, splits on commas,
// and trims each piece. Parse never fails; the worst case is an empty slice.
func Parse(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var decoded []string
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		out := make([]string, 0, len(decoded))
		for _, label := range decoded {
			if trimmed := strings.TrimSpace(label); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}

	// Fallback: legacy rows like `["Food and Drink", "Restaurants"]` stored
	// without valid JSON, or bare comma lists.
	stripped := strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(raw), "]"), "[")
	stripped = strings.ReplaceAll(stripped, `"`, "")
	stripped = strings.ReplaceAll(stripped, `'`, "")

	var out []string
	for _, piece := range strings.Split(stripped, ",") {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Encode produces the canonical persisted form: a JSON array of labels.
// Empty input encodes as "[]".
func Encode(labels []string) string {
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		// Marshaling a string slice cannot fail.
		return "[]"
	}
	return string(data)
}

// Contains reports whether the raw category value includes the given label.
// Matching is exact and case-sensitive after trimming.
func Contains(raw, label string) bool {
	for _, extracted := range Parse(raw) {
		if extracted == label {
			return true
		}
	}
	return false
}

// First returns the first extracted label, or "" if there is none.
func First(raw string) string {
	labels := Parse(raw)
	if len(labels) == 0 {
		return ""
	}
	return labels[0]
}
