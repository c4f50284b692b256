package domain

import (
	"encoding/json"
	"strings"
)

// Set is an ordered collection of unique, non-empty labels (niches, keywords,
// traffic locations). Uniqueness is case-insensitive; the first spelling wins.
// In the store a Set is serialized as a comma-delimited string.
type Set []string

// NewSet trims each item, drops empty ones and removes duplicates.
func NewSet(items ...string) Set {
	out := make(Set, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ParseSet splits a delimited store value into a Set. Entries that were
// saved as a JSON array literal (e.g. `["tech","finance"]`) are expanded.
func ParseSet(s string) Set {
	if strings.TrimSpace(s) == "" {
		return Set{}
	}
	var items []string
	for _, part := range splitTopLevel(s) {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") {
			var nested []string
			if err := json.Unmarshal([]byte(part), &nested); err == nil {
				items = append(items, nested...)
				continue
			}
		}
		items = append(items, part)
	}
	return NewSet(items...)
}

// splitTopLevel splits on commas outside of [...] brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// String returns the delimited form used in store rows.
func (s Set) String() string {
	return strings.Join(s, ",")
}

// Contains reports whether label is in the set, ignoring case.
func (s Set) Contains(label string) bool {
	label = strings.TrimSpace(label)
	for _, item := range s {
		if strings.EqualFold(item, label) {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one label.
func (s Set) Intersects(other Set) bool {
	for _, item := range other {
		if s.Contains(item) {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts either a JSON array or a delimited string.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*s = NewSet(items...)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseSet(raw)
	return nil
}
