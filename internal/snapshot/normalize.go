package snapshot

import (
	"regexp"
	"time"
)

// Canonical timestamp form stored inside log entries: ISO-8601, millisecond
// precision, UTC with a Z suffix.
const timeLayout = "2006-01-02T15:04:05.000Z"

var timePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// Normalize deep-copies v into a form safe to persist inside a log entry:
// every time.Time becomes the canonical string, maps and slices are copied
// recursively, everything else passes through unchanged.
func Normalize(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(timeLayout)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(timeLayout)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	default:
		return v
	}
}

// Denormalize reverses Normalize: any string matching the canonical timestamp
// pattern is parsed back into a time.Time, maps and slices are copied
// recursively.
//
// Known limitation: a plain string that was never a timestamp but happens to
// match the pattern is converted anyway. Snapshots carry no type tags, so the
// pattern is the only signal available; callers storing such strings get a
// time.Time back.
func Denormalize(v any) any {
	switch val := v.(type) {
	case string:
		if timePattern.MatchString(val) {
			if t, err := time.Parse(timeLayout, val); err == nil {
				return t
			}
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Denormalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Denormalize(item)
		}
		return out
	default:
		return v
	}
}

// DocumentBody prepares a stored snapshot for writing back as a document
// body: denormalizes it and strips the top-level "id" field. The store owns
// the id through the document address, never through a field in the body.
func DocumentBody(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "id" {
			continue
		}
		out[k] = Denormalize(v)
	}
	return out
}

// NormalizeMap is Normalize specialized to a snapshot root, keeping the
// map type for callers that persist it directly.
func NormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return Normalize(m).(map[string]any)
}

// DenormalizeMap is Denormalize specialized to a snapshot root.
func DenormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return Denormalize(m).(map[string]any)
}
