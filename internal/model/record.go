package model

import (
	"encoding/json"
	"time"
)

// RawRecord is an opaque, platform-dependent field mapping as delivered by
// the profile source. Schemas vary per platform and per actor version, so the
// record is consumed only through the typed accessors below.
type RawRecord map[string]any

// IsEmpty reports whether the record carries no fields at all.
func (r RawRecord) IsEmpty() bool {
	return len(r) == 0
}

// String returns the value at key as a string, or "" when absent or not a
// string.
func (r RawRecord) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// FirstString returns the first non-empty string among the given keys.
func (r RawRecord) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the value at key as an int. JSON numbers decode as float64, so
// both forms are accepted.
func (r RawRecord) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// FirstInt returns the first non-zero int among the given keys. Actor
// versions disagree on numeric field names, so callers probe in priority
// order.
func (r RawRecord) FirstInt(keys ...string) int {
	for _, k := range keys {
		if n := r.Int(k); n != 0 {
			return n
		}
	}
	return 0
}

// Float returns the value at key as a float64.
func (r RawRecord) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// Strings returns the value at key as a string slice. Non-string elements
// are stringified via their JSON encoding.
func (r RawRecord) Strings(key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
			continue
		}
		b, err := json.Marshal(e)
		if err != nil {
			continue
		}
		out = append(out, string(b))
	}
	return out
}

// List returns the value at key as a slice of arbitrary entries.
func (r RawRecord) List(key string) []any {
	raw, _ := r[key].([]any)
	return raw
}

// AudienceRecord is a RawRecord persisted by the dedup store, stamped with
// provenance fields. The raw payload survives round-trips unmodified.
type AudienceRecord struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Platform  Platform  `json:"platform"`
	UniqueKey string    `json:"unique_key"`
	FetchedAt time.Time `json:"fetched_at"`
	Payload   RawRecord `json:"payload"`
}
