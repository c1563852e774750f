// Package ingest fetches raw records from the profile source and persists
// them exactly once per (client, platform, dedup key).
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glowreach/outreach-cli/internal/model"
)

// dedupPriority lists, per platform, the fields that identify a record,
// most stable first.
var dedupPriority = map[model.Platform][]string{
	model.PlatformInstagram: {"id", "shortCode", "url"},
	model.PlatformLinkedIn:  {"profileUrl", "publicIdentifier", "fullName"},
	model.PlatformFacebook:  {"profileUrl", "id", "name"},
}

// DedupKey derives a deterministic identity string for a raw record. It
// prefers platform-specific identifier fields, falls back to a content hash
// of the full record, and as a last resort emits a synthetic key from the
// record's position in the fetch.
func DedupKey(platform model.Platform, rec model.RawRecord, ordinal int, fetchedAt time.Time) string {
	if fields, ok := dedupPriority[platform]; ok {
		if v := rec.FirstString(fields...); v != "" {
			return v
		}
	}
	if key := contentHash(rec); key != "" {
		return key
	}
	return fmt.Sprintf("%s:%d:%d", platform, ordinal, fetchedAt.UnixNano())
}

// contentHash returns a SHA-256 of the record's canonical JSON encoding.
// encoding/json sorts map keys, so equal records always hash equal.
func contentHash(rec model.RawRecord) string {
	if rec.IsEmpty() {
		return ""
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
