// Package audience filters, ranks and standardizes raw scraped records into
// canonical profiles.
package audience

import (
	"strings"

	"github.com/glowreach/outreach-cli/internal/model"
)

// placeholder display name LinkedIn substitutes for hidden profiles.
const linkedInPlaceholderName = "linkedin user"

// IsValid reports whether a raw record carries enough platform-appropriate
// signal to be usable. Records failing this check are excluded from ranking
// and can never be selected as the top candidate.
func IsValid(platform model.Platform, rec model.RawRecord) bool {
	if rec.IsEmpty() {
		return false
	}
	switch platform {
	case model.PlatformInstagram:
		return validInstagram(rec)
	case model.PlatformLinkedIn:
		return validLinkedIn(rec)
	case model.PlatformFacebook:
		return validFacebook(rec)
	default:
		return validGeneric(rec)
	}
}

func validInstagram(rec model.RawRecord) bool {
	if rec.String("caption") != "" {
		return true
	}
	if len(rec.Strings("hashtags")) > 0 {
		return true
	}
	return rec.FirstString("ownerId", "ownerUsername") != ""
}

func validLinkedIn(rec model.RawRecord) bool {
	name := resolveLinkedInName(rec)
	if name == "" || strings.EqualFold(name, linkedInPlaceholderName) {
		return false
	}
	if rec.String("headline") != "" || rec.String("summary") != "" || rec.String("about") != "" {
		return true
	}
	return len(rec.List("experience")) > 0
}

func validFacebook(rec model.RawRecord) bool {
	if len(rec.Strings("categories")) > 0 {
		return true
	}
	if len(rec.Strings("info")) > 0 {
		return true
	}
	if rec.String("about") != "" {
		return true
	}
	return rec.Int("likes") > 0 || rec.Int("followers") > 0
}

func validGeneric(rec model.RawRecord) bool {
	return rec.FirstString("username", "bio", "caption") != ""
}

// resolveLinkedInName returns the record's display name: full name when
// present, otherwise first+last joined.
func resolveLinkedInName(rec model.RawRecord) string {
	if full := rec.String("fullName"); full != "" {
		return strings.TrimSpace(full)
	}
	first := rec.String("firstName")
	last := rec.String("lastName")
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
