package audience

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/glowreach/outreach-cli/internal/model"
)

const (
	instagramBioFallback  = "Creative Instagram content creator"
	instagramNameFallback = "Instagram content creator"
	linkedInNameFallback  = "LinkedIn Member"
	facebookBioFallback   = "Facebook page"
)

// Standardize maps one validated, scored raw record into a canonical
// profile. The relevance score and validity flag are carried forward
// unchanged. A malformed record returns ErrStandardizationFailure so callers
// can degrade it to an excluded result instead of aborting the batch.
func Standardize(platform model.Platform, rec model.RawRecord, score int, valid bool) (*model.CanonicalProfile, error) {
	if rec.IsEmpty() {
		return nil, eris.Wrapf(model.ErrStandardizationFailure, "audience: empty %s record", platform)
	}

	var p *model.CanonicalProfile
	switch platform {
	case model.PlatformInstagram:
		p = standardizeInstagram(rec)
	case model.PlatformLinkedIn:
		p = standardizeLinkedIn(rec)
	case model.PlatformFacebook:
		p = standardizeFacebook(rec)
	default:
		p = standardizeGeneric(platform, rec)
	}

	p.Platform = platform
	p.RelevanceScore = score
	p.HasValidContent = valid
	if !platform.Supported() {
		// Generic profiles are always usable once scavenged.
		p.HasValidContent = true
	}
	return p, nil
}

func standardizeInstagram(rec model.RawRecord) *model.CanonicalProfile {
	postURL := rec.FirstString("url", "postUrl")
	username := rec.String("ownerUsername")
	if username == "" {
		username = usernameFromURL(postURL)
	}
	if username == "" {
		if ownerID := rec.String("ownerId"); ownerID != "" {
			username = "user_" + ownerID
		}
	}

	caption := rec.String("caption")
	bio := captionBio(caption)
	if bio == "" {
		bio = instagramBioFallback
	}

	displayName := username
	if displayName == "" {
		displayName = instagramNameFallback
	}

	hashtags := rec.Strings("hashtags")
	if len(hashtags) > 10 {
		hashtags = hashtags[:10]
	}

	likes := rec.Int("likesCount")
	comments := rec.Int("commentsCount")

	return &model.CanonicalProfile{
		Username:    username,
		DisplayName: displayName,
		Bio:         bio,
		ProfileURL:  postURL,
		Instagram: &model.InstagramData{
			Hashtags: hashtags,
			RecentPost: model.RecentPost{
				Caption:  excerpt(caption, 150),
				Likes:    likes,
				Comments: comments,
				URL:      postURL,
			},
			EngagementScore: engagementScore(likes, comments),
			ContentType:     rec.String("type"),
			PostDate:        rec.String("timestamp"),
			OwnerID:         rec.String("ownerId"),
		},
	}
}

func standardizeLinkedIn(rec model.RawRecord) *model.CanonicalProfile {
	name := resolveLinkedInName(rec)
	if name == "" {
		name = linkedInNameFallback
	}

	bio := rec.FirstString("headline", "summary", "about")
	bio = truncate(bio, 200)

	profileURL := rec.FirstString("profileUrl", "url")
	username := rec.String("publicIdentifier")
	if username == "" {
		username = usernameFromURL(profileURL)
	}
	if username == "" {
		username = name
	}

	return &model.CanonicalProfile{
		Username:    username,
		DisplayName: name,
		Bio:         bio,
		ProfileURL:  profileURL,
		LinkedIn: &model.LinkedInData{
			Headline:    rec.String("headline"),
			Experience:  stringifyEntries(rec.List("experience"), 3),
			Skills:      capStrings(rec.Strings("skills"), 5),
			Education:   stringifyEntries(rec.List("education"), 2),
			Connections: rec.FirstInt("connectionsCount", "connections"),
			Industry:    rec.String("industry"),
			Company:     rec.FirstString("companyName", "company"),
			Location:    rec.String("location"),
		},
	}
}

func standardizeFacebook(rec model.RawRecord) *model.CanonicalProfile {
	profileURL := rec.FirstString("pageUrl", "facebookUrl", "url", "profileUrl")
	username := rec.FirstString("name", "title")
	if username == "" {
		username = usernameFromURL(profileURL)
	}

	categories := rec.Strings("categories")
	detail := rec.String("about")
	if detail == "" {
		detail = strings.Join(rec.Strings("info"), " ")
	}
	detail = truncate(detail, 120)

	var bioParts []string
	if len(categories) > 0 {
		bioParts = append(bioParts, strings.Join(categories, ", "))
	}
	if detail != "" {
		bioParts = append(bioParts, detail)
	}
	bio := strings.Join(bioParts, " | ")
	if bio == "" {
		bio = facebookBioFallback
	}

	return &model.CanonicalProfile{
		Username:    username,
		DisplayName: username,
		Bio:         bio,
		ProfileURL:  profileURL,
		Facebook: &model.FacebookData{
			Categories: categories,
			Likes:      rec.Int("likes"),
			Followers:  rec.Int("followers"),
			Rating:     rec.Float("rating"),
			Phone:      rec.String("phone"),
			Email:      rec.String("email"),
			Website:    rec.String("website"),
			Title:      rec.String("title"),
			Address:    rec.String("address"),
			Founded:    rec.FirstString("founded", "creation_date"),
		},
	}
}

func standardizeGeneric(platform model.Platform, rec model.RawRecord) *model.CanonicalProfile {
	username := rec.FirstString("username", "name", "ownerUsername")
	bio := truncate(rec.FirstString("bio", "description", "caption"), 200)

	return &model.CanonicalProfile{
		Username:    username,
		DisplayName: username,
		Bio:         bio,
		ProfileURL:  rec.FirstString("url", "profileUrl"),
	}
}

// usernameFromURL extracts a username from a profile or post URL path,
// skipping non-username segments of Instagram post URLs (/p/, /reel/, /tv/).
func usernameFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(u.Path, "/") {
		switch seg {
		case "", "p", "reel", "tv", "in", "company":
			continue
		}
		return seg
	}
	return ""
}

// captionBio derives a bio from the caption: up to two lines that are not
// dominated by hashtags, truncated to 100 characters.
func captionBio(caption string) string {
	var lines []string
	for _, line := range strings.Split(caption, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hashtagDominant(line) {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	return truncate(strings.Join(lines, " "), 100)
}

// hashtagDominant reports whether more than half of a line's tokens are
// hashtags.
func hashtagDominant(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}
	hashtags := 0
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "#") {
			hashtags++
		}
	}
	return hashtags*2 > len(tokens)
}

// engagementScore is (likes + 5*comments)/100 rounded to two decimals.
func engagementScore(likes, comments int) float64 {
	raw := float64(likes+5*comments) / 100
	return float64(int(raw*100+0.5)) / 100
}

// truncate caps s at limit runes, replacing the tail with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// excerpt caps s at limit runes, appending an ellipsis past the cap.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func capStrings(in []string, max int) []string {
	if len(in) > max {
		return in[:max]
	}
	return in
}

// stringifyEntries flattens up to max list entries into display strings.
// Map entries with title/company keys render as "title at company".
func stringifyEntries(items []any, max int) []string {
	if len(items) > max {
		items = items[:max]
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			entry := model.RawRecord(v)
			title := entry.FirstString("title", "degree", "fieldOfStudy")
			org := entry.FirstString("companyName", "company", "schoolName", "school")
			switch {
			case title != "" && org != "":
				out = append(out, fmt.Sprintf("%s at %s", title, org))
			case title != "":
				out = append(out, title)
			case org != "":
				out = append(out, org)
			default:
				if b, err := json.Marshal(v); err == nil {
					out = append(out, string(b))
				}
			}
		default:
			if b, err := json.Marshal(item); err == nil {
				out = append(out, string(b))
			}
		}
	}
	return out
}
