package audience

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/glowreach/outreach-cli/internal/model"
)

var foldCaser = cases.Fold()

// Scored pairs a raw record with its additive relevance score.
type Scored struct {
	Record model.RawRecord
	Score  int
}

// Rank scores candidates against the search terms and returns them sorted
// descending by score. Equal scores keep their original retrieval order.
// With no search terms scoring is skipped entirely and input order is
// preserved with zero scores.
func Rank(platform model.Platform, records []model.RawRecord, terms []string) []Scored {
	out := make([]Scored, len(records))
	for i, rec := range records {
		out[i] = Scored{Record: rec}
	}

	folded := foldTerms(terms)
	if len(folded) == 0 {
		return out
	}

	for i := range out {
		out[i].Score = scoreRecord(platform, out[i].Record, folded)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func foldTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, foldCaser.String(t))
	}
	return out
}

func scoreRecord(platform model.Platform, rec model.RawRecord, terms []string) int {
	switch platform {
	case model.PlatformInstagram:
		return scoreInstagram(rec, terms)
	case model.PlatformLinkedIn:
		return scoreLinkedIn(rec, terms)
	case model.PlatformFacebook:
		return scoreFacebook(rec, terms)
	default:
		return 0
	}
}

func scoreInstagram(rec model.RawRecord, terms []string) int {
	score := 0
	hashtags := make([]string, 0)
	for _, h := range rec.Strings("hashtags") {
		hashtags = append(hashtags, foldCaser.String(h))
	}
	caption := foldCaser.String(rec.String("caption"))

	for _, term := range terms {
		for _, tag := range hashtags {
			// Substring match in either direction: "beauty" hits
			// "beautytips" and "beautycare" hits "beauty".
			if strings.Contains(tag, term) || strings.Contains(term, tag) {
				score += 3
				break
			}
		}
		if caption != "" && strings.Contains(caption, term) {
			score += 2
		}
	}
	if rec.Int("likesCount") > 10 {
		score++
	}
	if rec.Int("commentsCount") > 2 {
		score++
	}
	return score
}

func scoreLinkedIn(rec model.RawRecord, terms []string) int {
	score := 0
	headline := foldCaser.String(rec.String("headline"))
	summary := foldCaser.String(rec.String("summary"))
	industry := foldCaser.String(rec.String("industry"))
	experience := foldCaser.String(stringifyList(rec.List("experience"), 3))

	for _, term := range terms {
		if headline != "" && strings.Contains(headline, term) {
			score += 4
		}
		if summary != "" && strings.Contains(summary, term) {
			score += 3
		}
		if industry != "" && strings.Contains(industry, term) {
			score += 2
		}
		if experience != "" && strings.Contains(experience, term) {
			score += 2
		}
	}
	if rec.FirstInt("connectionsCount", "connections") > 500 {
		score++
	}
	return score
}

func scoreFacebook(rec model.RawRecord, terms []string) int {
	score := 0
	categories := make([]string, 0)
	for _, c := range rec.Strings("categories") {
		categories = append(categories, foldCaser.String(c))
	}
	info := foldCaser.String(strings.Join(rec.Strings("info"), " "))
	title := foldCaser.String(rec.String("title"))
	about := foldCaser.String(rec.String("about"))

	for _, term := range terms {
		for _, cat := range categories {
			if strings.Contains(cat, term) {
				score += 4
				break
			}
		}
		if info != "" && strings.Contains(info, term) {
			score += 3
		}
		if title != "" && strings.Contains(title, term) {
			score += 2
		}
		if about != "" && strings.Contains(about, term) {
			score += 3
		}
	}

	score += rec.Int("likes")/100 + rec.Int("followers")/100
	score += int(rec.Float("rating"))
	return score
}

// stringifyList flattens up to max entries of a heterogeneous list into a
// single searchable string.
func stringifyList(items []any, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			parts = append(parts, s)
			continue
		}
		if b, err := json.Marshal(item); err == nil {
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, " ")
}
