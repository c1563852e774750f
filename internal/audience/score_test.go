package audience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowreach/outreach-cli/internal/model"
)

func TestRank_InstagramScenario(t *testing.T) {
	records := []model.RawRecord{
		{"hashtags": []any{"beauty", "makeup"}, "likesCount": float64(15), "commentsCount": float64(3)},
		{"hashtags": []any{"travel"}, "likesCount": float64(0), "commentsCount": float64(0)},
	}

	ranked := Rank(model.PlatformInstagram, records, []string{"beauty"})

	require.Len(t, ranked, 2)
	// 3 (hashtag) + 1 (likes > 10) + 1 (comments > 2)
	assert.Equal(t, 5, ranked[0].Score)
	assert.Equal(t, 0, ranked[1].Score)
	assert.Equal(t, records[0], ranked[0].Record)
	assert.Equal(t, records[1], ranked[1].Record)
}

func TestRank_InstagramSubstringEitherDirection(t *testing.T) {
	records := []model.RawRecord{
		{"hashtags": []any{"beautytips"}},
		{"hashtags": []any{"glow"}},
	}

	// Term contained in hashtag.
	ranked := Rank(model.PlatformInstagram, records, []string{"beauty"})
	assert.Equal(t, 3, ranked[0].Score)

	// Hashtag contained in term.
	ranked = Rank(model.PlatformInstagram, records, []string{"glowing"})
	assert.Equal(t, 3, ranked[0].Score)
	assert.Equal(t, records[1], ranked[0].Record)
}

func TestRank_InstagramCaptionMatch(t *testing.T) {
	records := []model.RawRecord{
		{"caption": "My BEAUTY routine for fall"},
	}
	ranked := Rank(model.PlatformInstagram, records, []string{"beauty"})
	assert.Equal(t, 2, ranked[0].Score)
}

func TestRank_LinkedInWeights(t *testing.T) {
	records := []model.RawRecord{
		{
			"headline":    "Skincare Marketing Lead",
			"summary":     "Growing skincare brands",
			"industry":    "Skincare & Cosmetics",
			"experience":  []any{map[string]any{"title": "Head of Skincare"}},
			"connections": float64(800),
		},
	}
	ranked := Rank(model.PlatformLinkedIn, records, []string{"skincare"})
	// 4 + 3 + 2 + 2 + 1 (connections > 500)
	assert.Equal(t, 12, ranked[0].Score)
}

func TestRank_LinkedInConnectionsCountField(t *testing.T) {
	// The profile-scraper actor emits connectionsCount, not connections.
	records := []model.RawRecord{
		{
			"fullName":         "Jane Doe",
			"headline":         "Skincare Marketing Lead",
			"connectionsCount": float64(800),
		},
	}
	ranked := Rank(model.PlatformLinkedIn, records, []string{"skincare"})
	// 4 (headline) + 1 (connections > 500)
	assert.Equal(t, 5, ranked[0].Score)
}

func TestRank_LinkedInExperienceOnlyTopThree(t *testing.T) {
	records := []model.RawRecord{
		{
			"fullName": "Jane Doe",
			"experience": []any{
				map[string]any{"title": "Analyst"},
				map[string]any{"title": "Manager"},
				map[string]any{"title": "Director"},
				map[string]any{"title": "Skincare Founder"},
			},
		},
	}
	ranked := Rank(model.PlatformLinkedIn, records, []string{"skincare"})
	// Fourth experience entry is beyond the top three, so no match.
	assert.Equal(t, 0, ranked[0].Score)
}

func TestRank_FacebookWeightsAndMagnitudeBonus(t *testing.T) {
	records := []model.RawRecord{
		{
			"categories": []any{"Beauty Salon"},
			"info":       []any{"beauty treatments daily"},
			"title":      "Beauty by Dana",
			"about":      "The best beauty studio in town",
			"likes":      float64(250),
			"followers":  float64(130),
			"rating":     float64(4),
		},
	}
	ranked := Rank(model.PlatformFacebook, records, []string{"beauty"})
	// 4 + 3 + 2 + 3 + floor(250/100) + floor(130/100) + 4
	assert.Equal(t, 19, ranked[0].Score)
}

func TestRank_EmptyTermsPreservesOrder(t *testing.T) {
	records := []model.RawRecord{
		{"caption": "b", "likesCount": float64(500)},
		{"caption": "a"},
	}
	ranked := Rank(model.PlatformInstagram, records, nil)
	require.Len(t, ranked, 2)
	assert.Zero(t, ranked[0].Score)
	assert.Zero(t, ranked[1].Score)
	assert.Equal(t, records[0], ranked[0].Record)
	assert.Equal(t, records[1], ranked[1].Record)
}

func TestRank_StableForEqualScores(t *testing.T) {
	records := []model.RawRecord{
		{"caption": "first post about beauty", "ownerId": "1"},
		{"caption": "second post about beauty", "ownerId": "2"},
		{"caption": "third post about beauty", "ownerId": "3"},
	}
	ranked := Rank(model.PlatformInstagram, records, []string{"beauty"})
	require.Len(t, ranked, 3)
	for i, cand := range ranked {
		assert.Equal(t, 2, cand.Score)
		assert.Equal(t, records[i], cand.Record)
	}
}

func TestRank_BlankTermsAreIgnored(t *testing.T) {
	records := []model.RawRecord{{"caption": "hello", "likesCount": float64(20)}}
	ranked := Rank(model.PlatformInstagram, records, []string{"  ", ""})
	// Only blank terms: scoring is skipped, no engagement bonus applied.
	assert.Zero(t, ranked[0].Score)
}
