package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/config"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/pkg/apify"
)

// Source yields raw records for a platform and search parameters. An empty
// result is a valid, non-error outcome.
type Source interface {
	Fetch(ctx context.Context, platform model.Platform, terms []string, profession, location string) ([]model.RawRecord, error)
}

// apifySource implements Source by running the per-platform Apify actors.
type apifySource struct {
	client apify.Client
	apify  config.ApifyConfig
	source config.SourceConfig
}

// NewApifySource creates a Source backed by Apify actors.
func NewApifySource(client apify.Client, apifyCfg config.ApifyConfig, sourceCfg config.SourceConfig) Source {
	return &apifySource{client: client, apify: apifyCfg, source: sourceCfg}
}

func (s *apifySource) Fetch(ctx context.Context, platform model.Platform, terms []string, profession, location string) ([]model.RawRecord, error) {
	actorID, input := s.buildRun(platform, terms, profession, location)
	if actorID == "" {
		return nil, eris.Wrapf(model.ErrUnsupportedPlatform, "ingest: no actor for %s", platform)
	}

	zap.L().Debug("running profile source actor",
		zap.String("platform", string(platform)),
		zap.String("actor", actorID),
	)

	items, err := s.client.RunActor(ctx, actorID, input)
	if err != nil {
		return nil, eris.Wrapf(model.ErrSourceUnavailable, "ingest: %s source failed: %v", platform, err)
	}

	records := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		records = append(records, model.RawRecord(item))
	}
	return records, nil
}

func (s *apifySource) buildRun(platform model.Platform, terms []string, profession, location string) (string, map[string]any) {
	switch platform {
	case model.PlatformInstagram:
		return s.apify.InstagramActor, map[string]any{
			"hashtags":     hashtagQuery(terms, profession, location, s.source.BoostTags),
			"resultsLimit": s.source.ResultsLimit,
		}
	case model.PlatformLinkedIn:
		return s.apify.LinkedInActor, map[string]any{
			"searchQuery": searchQuery(terms, profession, location),
			"count":       s.source.ResultsLimit,
		}
	case model.PlatformFacebook:
		return s.apify.FacebookActor, map[string]any{
			"searchQuery":  searchQuery(terms, profession, location),
			"resultsLimit": s.source.ResultsLimit,
		}
	default:
		return "", nil
	}
}

var hashtagRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// cleanHashtag strips characters Instagram rejects in hashtags. Tags shorter
// than three characters carry no signal and are dropped.
func cleanHashtag(term string) string {
	tag := hashtagRe.ReplaceAllString(strings.ToLower(term), "")
	if len(tag) <= 2 {
		return ""
	}
	return tag
}

// Actors degrade past ten hashtags; the search terms come first so the
// cap trims boost tags before client criteria.
const maxHashtags = 10

// hashtagQuery converts search terms plus the profession and location hints
// into hashtags and appends the configured boost tags, deduplicated,
// preserving order, capped at maxHashtags.
func hashtagQuery(terms []string, profession, location string, boost []string) []string {
	candidates := append(append([]string{}, terms...), profession, location)
	candidates = append(candidates, boost...)

	seen := make(map[string]bool)
	var tags []string
	for _, t := range candidates {
		tag := cleanHashtag(t)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxHashtags {
			break
		}
	}
	return tags
}

// searchQuery joins terms with optional profession and location hints.
func searchQuery(terms []string, profession, location string) string {
	parts := make([]string, 0, len(terms)+2)
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if profession = strings.TrimSpace(profession); profession != "" {
		parts = append(parts, profession)
	}
	if location = strings.TrimSpace(location); location != "" {
		parts = append(parts, location)
	}
	return strings.Join(parts, " ")
}
