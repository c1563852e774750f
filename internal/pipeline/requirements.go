// Package pipeline implements the three-stage generation chain: requirement
// extraction, candidate retrieval and message synthesis.
package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/glowreach/outreach-cli/internal/model"
)

// ExtractRequirements is Stage 1: it normalizes the client's targeting
// configuration into the retrieval stage's input. The requested platform
// must exactly equal the client's registered platform; a mismatch is a hard
// validation failure, never silently corrected.
func ExtractRequirements(client *model.Client, requested model.Platform) (*model.Requirements, error) {
	platform := requested
	if platform == "" {
		platform = client.Platform
	}
	if platform != client.Platform {
		return nil, eris.Wrapf(model.ErrChainValidation,
			"pipeline: requested platform %q does not match client platform %q", platform, client.Platform)
	}
	if !platform.Supported() {
		return nil, eris.Wrapf(model.ErrUnsupportedPlatform, "pipeline: platform %q", platform)
	}

	return &model.Requirements{
		ClientID:    client.ID,
		Platform:    platform,
		SearchTerms: cleanTerms(client.SearchTerms),
		Profession:  strings.TrimSpace(client.Profession),
		Location:    strings.TrimSpace(client.Location),
	}, nil
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
