package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/glowreach/outreach-cli/internal/config"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/pkg/anthropic"
)

const synthesisSystemPrompt = `You write short, personalized outreach messages for social media.
Reference only the concrete profile details you are given. Never invent
details that are not in the profile. Keep the message under 120 words,
warm and specific, with a single clear call to action.`

// synthesized is Stage 3's output before it is folded into the chain result.
type synthesized struct {
	Message   string
	Rationale string
	Target    string
}

// synthesizeMessage is Stage 3: it turns the retrieved profile into a
// platform-styled personalized message via the generation engine. When
// Stage 2 reported absence, the acknowledgment is composed locally without
// an engine call and never names a fabricated profile.
func synthesizeMessage(ctx context.Context, engine anthropic.Client, cfg config.AnthropicConfig, client *model.Client, profile *model.CanonicalProfile, absent *model.NoCandidate) (*synthesized, error) {
	if absent != nil {
		return composeInsufficient(absent), nil
	}

	prompt, rationale := buildPrompt(client, profile)

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSecs)*time.Second)
	defer cancel()

	temp := cfg.Temperature
	resp, err := engine.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(synthesisSystemPrompt),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: synthesize message")
	}
	resp.Usage.LogCost(cfg.Model, "synthesis")

	message := strings.TrimSpace(resp.Text())
	if message == "" {
		return nil, eris.New("pipeline: engine returned empty message")
	}

	return &synthesized{
		Message:   message,
		Rationale: rationale,
		Target:    profile.Username,
	}, nil
}

// composeInsufficient renders Stage 2's absence result as a user-visible
// outcome. No engine call, no invented profile.
func composeInsufficient(absent *model.NoCandidate) *synthesized {
	return &synthesized{
		Message: fmt.Sprintf(
			"We could not generate a personalized message: insufficient %s data (%s). Run data collection again or broaden the search terms.",
			absent.Platform, absent.Reason),
		Rationale: fmt.Sprintf("no valid %s candidate was available", absent.Platform),
	}
}

// buildPrompt assembles the engine prompt from the profile's concrete
// fields and returns it with a provenance rationale naming the fields used.
func buildPrompt(client *model.Client, profile *model.CanonicalProfile) (string, string) {
	var b strings.Builder
	var used []string

	fmt.Fprintf(&b, "Write a %s outreach message from %s", profile.Platform, client.Name)
	if client.Role != "" {
		fmt.Fprintf(&b, " (%s)", client.Role)
	}
	fmt.Fprintf(&b, " to the profile below.\n\n")

	fmt.Fprintf(&b, "Username: %s\n", profile.Username)
	if profile.DisplayName != "" && profile.DisplayName != profile.Username {
		fmt.Fprintf(&b, "Name: %s\n", profile.DisplayName)
	}
	if profile.Bio != "" {
		fmt.Fprintf(&b, "Bio: %s\n", profile.Bio)
		used = append(used, "bio")
	}

	switch {
	case profile.Instagram != nil:
		ig := profile.Instagram
		if len(ig.Hashtags) > 0 {
			fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(ig.Hashtags, ", "))
			used = append(used, "hashtags")
		}
		if ig.RecentPost.Caption != "" {
			fmt.Fprintf(&b, "Recent post: %s\n", ig.RecentPost.Caption)
			used = append(used, "recent post")
		}
	case profile.LinkedIn != nil:
		li := profile.LinkedIn
		if li.Headline != "" {
			fmt.Fprintf(&b, "Headline: %s\n", li.Headline)
			used = append(used, "headline")
		}
		if len(li.Experience) > 0 {
			fmt.Fprintf(&b, "Experience: %s\n", strings.Join(li.Experience, "; "))
			used = append(used, "experience")
		}
		if li.Company != "" {
			fmt.Fprintf(&b, "Company: %s\n", li.Company)
		}
	case profile.Facebook != nil:
		fb := profile.Facebook
		if len(fb.Categories) > 0 {
			fmt.Fprintf(&b, "Categories: %s\n", strings.Join(fb.Categories, ", "))
			used = append(used, "categories")
		}
		if fb.Title != "" {
			fmt.Fprintf(&b, "Page title: %s\n", fb.Title)
		}
	}

	if len(client.SearchTerms) > 0 {
		fmt.Fprintf(&b, "\nThe sender is looking for: %s\n", strings.Join(client.SearchTerms, ", "))
	}

	rationale := fmt.Sprintf("personalized for %s using %s", profile.Username, joinFields(used))
	return b.String(), rationale
}

func joinFields(fields []string) string {
	if len(fields) == 0 {
		return "the profile summary"
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
}
