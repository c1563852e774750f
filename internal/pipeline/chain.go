package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/config"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
	"github.com/glowreach/outreach-cli/pkg/anthropic"
)

// Chain runs one generation invocation through the three stages in strict
// order. A new Chain value is created per invocation; the store is the only
// state shared between invocations.
type Chain struct {
	cfg    *config.Config
	store  store.Store
	engine anthropic.Client
}

// New creates a Chain with its dependencies.
func New(cfg *config.Config, st store.Store, engine anthropic.Client) *Chain {
	return &Chain{cfg: cfg, store: st, engine: engine}
}

// Run executes the chain for one client. Transient stage failures are
// retried within the configured iteration budget; exhausting it surfaces as
// ErrChainBudgetExceeded. requested may be empty to target the client's
// registered platform.
func (c *Chain) Run(ctx context.Context, clientID string, requested model.Platform) (*model.GenerationResult, error) {
	client, err := c.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: load client %s", clientID)
	}

	log := zap.L().With(
		zap.String("client_id", client.ID),
		zap.String("platform", string(client.Platform)),
	)
	log.Info("chain: starting generation")

	result := &model.GenerationResult{
		ClientID: client.ID,
		Platform: client.Platform,
	}

	trackStage := func(name string, fn func() error) error {
		start := time.Now()
		stageErr := fn()
		stage := model.StageResult{
			Name:     name,
			Status:   model.StageStatusComplete,
			Duration: time.Since(start).Milliseconds(),
		}
		if stageErr != nil {
			stage.Status = model.StageStatusFailed
			stage.Error = stageErr.Error()
			log.Warn("chain: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", stage.Duration),
				zap.Error(stageErr),
			)
		} else {
			log.Info("chain: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", stage.Duration),
			)
		}
		result.Stages = append(result.Stages, stage)
		return stageErr
	}

	// Stage 1 failures are hard validation failures, never retried.
	var req *model.Requirements
	if err := trackStage("1_requirements", func() error {
		var stageErr error
		req, stageErr = ExtractRequirements(client, requested)
		return stageErr
	}); err != nil {
		return result, err
	}

	maxAttempts := c.cfg.Pipeline.MaxIterations
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		var profile *model.CanonicalProfile
		var absent *model.NoCandidate
		if lastErr = trackStage("2_retrieve", func() error {
			var stageErr error
			profile, absent, stageErr = retrieveCandidate(ctx, c.store, req)
			return stageErr
		}); lastErr != nil {
			continue
		}

		var out *synthesized
		if lastErr = trackStage("3_synthesize", func() error {
			var stageErr error
			out, stageErr = synthesizeMessage(ctx, c.engine, c.cfg.Anthropic, client, profile, absent)
			return stageErr
		}); lastErr != nil {
			continue
		}

		result.Message = out.Message
		result.Rationale = out.Rationale
		result.Target = out.Target
		if absent != nil {
			result.InsufficientData = true
			log.Info("chain: finished with insufficient data")
			return result, nil
		}
		result.RelevanceScore = profile.RelevanceScore

		if err := c.store.MarkMessagesGenerated(ctx, client.ID, out.Message); err != nil {
			return result, eris.Wrapf(err, "pipeline: persist message for client %s", client.ID)
		}
		log.Info("chain: generation complete",
			zap.String("target", result.Target),
			zap.Int("attempts", attempt),
		)
		return result, nil
	}

	return result, eris.Wrapf(model.ErrChainBudgetExceeded,
		"pipeline: %d attempts exhausted: %v", maxAttempts, lastErr)
}
