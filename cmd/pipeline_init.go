package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/glowreach/outreach-cli/internal/ingest"
	"github.com/glowreach/outreach-cli/internal/pipeline"
	"github.com/glowreach/outreach-cli/internal/store"
	"github.com/glowreach/outreach-cli/internal/task"
	"github.com/glowreach/outreach-cli/pkg/anthropic"
	"github.com/glowreach/outreach-cli/pkg/apify"
)

// appEnv holds the initialized store, clients and pipeline components
// shared by the serve/fetch/generate/sweep commands.
type appEnv struct {
	Store    store.Store
	Ingestor *ingest.Ingestor
	Chain    *pipeline.Chain
	Tasks    *task.Registry
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, the Apify-backed profile source, the
// generation chain and the task registry. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	apifyClient := apify.NewClient(cfg.Apify.Token,
		apify.WithBaseURL(cfg.Apify.BaseURL),
		apify.WithRateLimit(cfg.Apify.RatePerSecond),
	)
	source := ingest.NewApifySource(apifyClient, cfg.Apify, cfg.Source)
	ingestor := ingest.NewIngestor(st, source, time.Duration(cfg.Source.TimeoutSecs)*time.Second)

	engine := anthropic.NewClient(cfg.Anthropic.Key)
	chain := pipeline.New(cfg, st, engine)

	registry := task.NewRegistry(time.Duration(cfg.Tasks.GracePeriodSecs) * time.Second)

	return &appEnv{
		Store:    st,
		Ingestor: ingestor,
		Chain:    chain,
		Tasks:    registry,
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
