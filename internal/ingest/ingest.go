package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
)

// Result tallies one ingestion run.
type Result struct {
	Stored  int
	Skipped int
}

// Ingestor fetches raw records for a client and persists each one exactly
// once. Re-running against an unchanged upstream data set stores nothing new.
type Ingestor struct {
	store   store.Store
	source  Source
	timeout time.Duration
}

// NewIngestor creates an Ingestor. timeout bounds each profile-source call.
func NewIngestor(st store.Store, src Source, timeout time.Duration) *Ingestor {
	return &Ingestor{store: st, source: src, timeout: timeout}
}

// Run ingests audience records for one client. On success the client is
// marked data_fetched with the new-record count, even when zero new records
// were stored.
func (ing *Ingestor) Run(ctx context.Context, client *model.Client) (*Result, error) {
	if !client.Platform.Supported() {
		return nil, eris.Wrapf(model.ErrUnsupportedPlatform, "ingest: client %s platform %q", client.ID, client.Platform)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, ing.timeout)
	defer cancel()

	records, err := ing.source.Fetch(fetchCtx, client.Platform, client.SearchTerms, client.Profession, client.Location)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: fetch for client %s", client.ID)
	}

	fetchedAt := time.Now().UTC()
	res := &Result{}
	for i, rec := range records {
		if rec.IsEmpty() {
			continue
		}
		inserted, err := ing.store.InsertAudience(ctx, model.AudienceRecord{
			ClientID:  client.ID,
			Platform:  client.Platform,
			UniqueKey: DedupKey(client.Platform, rec, i, fetchedAt),
			FetchedAt: fetchedAt,
			Payload:   rec,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: store record for client %s", client.ID)
		}
		if inserted {
			res.Stored++
		} else {
			res.Skipped++
		}
	}

	if err := ing.store.MarkDataFetched(ctx, client.ID, res.Stored); err != nil {
		return nil, eris.Wrapf(err, "ingest: mark data fetched for client %s", client.ID)
	}

	zap.L().Info("ingestion complete",
		zap.String("client_id", client.ID),
		zap.String("platform", string(client.Platform)),
		zap.Int("stored", res.Stored),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// SweepAll runs ingestion for every registered client. A failure for one
// client is logged and does not abort the sweep; that client's status is
// left unchanged.
func (ing *Ingestor) SweepAll(ctx context.Context, maxConcurrent int) error {
	clients, err := ing.store.ListClients(ctx)
	if err != nil {
		return eris.Wrap(err, "ingest: list clients for sweep")
	}

	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i := range clients {
		client := clients[i]
		g.Go(func() error {
			if _, err := ing.Run(gctx, &client); err != nil {
				zap.L().Warn("sweep ingestion failed for client",
					zap.String("client_id", client.ID),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	return g.Wait()
}
