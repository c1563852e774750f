package store

import (
	"context"

	"github.com/glowreach/outreach-cli/internal/model"
)

// AudienceFilter specifies criteria for listing stored audience records.
type AudienceFilter struct {
	ClientID string         `json:"client_id"`
	Platform model.Platform `json:"platform,omitempty"`
	Limit    int            `json:"limit,omitempty"`
}

// Store defines the persistence interface for clients and deduplicated
// audience records. Only single-document atomicity is assumed; the
// (client_id, platform, unique_key) uniqueness guard on insert is the one
// store-level invariant the ingestion path relies on.
type Store interface {
	// Clients
	CreateClient(ctx context.Context, client model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	// MarkDataFetched records a successful fetch attempt: status becomes
	// data_fetched and the new-record count is accumulated.
	MarkDataFetched(ctx context.Context, id string, storedCount int) error
	// MarkMessagesGenerated persists the chain's terminal message on the client.
	MarkMessagesGenerated(ctx context.Context, id string, message string) error

	// Audience
	// InsertAudience persists the record unless one with the same
	// (client_id, platform, unique_key) already exists. The check and
	// insert are atomic; concurrent runs never both insert the same key.
	InsertAudience(ctx context.Context, rec model.AudienceRecord) (inserted bool, err error)
	HasAudience(ctx context.Context, clientID string, platform model.Platform, uniqueKey string) (bool, error)
	ListAudience(ctx context.Context, filter AudienceFilter) ([]model.AudienceRecord, error)
	CountAudience(ctx context.Context, clientID string, platform model.Platform) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
