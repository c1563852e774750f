package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/glowreach/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Satisfied by pgxmock
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS clients (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name                  TEXT NOT NULL,
	role                  TEXT NOT NULL DEFAULT '',
	email                 TEXT NOT NULL DEFAULT '',
	platform              TEXT NOT NULL,
	search_terms          JSONB NOT NULL DEFAULT '[]',
	profession            TEXT NOT NULL DEFAULT '',
	location              TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL DEFAULT 'registered',
	profile_count         INTEGER NOT NULL DEFAULT 0,
	generated_message     TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	data_fetched_at       TIMESTAMPTZ,
	messages_generated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS audience_records (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	client_id  TEXT NOT NULL REFERENCES clients(id),
	platform   TEXT NOT NULL,
	unique_key TEXT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL,
	UNIQUE (client_id, platform, unique_key)
);

CREATE INDEX IF NOT EXISTS idx_audience_client ON audience_records(client_id, platform);
CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, client model.Client) (*model.Client, error) {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	if client.Status == "" {
		client.Status = model.ClientStatusRegistered
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}

	termsJSON, err := json.Marshal(client.SearchTerms)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal search terms")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO clients (id, name, role, email, platform, search_terms, profession, location, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		client.ID, client.Name, client.Role, client.Email, string(client.Platform),
		termsJSON, client.Profession, client.Location, string(client.Status), client.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert client")
	}
	return &client, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, role, email, platform, search_terms, profession, location, status,
		        profile_count, generated_message, created_at, data_fetched_at, messages_generated_at
		 FROM clients WHERE id = $1`, id,
	)
	return scanClientPG(row)
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, role, email, platform, search_terms, profession, location, status,
		        profile_count, generated_message, created_at, data_fetched_at, messages_generated_at
		 FROM clients ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list clients")
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClientPG(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, eris.Wrap(rows.Err(), "postgres: list clients iterate")
}

func (s *PostgresStore) MarkDataFetched(ctx context.Context, id string, storedCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET status = $1, profile_count = profile_count + $2, data_fetched_at = $3 WHERE id = $4`,
		string(model.ClientStatusDataFetched), storedCount, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark data fetched %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("client not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) MarkMessagesGenerated(ctx context.Context, id string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET status = $1, generated_message = $2, messages_generated_at = $3 WHERE id = $4`,
		string(model.ClientStatusMessagesGenerated), message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark messages generated %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("client not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) InsertAudience(ctx context.Context, rec model.AudienceRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal payload")
	}

	// ON CONFLICT DO NOTHING against the (client_id, platform, unique_key)
	// unique constraint makes check-and-insert a single atomic statement.
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO audience_records (id, client_id, platform, unique_key, fetched_at, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (client_id, platform, unique_key) DO NOTHING`,
		rec.ID, rec.ClientID, string(rec.Platform), rec.UniqueKey, rec.FetchedAt, payloadJSON,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: insert audience record")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) HasAudience(ctx context.Context, clientID string, platform model.Platform, uniqueKey string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM audience_records WHERE client_id = $1 AND platform = $2 AND unique_key = $3`,
		clientID, string(platform), uniqueKey,
	).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: has audience")
	}
	return true, nil
}

func (s *PostgresStore) ListAudience(ctx context.Context, filter AudienceFilter) ([]model.AudienceRecord, error) {
	query := `SELECT id, client_id, platform, unique_key, fetched_at, payload FROM audience_records WHERE client_id = $1`
	args := []any{filter.ClientID}

	if filter.Platform != "" {
		query += ` AND platform = $2`
		args = append(args, string(filter.Platform))
	}
	query += ` ORDER BY fetched_at, id`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audience")
	}
	defer rows.Close()

	var records []model.AudienceRecord
	for rows.Next() {
		var rec model.AudienceRecord
		var payloadJSON []byte
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Platform, &rec.UniqueKey, &rec.FetchedAt, &payloadJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audience record")
		}
		if err := json.Unmarshal(payloadJSON, &rec.Payload); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal payload")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list audience iterate")
}

func (s *PostgresStore) CountAudience(ctx context.Context, clientID string, platform model.Platform) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audience_records WHERE client_id = $1 AND platform = $2`,
		clientID, string(platform),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count audience")
}

// helpers

type pgScannable interface {
	Scan(dest ...any) error
}

func scanClientPG(row pgScannable) (*model.Client, error) {
	var c model.Client
	var termsJSON []byte
	var fetchedAt, generatedAt *time.Time

	err := row.Scan(&c.ID, &c.Name, &c.Role, &c.Email, &c.Platform, &termsJSON, &c.Profession,
		&c.Location, &c.Status, &c.ProfileCount, &c.GeneratedMessage, &c.CreatedAt, &fetchedAt, &generatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.New("client not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan client")
	}

	if err := json.Unmarshal(termsJSON, &c.SearchTerms); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal search terms")
	}
	c.DataFetchedAt = fetchedAt
	c.MessagesGeneratedAt = generatedAt
	return &c, nil
}
