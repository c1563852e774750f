package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/glowreach/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS clients (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	role                  TEXT NOT NULL DEFAULT '',
	email                 TEXT NOT NULL DEFAULT '',
	platform              TEXT NOT NULL,
	search_terms          TEXT NOT NULL DEFAULT '[]',
	profession            TEXT NOT NULL DEFAULT '',
	location              TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL DEFAULT 'registered',
	profile_count         INTEGER NOT NULL DEFAULT 0,
	generated_message     TEXT NOT NULL DEFAULT '',
	created_at            DATETIME NOT NULL DEFAULT (datetime('now')),
	data_fetched_at       DATETIME,
	messages_generated_at DATETIME
);

CREATE TABLE IF NOT EXISTS audience_records (
	id         TEXT PRIMARY KEY,
	client_id  TEXT NOT NULL REFERENCES clients(id),
	platform   TEXT NOT NULL,
	unique_key TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	payload    TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_audience_dedup
	ON audience_records(client_id, platform, unique_key);
CREATE INDEX IF NOT EXISTS idx_audience_client ON audience_records(client_id, platform);
CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateClient(ctx context.Context, client model.Client) (*model.Client, error) {
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
		return nil, eris.Wrap(err, "sqlite: marshal search terms")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, role, email, platform, search_terms, profession, location, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID, client.Name, client.Role, client.Email, string(client.Platform),
		string(termsJSON), client.Profession, client.Location, string(client.Status), client.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert client")
	}
	return &client, nil
}

func (s *SQLiteStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, email, platform, search_terms, profession, location, status,
		        profile_count, generated_message, created_at, data_fetched_at, messages_generated_at
		 FROM clients WHERE id = ?`, id,
	)
	return scanClient(row)
}

func (s *SQLiteStore) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, email, platform, search_terms, profession, location, status,
		        profile_count, generated_message, created_at, data_fetched_at, messages_generated_at
		 FROM clients ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list clients")
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, eris.Wrap(rows.Err(), "sqlite: list clients iterate")
}

func (s *SQLiteStore) MarkDataFetched(ctx context.Context, id string, storedCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET status = ?, profile_count = profile_count + ?, data_fetched_at = ? WHERE id = ?`,
		string(model.ClientStatusDataFetched), storedCount, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark data fetched %s", id)
	}
	return checkRowsAffected(res, "client", id)
}

func (s *SQLiteStore) MarkMessagesGenerated(ctx context.Context, id string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET status = ?, generated_message = ?, messages_generated_at = ? WHERE id = ?`,
		string(model.ClientStatusMessagesGenerated), message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark messages generated %s", id)
	}
	return checkRowsAffected(res, "client", id)
}

func (s *SQLiteStore) InsertAudience(ctx context.Context, rec model.AudienceRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal payload")
	}

	// INSERT OR IGNORE makes the uniqueness check and insert one atomic
	// statement against idx_audience_dedup.
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO audience_records (id, client_id, platform, unique_key, fetched_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ClientID, string(rec.Platform), rec.UniqueKey, rec.FetchedAt, string(payloadJSON),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert audience record")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) HasAudience(ctx context.Context, clientID string, platform model.Platform, uniqueKey string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM audience_records WHERE client_id = ? AND platform = ? AND unique_key = ?`,
		clientID, string(platform), uniqueKey,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: has audience")
	}
	return true, nil
}

func (s *SQLiteStore) ListAudience(ctx context.Context, filter AudienceFilter) ([]model.AudienceRecord, error) {
	query := `SELECT id, client_id, platform, unique_key, fetched_at, payload FROM audience_records WHERE client_id = ?`
	args := []any{filter.ClientID}

	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, string(filter.Platform))
	}
	query += ` ORDER BY fetched_at, id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audience")
	}
	defer rows.Close()

	var records []model.AudienceRecord
	for rows.Next() {
		var rec model.AudienceRecord
		var payloadJSON string
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Platform, &rec.UniqueKey, &rec.FetchedAt, &payloadJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audience record")
		}
		if err := json.Unmarshal([]byte(payloadJSON), &rec.Payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal payload")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list audience iterate")
}

func (s *SQLiteStore) CountAudience(ctx context.Context, clientID string, platform model.Platform) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audience_records WHERE client_id = ? AND platform = ?`,
		clientID, string(platform),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count audience")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanClient(row scannable) (*model.Client, error) {
	var c model.Client
	var termsJSON string
	var fetchedAt, generatedAt sql.NullTime

	err := row.Scan(&c.ID, &c.Name, &c.Role, &c.Email, &c.Platform, &termsJSON, &c.Profession,
		&c.Location, &c.Status, &c.ProfileCount, &c.GeneratedMessage, &c.CreatedAt, &fetchedAt, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("client not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan client")
	}

	if err := json.Unmarshal([]byte(termsJSON), &c.SearchTerms); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal search terms")
	}
	if fetchedAt.Valid {
		t := fetchedAt.Time
		c.DataFetchedAt = &t
	}
	if generatedAt.Valid {
		t := generatedAt.Time
		c.MessagesGeneratedAt = &t
	}
	return &c, nil
}
