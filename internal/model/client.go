package model

import "time"

// ClientStatus tracks a client's progress through the outreach flow.
type ClientStatus string

const (
	ClientStatusRegistered        ClientStatus = "registered"
	ClientStatusDataFetched       ClientStatus = "data_fetched"
	ClientStatusMessagesGenerated ClientStatus = "messages_generated"
	ClientStatusFailed            ClientStatus = "failed"
)

// Client holds a registered client's targeting configuration. Created on
// registration, mutated by the ingestion and generation stages, never deleted.
type Client struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Role        string       `json:"role,omitempty"`
	Email       string       `json:"email,omitempty"`
	Platform    Platform     `json:"platform"`
	SearchTerms []string     `json:"search_terms"`
	Profession  string       `json:"profession,omitempty"`
	Location    string       `json:"location,omitempty"`
	Status      ClientStatus `json:"status"`

	ProfileCount     int    `json:"profile_count"`
	GeneratedMessage string `json:"generated_message,omitempty"`

	CreatedAt           time.Time  `json:"created_at"`
	DataFetchedAt       *time.Time `json:"data_fetched_at,omitempty"`
	MessagesGeneratedAt *time.Time `json:"messages_generated_at,omitempty"`
}
