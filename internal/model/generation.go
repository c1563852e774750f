package model

// Requirements is Stage 1's normalized output: the targeting parameters the
// retrieval stage works from.
type Requirements struct {
	ClientID    string   `json:"client_id"`
	Platform    Platform `json:"platform"`
	SearchTerms []string `json:"search_terms"`
	Profession  string   `json:"profession,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// NoCandidate is Stage 2's explicit absence result: no valid profile exists
// for the platform. It propagates to Stage 3 unchanged; Stage 3 must never
// fabricate a profile in its place.
type NoCandidate struct {
	Platform Platform `json:"platform"`
	Reason   string   `json:"reason"`
}

// StageStatus is the outcome of a single chain stage.
type StageStatus string

const (
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
)

// StageResult records one stage's execution within a chain invocation.
type StageResult struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Duration int64       `json:"duration_ms"`
	Error    string      `json:"error,omitempty"`
}

// GenerationResult is the chain's terminal output: the message plus a
// provenance record naming the target and the profile fields that shaped it.
type GenerationResult struct {
	ClientID         string        `json:"client_id"`
	Platform         Platform      `json:"platform"`
	Target           string        `json:"target"`
	Message          string        `json:"message"`
	Rationale        string        `json:"rationale"`
	InsufficientData bool          `json:"insufficient_data,omitempty"`
	RelevanceScore   int           `json:"relevance_score"`
	Stages           []StageResult `json:"stages"`
	Attempts         int           `json:"attempts"`
}
