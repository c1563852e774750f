package model

import "github.com/rotisserie/eris"

// Pipeline error kinds. These are matched with eris.Is at the task registry
// boundary and rendered as human-readable failure reasons; they are never
// propagated past it.
var (
	// ErrSourceUnavailable indicates the profile source call failed or timed out.
	ErrSourceUnavailable = eris.New("profile source unavailable")

	// ErrNoValidCandidate indicates every stored record was filtered out
	// before ranking. It propagates through Stage 2 into Stage 3, which must
	// render it as an insufficient-data outcome.
	ErrNoValidCandidate = eris.New("no valid candidate")

	// ErrStandardizationFailure marks a single malformed record. It is
	// localized: the record degrades to nil and siblings continue.
	ErrStandardizationFailure = eris.New("standardization failure")

	// ErrChainValidation indicates Stage 1 rejected the request, e.g. a
	// platform mismatch against the client's registered platform.
	ErrChainValidation = eris.New("chain validation failure")

	// ErrChainBudgetExceeded indicates the chain exhausted its iteration
	// budget without producing a terminal result.
	ErrChainBudgetExceeded = eris.New("chain budget exceeded")
)
