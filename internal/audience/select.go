package audience

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/model"
)

// SelectTop filters the candidates for validity, ranks the survivors
// against the search terms and standardizes the best one. Records that fail
// standardization are skipped and the next-ranked candidate is tried.
// Returns ErrNoValidCandidate when nothing usable remains.
func SelectTop(platform model.Platform, records []model.RawRecord, terms []string) (*model.CanonicalProfile, error) {
	valid := make([]model.RawRecord, 0, len(records))
	for _, rec := range records {
		if IsValid(platform, rec) {
			valid = append(valid, rec)
		}
	}
	if len(valid) == 0 {
		return nil, eris.Wrapf(model.ErrNoValidCandidate, "audience: no %s data found", platform)
	}

	ranked := Rank(platform, valid, terms)
	for _, cand := range ranked {
		profile, err := Standardize(platform, cand.Record, cand.Score, true)
		if err != nil {
			zap.L().Warn("standardization failed, skipping record",
				zap.String("platform", string(platform)),
				zap.Error(err),
			)
			continue
		}
		return profile, nil
	}
	return nil, eris.Wrapf(model.ErrNoValidCandidate, "audience: no standardizable %s candidate", platform)
}

// StandardizeAll maps every valid candidate into a canonical profile,
// preserving rank order. Used by the audience listing views.
func StandardizeAll(platform model.Platform, records []model.RawRecord, terms []string) []model.CanonicalProfile {
	valid := make([]model.RawRecord, 0, len(records))
	for _, rec := range records {
		if IsValid(platform, rec) {
			valid = append(valid, rec)
		}
	}

	ranked := Rank(platform, valid, terms)
	out := make([]model.CanonicalProfile, 0, len(ranked))
	for _, cand := range ranked {
		profile, err := Standardize(platform, cand.Record, cand.Score, true)
		if err != nil {
			continue
		}
		out = append(out, *profile)
	}
	return out
}
