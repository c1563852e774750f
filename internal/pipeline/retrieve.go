package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/glowreach/outreach-cli/internal/audience"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
)

// retrieveCandidate is Stage 2: it loads the client's stored audience
// records and selects the single top-ranked canonical profile. When no valid
// candidate exists it returns an explicit NoCandidate result instead of an
// error, so Stage 3 can acknowledge the absence rather than fabricate data.
func retrieveCandidate(ctx context.Context, st store.Store, req *model.Requirements) (*model.CanonicalProfile, *model.NoCandidate, error) {
	records, err := st.ListAudience(ctx, store.AudienceFilter{
		ClientID: req.ClientID,
		Platform: req.Platform,
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "pipeline: load audience for client %s", req.ClientID)
	}

	payloads := make([]model.RawRecord, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, rec.Payload)
	}

	profile, err := audience.SelectTop(req.Platform, payloads, req.SearchTerms)
	if err != nil {
		if eris.Is(err, model.ErrNoValidCandidate) {
			return nil, &model.NoCandidate{
				Platform: req.Platform,
				Reason:   fmt.Sprintf("No %s data found", req.Platform),
			}, nil
		}
		return nil, nil, err
	}
	return profile, nil, nil
}
