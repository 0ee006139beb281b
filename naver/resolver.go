package naver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plateful/placepipe/place"
)

// PlatformClient is the query surface the resolver needs. *Client satisfies
// it; tests substitute fakes.
type PlatformClient interface {
	Detail(ctx context.Context, externalID string) (*place.Detail, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Resolver answers "what is the full detail record for this place?" through
// three ordered fallback tiers, short-circuiting on the first success:
//
//	Tier 1: the detail-by-identifier endpoint.
//	Tier 2: search by name hint, then scan for the exact identifier. This
//	        recovers a record when the ID endpoint is down but the ID is
//	        already known to be correct — it is not a fuzzy match.
//	Tier 3: synthesis from the locally cached venue row. Cannot fail, but
//	        is only reachable when the caller has a local row to offer.
//
// Each tier yields a complete, independent record; tiers are never merged.
type Resolver struct {
	client PlatformClient
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(client PlatformClient, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve runs the tier sequence. nameHint enables Tier 2 when non-empty;
// local enables Tier 3 when non-nil. Exhausting all available tiers
// returns ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, externalID, nameHint string, local *place.Venue) (*place.Detail, error) {
	detail, err := r.client.Detail(ctx, externalID)
	if err == nil && detail != nil {
		return detail, nil
	}
	r.logger.Debug("resolver: detail endpoint miss", "external_id", externalID, "error", err)

	if nameHint != "" {
		if detail := r.resolveViaSearch(ctx, externalID, nameHint); detail != nil {
			return detail, nil
		}
	}

	if local != nil {
		return synthesize(local), nil
	}

	return nil, fmt.Errorf("resolver: %s: %w", externalID, ErrNotFound)
}

// resolveViaSearch scans search results for an exact identifier match.
func (r *Resolver) resolveViaSearch(ctx context.Context, externalID, nameHint string) *place.Detail {
	results, err := r.client.Search(ctx, nameHint)
	if err != nil {
		r.logger.Debug("resolver: search tier failed", "external_id", externalID, "error", err)
		return nil
	}
	for _, res := range results {
		if res.ID == externalID {
			return res.Detail()
		}
	}
	return nil
}

// synthesize builds a sparse detail record from whatever the local venue
// row already has cached. The menu list is always empty at this tier.
func synthesize(v *place.Venue) *place.Detail {
	return &place.Detail{
		ExternalID: v.ExternalID,
		Name:       v.Name,
		Category:   v.Category,
		Address:    v.Address,
		Lat:        v.Lat,
		Lng:        v.Lng,
		Images:     place.DedupeImages(v.Images),
		Menu:       []place.MenuItem{},
	}
}
