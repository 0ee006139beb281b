package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plateful/placepipe/browse"
	"github.com/plateful/placepipe/match"
	"github.com/plateful/placepipe/naver"
	"github.com/plateful/placepipe/place"
)

// processImages fills a venue's photo list: intercepted API traffic first,
// DOM heuristics when the collector comes up empty.
func (r *Runner) processImages(ctx context.Context, v *place.Venue) (Outcome, error) {
	if v.ExternalID == "" {
		return OutcomeSkipped, nil
	}

	col := browse.NewCollector()
	sess, err := r.open(ctx, naver.PhotoPageURL(v.ExternalID), col)
	if err != nil {
		return OutcomeFailed, err
	}
	defer sess.Close()

	if err := sess.Settle(ctx); err != nil {
		return OutcomeFailed, err
	}

	images := col.Images()
	if len(images) == 0 {
		html, err := sess.HTML(ctx)
		if err != nil {
			return OutcomeFailed, err
		}
		images = browse.ImagesFromHTML(html)
	}

	images = place.DedupeImages(images)
	if len(images) == 0 {
		return OutcomeSkipped, nil
	}

	if r.cfg.DryRun {
		r.logger.Info("backfill: dry-run, would store images", "venue_id", v.ID, "count", len(images))
		return OutcomeSuccess, nil
	}

	if err := r.store.UpdateVenueImages(ctx, v.ID, images); err != nil {
		return OutcomeFailed, fmt.Errorf("persist images: %w", err)
	}
	return OutcomeSuccess, nil
}

// processMenu replaces a venue's menu rows wholesale. "No menu found" is a
// skip, not a failure — plenty of venues simply publish none.
func (r *Runner) processMenu(ctx context.Context, v *place.Venue) (Outcome, error) {
	if v.ExternalID == "" {
		return OutcomeSkipped, nil
	}

	col := browse.NewCollector()
	sess, err := r.open(ctx, naver.MenuPageURL(v.ExternalID), col)
	if err != nil {
		return OutcomeFailed, err
	}
	defer sess.Close()

	if err := sess.Settle(ctx); err != nil {
		return OutcomeFailed, err
	}

	items := col.Menu()
	if len(items) == 0 {
		html, err := sess.HTML(ctx)
		if err != nil {
			return OutcomeFailed, err
		}
		items = browse.MenuFromHTML(html)
	}

	items = place.NormalizeMenu(items)
	if len(items) == 0 {
		return OutcomeSkipped, nil
	}
	for i := range items {
		items[i].VenueID = v.ID
	}

	if r.cfg.DryRun {
		r.logger.Info("backfill: dry-run, would store menu", "venue_id", v.ID, "items", len(items))
		return OutcomeSuccess, nil
	}

	if err := r.store.ReplaceMenu(ctx, v.ID, items); err != nil {
		return OutcomeFailed, fmt.Errorf("persist menu: %w", err)
	}
	return OutcomeSuccess, nil
}

// processIdentifier finds the venue's canonical platform identifier:
// intercept the rendered search page's API traffic, fall back to the search
// endpoint, score candidates, then resolve the winner's detail record for
// opportunistic coordinate/category enrichment. No candidate is a failure
// for this task — an unresolved venue blocks every other enrichment.
func (r *Runner) processIdentifier(ctx context.Context, v *place.Venue) (Outcome, error) {
	col := browse.NewCollector()
	sess, err := r.open(ctx, naver.SearchPageURL(v.Name), col)
	if err != nil {
		return OutcomeFailed, err
	}
	defer sess.Close()

	if err := sess.Settle(ctx); err != nil {
		return OutcomeFailed, err
	}

	candidates := col.Candidates()
	if len(candidates) == 0 {
		results, err := r.client.Search(ctx, v.Name)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("search fallback: %w", err)
		}
		for _, res := range results {
			candidates = append(candidates, res.Candidate())
		}
	}

	best, err := match.Match(candidates, v.Name, v.Address)
	if err != nil {
		// Includes match.ErrNoCandidates: for this task an unmatched venue
		// is a failure, not a skip.
		return OutcomeFailed, err
	}

	if r.logger.Enabled(ctx, slog.LevelDebug) {
		for _, sc := range match.Rank(candidates, v.Name, v.Address) {
			r.logger.Debug("backfill: candidate scored",
				"venue_id", v.ID, "candidate_id", sc.Candidate.ExternalID,
				"candidate_name", sc.Candidate.Name, "score", sc.Score)
		}
	}

	// Detail resolution may fall back to local synthesis; either way the
	// identifier itself came from the match and is persisted below.
	detail, err := r.resolver.Resolve(ctx, best.ExternalID, v.Name, v)
	if err != nil {
		r.logger.Debug("backfill: detail resolution failed", "venue_id", v.ID, "error", err)
	}

	if r.cfg.DryRun {
		r.logger.Info("backfill: dry-run, would store identifier",
			"venue_id", v.ID, "external_id", best.ExternalID, "matched_name", best.Name)
		return OutcomeSuccess, nil
	}

	force := r.cfg.Mode == ModeForceAll
	if err := r.store.UpdateVenueExternalID(ctx, v.ID, best.ExternalID, force); err != nil {
		return OutcomeFailed, fmt.Errorf("persist identifier: %w", err)
	}
	if detail != nil {
		if err := r.store.UpdateVenueLocation(ctx, v.ID, detail.Lat, detail.Lng, detail.Category); err != nil {
			return OutcomeFailed, fmt.Errorf("persist location: %w", err)
		}
	}
	return OutcomeSuccess, nil
}
