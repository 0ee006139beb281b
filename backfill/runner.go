package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/plateful/placepipe/browse"
	"github.com/plateful/placepipe/naver"
	"github.com/plateful/placepipe/place"
)

// Outcome classifies one record's processing result.
type Outcome int

const (
	// OutcomeSuccess: data found and persisted (or would be, in dry-run).
	OutcomeSuccess Outcome = iota
	// OutcomeSkipped: no data found; not an error.
	OutcomeSkipped
	// OutcomeFailed: session, extraction or persistence error.
	OutcomeFailed
)

// Counts aggregates per-record outcomes for a run.
type Counts struct {
	Success int
	Skipped int
	Failed  int
}

func (c Counts) String() string {
	return fmt.Sprintf("success=%d skipped=%d failed=%d", c.Success, c.Skipped, c.Failed)
}

// VenueStore is the persistence surface the driver consumes. *store.Store
// satisfies it. All writes for one record are expected to be all-or-nothing
// from the driver's perspective.
type VenueStore interface {
	VenuesMissingImages(ctx context.Context) ([]*place.Venue, error)
	VenuesMissingMenu(ctx context.Context) ([]*place.Venue, error)
	VenuesMissingExternalID(ctx context.Context) ([]*place.Venue, error)
	VenuesWithExternalID(ctx context.Context) ([]*place.Venue, error)
	AllVenues(ctx context.Context) ([]*place.Venue, error)
	UpdateVenueImages(ctx context.Context, id string, images []string) error
	UpdateVenueExternalID(ctx context.Context, id, externalID string, force bool) error
	UpdateVenueLocation(ctx context.Context, id string, lat, lng float64, category string) error
	ReplaceMenu(ctx context.Context, venueID string, items []place.MenuItem) error
}

// session is the slice of browse.Session the tasks need.
type session interface {
	Settle(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
	Close()
}

// openFunc opens a scraping session for one record. Swapped out in tests.
type openFunc func(ctx context.Context, pageURL string, col *browse.Collector) (session, error)

// Runner executes backfill runs. One Runner per process; runs are strictly
// sequential across records — the platform is unauthenticated and scraped,
// so concurrent sessions would multiply rate-limit risk for no gain.
type Runner struct {
	store    VenueStore
	client   naver.PlatformClient
	resolver *naver.Resolver
	cfg      Config
	logger   *slog.Logger
	open     openFunc
}

// NewRunner wires a Runner over the live browser manager and platform
// client.
func NewRunner(st VenueStore, mgr *browse.Manager, client naver.PlatformClient, cfg Config, logger *slog.Logger) *Runner {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	sessCfg := browse.SessionConfig{NavTimeout: cfg.NavTimeout, SettleDelay: cfg.SettleDelay}
	open := func(ctx context.Context, pageURL string, col *browse.Collector) (session, error) {
		return browse.OpenSession(ctx, mgr, pageURL, col, sessCfg)
	}
	return newRunner(st, client, cfg, logger, open)
}

func newRunner(st VenueStore, client naver.PlatformClient, cfg Config, logger *slog.Logger, open openFunc) *Runner {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:    st,
		client:   client,
		resolver: naver.NewResolver(client, logger),
		cfg:      cfg,
		logger:   logger,
		open:     open,
	}
}

// RunImages backfills venue photo galleries.
func (r *Runner) RunImages(ctx context.Context) (Counts, error) {
	venues, err := r.selectEnriched(ctx, r.store.VenuesMissingImages)
	if err != nil {
		return Counts{}, fmt.Errorf("backfill: load image candidates: %w", err)
	}
	return r.run(ctx, "images", venues, r.processImages), nil
}

// RunMenus backfills venue menu rows.
func (r *Runner) RunMenus(ctx context.Context) (Counts, error) {
	venues, err := r.selectEnriched(ctx, r.store.VenuesMissingMenu)
	if err != nil {
		return Counts{}, fmt.Errorf("backfill: load menu candidates: %w", err)
	}
	return r.run(ctx, "menus", venues, r.processMenu), nil
}

// RunIdentifiers resolves venues onto the external platform.
func (r *Runner) RunIdentifiers(ctx context.Context) (Counts, error) {
	load := r.store.VenuesMissingExternalID
	if r.cfg.Mode == ModeForceAll {
		load = r.store.AllVenues
	}
	venues, err := load(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("backfill: load identifier candidates: %w", err)
	}
	return r.run(ctx, "identifiers", venues, r.processIdentifier), nil
}

// selectEnriched picks the record set for tasks that require a resolved
// external ID: incremental = missing data only, force-all = every resolved
// venue.
func (r *Runner) selectEnriched(ctx context.Context, incremental func(context.Context) ([]*place.Venue, error)) ([]*place.Venue, error) {
	if r.cfg.Mode == ModeForceAll {
		return r.store.VenuesWithExternalID(ctx)
	}
	return incremental(ctx)
}

// run is the shared sequential loop: process, classify, log, jittered
// sleep between records. A single record's failure never aborts the run.
func (r *Runner) run(ctx context.Context, task string, venues []*place.Venue, proc func(context.Context, *place.Venue) (Outcome, error)) Counts {
	r.logger.Info("backfill: run starting",
		"task", task, "records", len(venues),
		"mode", r.cfg.Mode.String(), "dry_run", r.cfg.DryRun)

	var counts Counts
	for i, v := range venues {
		outcome, err := proc(ctx, v)
		switch outcome {
		case OutcomeSuccess:
			counts.Success++
			r.logger.Info("backfill: record done", "task", task, "venue_id", v.ID, "name", v.Name)
		case OutcomeSkipped:
			counts.Skipped++
			r.logger.Info("backfill: record skipped (no data)", "task", task, "venue_id", v.ID, "name", v.Name)
		case OutcomeFailed:
			counts.Failed++
			r.logger.Warn("backfill: record failed", "task", task, "venue_id", v.ID, "name", v.Name, "error", err)
		}

		if i < len(venues)-1 {
			r.pause(ctx)
		}
	}

	r.logger.Info("backfill: run complete", "task", task,
		"success", counts.Success, "skipped", counts.Skipped, "failed", counts.Failed)
	return counts
}

// pause sleeps a randomized interval between records to stay under the
// platform's informal rate tolerance.
func (r *Runner) pause(ctx context.Context) {
	delta := r.cfg.DelayMax - r.cfg.DelayMin
	d := r.cfg.DelayMin + time.Duration(rand.Int63n(int64(delta)+1))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
