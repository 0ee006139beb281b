package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/plateful/placepipe/idgen"
	"github.com/plateful/placepipe/place"
)

// Store wraps the host application's venue database for pipeline use.
type Store struct {
	DB    *sql.DB
	newID idgen.Generator
}

// New creates a Store over an already-opened database connection.
func New(db *sql.DB) *Store {
	return &Store{DB: db, newID: idgen.UUIDv7()}
}

const venueColumns = `id, name, address, external_id, images_json, category, lat, lng, created_at, updated_at`

// InsertVenue adds a venue row. Used by tests and import tooling; the host
// app owns venue creation in production.
func (s *Store) InsertVenue(ctx context.Context, v *place.Venue) error {
	now := time.Now().UnixMilli()
	if v.ID == "" {
		v.ID = s.newID()
	}
	if v.CreatedAt == 0 {
		v.CreatedAt = now
	}
	if v.UpdatedAt == 0 {
		v.UpdatedAt = now
	}

	images, err := json.Marshal(emptyIfNil(v.Images))
	if err != nil {
		return fmt.Errorf("store: marshal images: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO venues (`+venueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Address, v.ExternalID, string(images), v.Category,
		v.Lat, v.Lng, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetVenue retrieves a venue by ID. Returns (nil, nil) when absent.
func (s *Store) GetVenue(ctx context.Context, id string) (*place.Venue, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	return scanVenue(row)
}

// AllVenues returns every venue row in insertion order.
func (s *Store) AllVenues(ctx context.Context) ([]*place.Venue, error) {
	return s.queryVenues(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY created_at ASC`)
}

// VenuesMissingImages returns venues with an external ID but no stored
// images — the incremental candidate set for image backfill.
func (s *Store) VenuesMissingImages(ctx context.Context) ([]*place.Venue, error) {
	return s.queryVenues(ctx,
		`SELECT `+venueColumns+` FROM venues
		WHERE external_id != '' AND images_json IN ('[]', '')
		ORDER BY created_at ASC`)
}

// VenuesMissingMenu returns venues with an external ID and no menu rows.
func (s *Store) VenuesMissingMenu(ctx context.Context) ([]*place.Venue, error) {
	return s.queryVenues(ctx,
		`SELECT `+venueColumns+` FROM venues v
		WHERE v.external_id != ''
		  AND NOT EXISTS (SELECT 1 FROM menu_items m WHERE m.venue_id = v.id)
		ORDER BY v.created_at ASC`)
}

// VenuesMissingExternalID returns venues not yet resolved on the platform.
func (s *Store) VenuesMissingExternalID(ctx context.Context) ([]*place.Venue, error) {
	return s.queryVenues(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE external_id = '' ORDER BY created_at ASC`)
}

// VenuesWithExternalID returns every resolved venue, for force-all reruns
// of the image and menu tasks.
func (s *Store) VenuesWithExternalID(ctx context.Context) ([]*place.Venue, error) {
	return s.queryVenues(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE external_id != '' ORDER BY created_at ASC`)
}

// UpdateVenueImages overwrites the venue's image list.
func (s *Store) UpdateVenueImages(ctx context.Context, id string, images []string) error {
	data, err := json.Marshal(emptyIfNil(images))
	if err != nil {
		return fmt.Errorf("store: marshal images: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`UPDATE venues SET images_json = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().UnixMilli(), id)
	return err
}

// UpdateVenueExternalID sets the venue's external identifier. Once set, the
// identifier is stable: without force, a non-empty value is never
// overwritten and the call is a no-op.
func (s *Store) UpdateVenueExternalID(ctx context.Context, id, externalID string, force bool) error {
	q := `UPDATE venues SET external_id = ?, updated_at = ? WHERE id = ? AND external_id = ''`
	if force {
		q = `UPDATE venues SET external_id = ?, updated_at = ? WHERE id = ?`
	}
	_, err := s.DB.ExecContext(ctx, q, externalID, time.Now().UnixMilli(), id)
	return err
}

// UpdateVenueLocation fills in coordinates and category when the matched
// search result carried them. Zero coordinates are left untouched.
func (s *Store) UpdateVenueLocation(ctx context.Context, id string, lat, lng float64, category string) error {
	if lat == 0 && lng == 0 && category == "" {
		return nil
	}
	_, err := s.DB.ExecContext(ctx,
		`UPDATE venues SET
			lat = CASE WHEN ? != 0 THEN ? ELSE lat END,
			lng = CASE WHEN ? != 0 THEN ? ELSE lng END,
			category = CASE WHEN ? != '' THEN ? ELSE category END,
			updated_at = ?
		WHERE id = ?`,
		lat, lat, lng, lng, category, category, time.Now().UnixMilli(), id)
	return err
}

// ReplaceMenu swaps a venue's menu rows for items, atomically: full delete
// then reinsert inside one transaction, never a partial update.
func (s *Store) ReplaceMenu(ctx context.Context, venueID string, items []place.MenuItem) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE venue_id = ?`, venueID); err != nil {
		return fmt.Errorf("store: delete menu: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, it := range items {
		id := it.ID
		if id == "" {
			id = s.newID()
		}
		images, err := json.Marshal(emptyIfNil(it.Images))
		if err != nil {
			return fmt.Errorf("store: marshal menu images: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO menu_items (id, venue_id, name, price, description, images_json, recommended, priority, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, venueID, it.Name, it.Price, it.Description, string(images),
			boolToInt(it.Recommended), it.Priority, now,
		); err != nil {
			return fmt.Errorf("store: insert menu item %q: %w", it.Name, err)
		}
	}

	return tx.Commit()
}

// MenuForVenue returns a venue's menu rows in display order.
func (s *Store) MenuForVenue(ctx context.Context, venueID string) ([]place.MenuItem, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, venue_id, name, price, description, images_json, recommended, priority
		FROM menu_items WHERE venue_id = ? ORDER BY priority ASC`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []place.MenuItem
	for rows.Next() {
		var it place.MenuItem
		var imagesJSON string
		var recommended int
		if err := rows.Scan(&it.ID, &it.VenueID, &it.Name, &it.Price, &it.Description,
			&imagesJSON, &recommended, &it.Priority); err != nil {
			return nil, fmt.Errorf("store: scan menu item: %w", err)
		}
		it.Recommended = recommended != 0
		if err := json.Unmarshal([]byte(imagesJSON), &it.Images); err != nil {
			it.Images = nil
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) queryVenues(ctx context.Context, query string, args ...any) ([]*place.Venue, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []*place.Venue
	for rows.Next() {
		v, err := scanVenueRows(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func scanVenue(row *sql.Row) (*place.Venue, error) {
	var v place.Venue
	var imagesJSON string
	err := row.Scan(&v.ID, &v.Name, &v.Address, &v.ExternalID, &imagesJSON,
		&v.Category, &v.Lat, &v.Lng, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: scan venue: %w", err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &v.Images); err != nil {
		v.Images = nil
	}
	return &v, nil
}

func scanVenueRows(rows *sql.Rows) (*place.Venue, error) {
	var v place.Venue
	var imagesJSON string
	err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.ExternalID, &imagesJSON,
		&v.Category, &v.Lat, &v.Lng, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: scan venue: %w", err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &v.Images); err != nil {
		v.Images = nil
	}
	return &v, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
