// Package place defines the domain model shared by the enrichment pipeline:
// venues as stored locally, candidates and detail records as returned by the
// external mapping platform, and menu items in canonical form.
package place

// Venue is a locally stored restaurant record. Rows are owned by the host
// application's CRUD flows; the pipeline only fills in derived fields
// (external ID, images, coordinates) and the menu rows hanging off it.
type Venue struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	ExternalID string   `json:"external_id"`
	Images     []string `json:"images"`
	Category   string   `json:"category"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	CreatedAt  int64    `json:"created_at"`
	UpdatedAt  int64    `json:"updated_at"`
}

// Candidate is one external search result considered during matching.
// Ephemeral: it exists only for the duration of a single matcher call.
type Candidate struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
}

// MenuItem is one menu row in canonical form. Name is the natural key
// within a venue; Priority is a stable zero-based display order.
type MenuItem struct {
	ID          string   `json:"id"`
	VenueID     string   `json:"venue_id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Recommended bool     `json:"recommended"`
	Priority    int      `json:"priority"`
}

// Detail is the resolved full picture of a venue on the external platform.
// Every resolver tier produces a complete Detail or nothing; tiers are
// never merged field by field.
type Detail struct {
	ExternalID  string     `json:"external_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Address     string     `json:"address"`
	RoadAddress string     `json:"road_address"`
	Phone       string     `json:"phone"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Images      []string   `json:"images"`
	Menu        []MenuItem `json:"menu"`
}
