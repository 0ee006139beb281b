// Package store is the data access layer for the pipeline's local venue
// and menu tables. It receives an already-opened *sql.DB (see dbopen) and
// never owns the connection.
package store

import "database/sql"

// Schema creates the venue and menu tables. Idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS venues (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL DEFAULT '',
	external_id  TEXT NOT NULL DEFAULT '',
	images_json  TEXT NOT NULL DEFAULT '[]',
	category     TEXT NOT NULL DEFAULT '',
	lat          REAL NOT NULL DEFAULT 0,
	lng          REAL NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS menu_items (
	id           TEXT PRIMARY KEY,
	venue_id     TEXT NOT NULL REFERENCES venues(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	price        TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	images_json  TEXT NOT NULL DEFAULT '[]',
	recommended  INTEGER NOT NULL DEFAULT 0,
	priority     INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_menu_items_venue ON menu_items(venue_id, priority);
CREATE INDEX IF NOT EXISTS idx_venues_external ON venues(external_id);
`

// ApplySchema executes the schema against db.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
