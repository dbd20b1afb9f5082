package sqlite

import (
	"database/sql"
	"fmt"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations
// Each migration should be idempotent and safe to run multiple times
var migrations = []migration{
	{
		version: 1,
		name:    "create_properties_table",
		up: `
			CREATE TABLE IF NOT EXISTS properties (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				advertise_no TEXT,
				title TEXT NOT NULL,
				price REAL NOT NULL,
				currency TEXT NOT NULL DEFAULT 'TRY',
				address TEXT NOT NULL DEFAULT '',
				property_type TEXT NOT NULL DEFAULT '',
				room_type TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'on',
				published_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_properties_status
			ON properties(status, published_at DESC);
		`,
	},
	{
		version: 2,
		name:    "create_cars_table",
		up: `
			CREATE TABLE IF NOT EXISTS cars (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				brand TEXT NOT NULL DEFAULT '',
				series TEXT NOT NULL DEFAULT '',
				model_year INTEGER,
				price REAL NOT NULL,
				currency TEXT NOT NULL DEFAULT 'TRY',
				fuel_type TEXT NOT NULL DEFAULT '',
				gear_type TEXT NOT NULL DEFAULT '',
				is_active INTEGER NOT NULL DEFAULT 1,
				published_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_cars_active
			ON cars(is_active, published_at DESC);
		`,
	},
	{
		version: 3,
		name:    "create_offers_tables",
		up: `
			CREATE TABLE IF NOT EXISTS offers (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				full_name TEXT NOT NULL,
				phone TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				province TEXT NOT NULL DEFAULT '',
				district TEXT NOT NULL DEFAULT '',
				expected_price REAL,
				currency TEXT NOT NULL DEFAULT 'TRY',
				status TEXT NOT NULL DEFAULT 'pending',
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS offer_responses (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				offer_id TEXT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
				message TEXT NOT NULL,
				offered_price REAL,
				currency TEXT NOT NULL DEFAULT 'TRY',
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_offers_active
			ON offers(is_active, created_at DESC);

			CREATE INDEX IF NOT EXISTS idx_offer_responses_offer
			ON offer_responses(offer_id);
		`,
	},
	{
		version: 4,
		name:    "create_listing_images_table",
		up: `
			CREATE TABLE IF NOT EXISTS listing_images (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				listing_kind TEXT NOT NULL,
				listing_id TEXT NOT NULL,
				object_key TEXT NOT NULL,
				is_cover INTEGER NOT NULL DEFAULT 0,
				is_active INTEGER NOT NULL DEFAULT 1,
				uploaded_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_listing_images_owner
			ON listing_images(listing_kind, listing_id);

			CREATE INDEX IF NOT EXISTS idx_listing_images_cover
			ON listing_images(listing_kind, listing_id, is_cover);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, m := range migrations {
		if m.version <= currentVersion {
			continue // Already applied
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		_, err = tx.Exec(m.up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
