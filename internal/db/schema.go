package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user', 'viewer')),
    avatar        BLOB,
    avatar_mime   TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE TABLE IF NOT EXISTS companies (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    short_info TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id                 INTEGER PRIMARY KEY,
    name               TEXT NOT NULL,
    serial_number      TEXT,
    asset_type         TEXT,
    equipment_kind     TEXT CHECK (equipment_kind IN (
                           'desktop', 'nettop', 'laptop', 'monitor', 'mfu', 'printer',
                           'scanner', 'switch', 'server', 'sip_phone', 'monoblock')),
    model              TEXT,
    location           TEXT,
    status             TEXT NOT NULL DEFAULT 'active'
                           CHECK (status IN ('active', 'inactive', 'maintenance', 'retired')),
    description        TEXT,
    last_seen_at       DATETIME,
    cpu                TEXT,
    ram                TEXT,
    disk1_type         TEXT,
    disk1_capacity     TEXT,
    network_card       TEXT,
    motherboard        TEXT,
    screen_diagonal    TEXT,
    screen_resolution  TEXT,
    power_supply       TEXT,
    monitor_diagonal   TEXT,
    rack_units         INTEGER,
    extra_components   TEXT,
    company_id         INTEGER REFERENCES companies(id) ON DELETE SET NULL,
    os                 TEXT,
    network_interfaces TEXT,
    current_user       TEXT,
    manufacture_date   TEXT,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at         DATETIME
);

CREATE TABLE IF NOT EXISTS asset_events (
    id           INTEGER PRIMARY KEY,
    asset_id     INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    event_type   TEXT NOT NULL CHECK (event_type IN (
                     'created', 'updated', 'moved', 'assigned', 'returned',
                     'maintenance', 'retired', 'deleted', 'other')),
    description  TEXT NOT NULL DEFAULT '',
    changes_json TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by   INTEGER REFERENCES users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS inventory_campaigns (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    started_at  DATETIME NOT NULL,
    finished_at DATETIME,
    company_id  INTEGER REFERENCES companies(id) ON DELETE SET NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id                INTEGER PRIMARY KEY,
    campaign_id       INTEGER NOT NULL REFERENCES inventory_campaigns(id) ON DELETE CASCADE,
    asset_id          INTEGER REFERENCES assets(id) ON DELETE SET NULL,
    expected_location TEXT,
    found             INTEGER NOT NULL DEFAULT 0,
    found_at          DATETIME,
    notes             TEXT
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// indexes is a list of statements applied in order after table creation.
// Each statement must be idempotent. Append new entries at the end.
var indexes = []string{
	// Soft-deleted usernames and serial numbers can be reused.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
	     ON users(username) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_serial_active
	     ON assets(serial_number) WHERE deleted_at IS NULL AND serial_number IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_assets_company ON assets(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_asset_events_asset ON asset_events(asset_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_campaign ON inventory_items(campaign_id, asset_id)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index %d: %w", i+1, err)
		}
	}
	return nil
}
