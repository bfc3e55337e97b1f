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
    name          TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'faculty' CHECK (role IN (
                      'admin', 'faculty', 'auditor', 'hod', 'principal',
                      'acc', 'secretary', 'trust_manager')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    asset_type        TEXT NOT NULL CHECK (asset_type IN ('physical', 'digital', 'consumable')),
    category          TEXT NOT NULL DEFAULT '',
    registration_date TEXT NOT NULL,
    attributes        TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'active' CHECK (status IN (
                          'active', 'handed_over', 'under_audit', 'damaged', 'retired')),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at        DATETIME
);

CREATE TABLE IF NOT EXISTS scan_events (
    id          TEXT PRIMARY KEY,
    asset_id    TEXT NOT NULL REFERENCES assets(id),
    operator_id INTEGER NOT NULL REFERENCES users(id),
    scanned_at  DATETIME NOT NULL,
    latitude    REAL,
    longitude   REAL,
    action      TEXT CHECK (action IN ('view', 'handover', 'audit', 'status')),
    actioned_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_scan_events_asset ON scan_events(asset_id);

CREATE TABLE IF NOT EXISTS handover_requests (
    id               TEXT PRIMARY KEY,
    asset_id         TEXT NOT NULL REFERENCES assets(id),
    requested_by     INTEGER NOT NULL REFERENCES users(id),
    person_name      TEXT NOT NULL,
    department       TEXT NOT NULL,
    purpose          TEXT NOT NULL,
    condition_before TEXT NOT NULL,
    picture          BLOB,
    picture_mime     TEXT,
    request_date     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    source           TEXT NOT NULL DEFAULT 'direct' CHECK (source IN ('scan', 'direct')),
    scan_event_id    TEXT REFERENCES scan_events(id),
    stage            INTEGER NOT NULL DEFAULT 1 CHECK (stage >= 1),
    status           TEXT NOT NULL DEFAULT 'pending_review' CHECK (status IN (
                         'pending_review', 'approved', 'rejected')),
    decided_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_handover_requests_asset ON handover_requests(asset_id);
CREATE INDEX IF NOT EXISTS idx_handover_requests_stage
    ON handover_requests(stage) WHERE status = 'pending_review';

CREATE TABLE IF NOT EXISTS handover_reviews (
    id          INTEGER PRIMARY KEY,
    request_id  TEXT NOT NULL REFERENCES handover_requests(id),
    stage       INTEGER NOT NULL,
    decision    TEXT NOT NULL CHECK (decision IN ('approve', 'reject')),
    reviewed_by INTEGER NOT NULL REFERENCES users(id),
    remarks     TEXT,
    reviewed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS review_queue (
    id          INTEGER PRIMARY KEY,
    request_id  TEXT NOT NULL REFERENCES handover_requests(id),
    asset_id    TEXT NOT NULL REFERENCES assets(id),
    stage       INTEGER NOT NULL,
    enqueued_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS audit_records (
    id                  TEXT PRIMARY KEY,
    asset_id            TEXT NOT NULL REFERENCES assets(id),
    auditor_name        TEXT NOT NULL,
    audit_date          TEXT NOT NULL,
    audit_type          TEXT NOT NULL CHECK (audit_type IN (
                            'routine', 'maintenance', 'incident', 'handover')),
    physical_condition  TEXT NOT NULL,
    functional_status   TEXT NOT NULL,
    location            TEXT NOT NULL,
    discrepancies       TEXT,
    recommended_actions TEXT,
    scan_latitude       REAL,
    scan_longitude      REAL,
    scan_event_id       TEXT REFERENCES scan_events(id),
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_records_asset ON audit_records(asset_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
