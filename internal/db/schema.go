package db

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// SchemaSQL is the complete SQLite schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the SQLite schema. Tests use it via
// GetSchemaSQL() so repository code referencing a missing column fails
// immediately with "no such column".
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY,
	xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
	level INTEGER NOT NULL DEFAULT 1,
	current_streak INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT 'en',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS roadmaps (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	domain TEXT NOT NULL CHECK (domain IN ('HEALTH', 'FINANCE', 'LEARNING', 'RELATIONSHIPS', 'MENTAL')),
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_roadmaps_user ON roadmaps(user_id, is_active);
CREATE UNIQUE INDEX IF NOT EXISTS idx_roadmaps_one_active ON roadmaps(user_id, domain) WHERE is_active;

CREATE TABLE IF NOT EXISTS roadmap_nodes (
	id TEXT PRIMARY KEY,
	roadmap_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'LOCKED' CHECK (status IN ('LOCKED', 'AVAILABLE', 'IN_PROGRESS', 'COMPLETED')),
	position INTEGER NOT NULL CHECK (position > 0),
	xp_reward INTEGER NOT NULL DEFAULT 50 CHECK (xp_reward >= 0),
	coin_reward INTEGER NOT NULL DEFAULT 10 CHECK (coin_reward >= 0),
	FOREIGN KEY (roadmap_id) REFERENCES roadmaps(id) ON DELETE CASCADE,
	UNIQUE (roadmap_id, position)
);

CREATE TABLE IF NOT EXISTS wallets (
	user_id TEXT PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount INTEGER NOT NULL CHECK (amount > 0),
	transaction_type TEXT NOT NULL CHECK (transaction_type IN ('EARN', 'SPEND')),
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user ON wallet_transactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT NOT NULL DEFAULT '',
	old_value TEXT NOT NULL DEFAULT '',
	new_value TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_log_user ON audit_log(user_id, created_at);
`

// PostgresSchemaSQL is the Postgres rendition of SchemaSQL.
const PostgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY,
	xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
	level INTEGER NOT NULL DEFAULT 1,
	current_streak INTEGER NOT NULL DEFAULT 0,
	language TEXT NOT NULL DEFAULT 'en',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS roadmaps (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	domain TEXT NOT NULL CHECK (domain IN ('HEALTH', 'FINANCE', 'LEARNING', 'RELATIONSHIPS', 'MENTAL')),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_roadmaps_user ON roadmaps(user_id, is_active);
CREATE UNIQUE INDEX IF NOT EXISTS idx_roadmaps_one_active ON roadmaps(user_id, domain) WHERE is_active;

CREATE TABLE IF NOT EXISTS roadmap_nodes (
	id TEXT PRIMARY KEY,
	roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'LOCKED' CHECK (status IN ('LOCKED', 'AVAILABLE', 'IN_PROGRESS', 'COMPLETED')),
	position INTEGER NOT NULL CHECK (position > 0),
	xp_reward INTEGER NOT NULL DEFAULT 50 CHECK (xp_reward >= 0),
	coin_reward INTEGER NOT NULL DEFAULT 10 CHECK (coin_reward >= 0),
	UNIQUE (roadmap_id, position)
);

CREATE TABLE IF NOT EXISTS wallets (
	user_id TEXT PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount INTEGER NOT NULL CHECK (amount > 0),
	transaction_type TEXT NOT NULL CHECK (transaction_type IN ('EARN', 'SPEND')),
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user ON wallet_transactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT NOT NULL DEFAULT '',
	old_value TEXT NOT NULL DEFAULT '',
	new_value TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_audit_log_user ON audit_log(user_id, created_at);
`

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(database *sql.DB, driver string, logger logrus.FieldLogger) error {
	exists, err := schemaVersionExists(database, driver)
	if err != nil {
		return err
	}
	if exists {
		return RunMigrations(database, driver, logger)
	}

	// Fresh install: create the current schema and mark every migration applied.
	if _, err := database.Exec(schemaFor(driver)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := database.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	insert := sqlx.Rebind(sqlx.BindType(driver), "INSERT INTO schema_version (version) VALUES (?)")
	for _, m := range migrations {
		if _, err := database.Exec(insert, m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	logger.WithField("version", LatestVersion()).Info("created database schema")
	return nil
}

func schemaVersionExists(database *sql.DB, driver string) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'"
	if driver == DriverPostgres {
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'schema_version'"
	}
	var count int
	if err := database.QueryRow(query).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return count > 0, nil
}

func schemaFor(driver string) string {
	if driver == DriverPostgres {
		return PostgresSchemaSQL
	}
	return SchemaSQL
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
