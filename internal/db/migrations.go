package db

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Migration represents a database migration with one statement batch per driver.
type Migration struct {
	Version  int
	Name     string
	SQLite   string
	Postgres string
}

func (m Migration) statements(driver string) string {
	if driver == DriverPostgres {
		return m.Postgres
	}
	return m.SQLite
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_profiles_roadmaps_and_nodes",
		SQLite: `
			CREATE TABLE profiles (
				user_id TEXT PRIMARY KEY,
				xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
				level INTEGER NOT NULL DEFAULT 1,
				current_streak INTEGER NOT NULL DEFAULT 0,
				language TEXT NOT NULL DEFAULT 'en',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE TABLE roadmaps (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				domain TEXT NOT NULL CHECK (domain IN ('HEALTH', 'FINANCE', 'LEARNING', 'RELATIONSHIPS', 'MENTAL')),
				is_active BOOLEAN NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_roadmaps_user ON roadmaps(user_id, is_active);
			CREATE TABLE roadmap_nodes (
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
			);`,
		Postgres: `
			CREATE TABLE profiles (
				user_id TEXT PRIMARY KEY,
				xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
				level INTEGER NOT NULL DEFAULT 1,
				current_streak INTEGER NOT NULL DEFAULT 0,
				language TEXT NOT NULL DEFAULT 'en',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE TABLE roadmaps (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				domain TEXT NOT NULL CHECK (domain IN ('HEALTH', 'FINANCE', 'LEARNING', 'RELATIONSHIPS', 'MENTAL')),
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX idx_roadmaps_user ON roadmaps(user_id, is_active);
			CREATE TABLE roadmap_nodes (
				id TEXT PRIMARY KEY,
				roadmap_id TEXT NOT NULL REFERENCES roadmaps(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'LOCKED' CHECK (status IN ('LOCKED', 'AVAILABLE', 'IN_PROGRESS', 'COMPLETED')),
				position INTEGER NOT NULL CHECK (position > 0),
				xp_reward INTEGER NOT NULL DEFAULT 50 CHECK (xp_reward >= 0),
				coin_reward INTEGER NOT NULL DEFAULT 10 CHECK (coin_reward >= 0),
				UNIQUE (roadmap_id, position)
			);`,
	},
	{
		Version: 2,
		Name:    "add_wallets_and_transactions",
		SQLite: `
			CREATE TABLE wallets (
				user_id TEXT PRIMARY KEY,
				balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE TABLE wallet_transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				amount INTEGER NOT NULL CHECK (amount > 0),
				transaction_type TEXT NOT NULL CHECK (transaction_type IN ('EARN', 'SPEND')),
				description TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_wallet_transactions_user ON wallet_transactions(user_id, created_at);`,
		Postgres: `
			CREATE TABLE wallets (
				user_id TEXT PRIMARY KEY,
				balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE TABLE wallet_transactions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				amount INTEGER NOT NULL CHECK (amount > 0),
				transaction_type TEXT NOT NULL CHECK (transaction_type IN ('EARN', 'SPEND')),
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX idx_wallet_transactions_user ON wallet_transactions(user_id, created_at);`,
	},
	{
		Version: 3,
		Name:    "enforce_one_active_roadmap_per_domain",
		SQLite: `
			ALTER TABLE roadmaps ADD COLUMN completed_at DATETIME;
			CREATE UNIQUE INDEX idx_roadmaps_one_active ON roadmaps(user_id, domain) WHERE is_active;`,
		Postgres: `
			ALTER TABLE roadmaps ADD COLUMN completed_at TIMESTAMPTZ;
			CREATE UNIQUE INDEX idx_roadmaps_one_active ON roadmaps(user_id, domain) WHERE is_active;`,
	},
	{
		Version: 4,
		Name:    "add_audit_log",
		SQLite: `
			CREATE TABLE audit_log (
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
			CREATE INDEX idx_audit_log_user ON audit_log(user_id, created_at);`,
		Postgres: `
			CREATE TABLE audit_log (
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
			CREATE INDEX idx_audit_log_user ON audit_log(user_id, created_at);`,
	},
}

// LatestVersion returns the schema version a fully migrated database is at.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(database *sql.DB) (int, error) {
	var version int
	if err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(database *sql.DB, driver string, logger logrus.FieldLogger) error {
	if _, err := database.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := CurrentVersion(database)
	if err != nil {
		return err
	}

	insert := sqlx.Rebind(sqlx.BindType(driver), "INSERT INTO schema_version (version) VALUES (?)")
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log := logger.WithFields(logrus.Fields{"version": migration.Version, "name": migration.Name})
		log.Info("running migration")

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec(migration.statements(driver)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if _, err := tx.Exec(insert, migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		log.Info("migration completed")
	}

	return nil
}
