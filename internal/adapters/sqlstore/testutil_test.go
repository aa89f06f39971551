// Package sqlstore_test contains integration tests for the SQL repositories.
//
// All setup uses db.GetSchemaSQL() so tests run against the authoritative
// schema. Do not hardcode CREATE TABLE statements here.
package sqlstore_test

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/questline/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return sqlx.NewDb(testDB, "sqlite3")
}

// seedRoadmap inserts a roadmap with one node per status and returns the node IDs.
func seedRoadmap(t *testing.T, database *sqlx.DB, roadmapID, userID, domain string, active bool, statuses ...string) []string {
	t.Helper()
	_, err := database.Exec(
		"INSERT INTO roadmaps (id, user_id, domain, is_active, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)",
		roadmapID, userID, domain, active,
	)
	if err != nil {
		t.Fatalf("failed to seed roadmap: %v", err)
	}

	ids := make([]string, len(statuses))
	for i, status := range statuses {
		ids[i] = roadmapID + "-n" + string(rune('1'+i))
		_, err := database.Exec(
			"INSERT INTO roadmap_nodes (id, roadmap_id, title, description, status, position, xp_reward, coin_reward) VALUES (?, ?, ?, '', ?, ?, 50, 10)",
			ids[i], roadmapID, "Step", status, i+1,
		)
		if err != nil {
			t.Fatalf("failed to seed node: %v", err)
		}
	}
	return ids
}
