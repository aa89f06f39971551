package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Fixture identifiers, stable so docs and scripts can reference them.
const (
	SeedUserAlice    = "demo-alice"
	SeedUserBob      = "demo-bob"
	SeedRoadmapAlice = "7d1c3f0e-6a0b-4f57-9a55-2b8f1f0e9a01"
)

// SeedFixtures populates the database with development fixtures.
// Re-running it is a no-op.
func SeedFixtures(database *sql.DB, driver string) error {
	now := time.Now().UTC()
	bind := sqlx.BindType(driver)
	exec := func(query string, args ...any) error {
		_, err := database.Exec(sqlx.Rebind(bind, query), args...)
		return err
	}

	profiles := []struct {
		userID   string
		xp       int
		level    int
		streak   int
		language string
		balance  int
	}{
		{SeedUserAlice, 120, 2, 3, "en", 30},
		{SeedUserBob, 0, 1, 0, "es", 0},
	}
	for _, p := range profiles {
		if err := exec(
			"INSERT INTO profiles (user_id, xp, level, current_streak, language, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (user_id) DO NOTHING",
			p.userID, p.xp, p.level, p.streak, p.language, now, now,
		); err != nil {
			return fmt.Errorf("seed profiles: %w", err)
		}
		if err := exec(
			"INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, ?, ?) ON CONFLICT (user_id) DO NOTHING",
			p.userID, p.balance, now,
		); err != nil {
			return fmt.Errorf("seed wallets: %w", err)
		}
	}

	if err := exec(
		"INSERT INTO roadmaps (id, user_id, domain, is_active, created_at) VALUES (?, ?, 'HEALTH', ?, ?) ON CONFLICT (id) DO NOTHING",
		SeedRoadmapAlice, SeedUserAlice, true, now,
	); err != nil {
		return fmt.Errorf("seed roadmaps: %w", err)
	}

	nodes := []struct {
		id, title, desc, status string
		position                int
	}{
		{"7d1c3f0e-6a0b-4f57-9a55-2b8f1f0e9a11", "Drink water first thing", "A full glass before coffee, every morning.", "COMPLETED", 1},
		{"7d1c3f0e-6a0b-4f57-9a55-2b8f1f0e9a12", "Ten-minute walk", "Walk outside after lunch.", "COMPLETED", 2},
		{"7d1c3f0e-6a0b-4f57-9a55-2b8f1f0e9a13", "Stretch before bed", "Five minutes of gentle stretching.", "AVAILABLE", 3},
		{"7d1c3f0e-6a0b-4f57-9a55-2b8f1f0e9a14", "Cook one meal at home", "Plan and cook a balanced dinner.", "LOCKED", 4},
		{"7d1c3f0e-6a0b-4f57-9a55-2b8f1f0e9a15", "Lights out by 11pm", "Keep a consistent bedtime for a week.", "LOCKED", 5},
	}
	for _, n := range nodes {
		if err := exec(
			"INSERT INTO roadmap_nodes (id, roadmap_id, title, description, status, position, xp_reward, coin_reward) VALUES (?, ?, ?, ?, ?, ?, 50, 10) ON CONFLICT (id) DO NOTHING",
			n.id, SeedRoadmapAlice, n.title, n.desc, n.status, n.position,
		); err != nil {
			return fmt.Errorf("seed roadmap nodes: %w", err)
		}
	}

	return nil
}
