package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/questline/internal/adapters/sqlstore"
	"github.com/example/questline/internal/ports/secondary"
)

func TestRoadmapRepository_FindActive(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	seedRoadmap(t, database, "r-old", "u1", "HEALTH", false, "COMPLETED")
	seedRoadmap(t, database, "r-new", "u1", "HEALTH", true, "AVAILABLE")

	got, err := repo.FindActive(ctx, "u1", "HEALTH")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r-new", got.ID)
	assert.True(t, got.IsActive)

	none, err := repo.FindActive(ctx, "u1", "FINANCE")
	require.NoError(t, err)
	assert.Nil(t, none)

	other, err := repo.FindActive(ctx, "u2", "HEALTH")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestRoadmapRepository_GetForUser_Ownership(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	seedRoadmap(t, database, "r1", "u1", "MENTAL", true, "AVAILABLE")

	got, err := repo.GetForUser(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "MENTAL", got.Domain)
	assert.Nil(t, got.CompletedAt)

	_, err = repo.GetForUser(ctx, "r1", "intruder")
	assert.ErrorIs(t, err, secondary.ErrNotFound)

	_, err = repo.GetForUser(ctx, "missing", "u1")
	assert.ErrorIs(t, err, secondary.ErrNotFound)
}

func TestRoadmapRepository_List(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	seedRoadmap(t, database, "r1", "u1", "HEALTH", false, "COMPLETED")
	seedRoadmap(t, database, "r2", "u1", "HEALTH", true, "AVAILABLE")
	seedRoadmap(t, database, "r3", "u1", "FINANCE", true, "AVAILABLE")
	seedRoadmap(t, database, "r4", "u2", "FINANCE", true, "AVAILABLE")

	active, err := repo.List(ctx, secondary.RoadmapFilters{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := repo.List(ctx, secondary.RoadmapFilters{UserID: "u1", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	health, err := repo.List(ctx, secondary.RoadmapFilters{UserID: "u1", Domain: "HEALTH", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, health, 2)
}

func TestRoadmapRepository_GetNodeForUser(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	ids := seedRoadmap(t, database, "r1", "u1", "LEARNING", true, "AVAILABLE", "LOCKED")

	node, err := repo.GetNodeForUser(ctx, ids[1], "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", node.RoadmapID)
	assert.Equal(t, 2, node.Order)
	assert.Equal(t, "LOCKED", node.Status)
	assert.Equal(t, 50, node.XPReward)

	_, err = repo.GetNodeForUser(ctx, ids[1], "u2")
	assert.ErrorIs(t, err, secondary.ErrNotFound)

	nodes, err := repo.ListNodes(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, 1, nodes[0].Order)
	assert.Equal(t, 2, nodes[1].Order)
}

func TestRoadmapRepository_WithGenerationLock_CreatesRoadmap(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	err := repo.WithGenerationLock(ctx, "u1", "HEALTH", func(tx secondary.ProgressionTx) error {
		existing, err := tx.FindActive(ctx, "u1", "HEALTH")
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.New("unexpected active roadmap")
		}
		return tx.CreateRoadmap(ctx,
			&secondary.RoadmapRecord{ID: "r1", UserID: "u1", Domain: "HEALTH", IsActive: true, CreatedAt: created},
			[]*secondary.NodeRecord{
				{ID: "n1", Title: "One", Status: "AVAILABLE", Order: 1, XPReward: 50, CoinReward: 10},
				{ID: "n2", Title: "Two", Status: "LOCKED", Order: 2, XPReward: 75, CoinReward: 0},
			},
		)
	})
	require.NoError(t, err)

	got, err := repo.GetForUser(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created))

	nodes, err := repo.ListNodes(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, 75, nodes[1].XPReward)

	var profiles int
	require.NoError(t, database.Get(&profiles, "SELECT COUNT(*) FROM profiles WHERE user_id = 'u1'"))
	assert.Equal(t, 1, profiles, "generation lock provisions the profile row")
}

func TestRoadmapRepository_SecondActiveRoadmapRejected(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	seedRoadmap(t, database, "r1", "u1", "HEALTH", true, "AVAILABLE")

	err := repo.WithGenerationLock(ctx, "u1", "HEALTH", func(tx secondary.ProgressionTx) error {
		return tx.CreateRoadmap(ctx, &secondary.RoadmapRecord{ID: "r2", UserID: "u1", Domain: "HEALTH", IsActive: true}, nil)
	})
	assert.Error(t, err)

	all, err := repo.List(ctx, secondary.RoadmapFilters{UserID: "u1", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRoadmapRepository_WithRoadmapLock_RollsBackOnError(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	ids := seedRoadmap(t, database, "r1", "u1", "HEALTH", true, "IN_PROGRESS", "LOCKED")
	boom := errors.New("boom")

	err := repo.WithRoadmapLock(ctx, "r1", func(tx secondary.ProgressionTx) error {
		if err := tx.UpdateNodeStatus(ctx, ids[0], "IN_PROGRESS", "COMPLETED"); err != nil {
			return err
		}
		if err := tx.GrantXP(ctx, "u1", 50); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	node, err := repo.GetNodeForUser(ctx, ids[0], "u1")
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", node.Status)

	var xp int
	err = database.Get(&xp, "SELECT COALESCE(SUM(xp), 0) FROM profiles WHERE user_id = 'u1'")
	require.NoError(t, err)
	assert.Equal(t, 0, xp)
}

func TestRoadmapRepository_WithRoadmapLock_MissingRoadmap(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)

	called := false
	err := repo.WithRoadmapLock(context.Background(), "missing", func(tx secondary.ProgressionTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, secondary.ErrNotFound)
	assert.False(t, called)
}

func TestProgressionTx_UpdateNodeStatusCompareAndSet(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	ids := seedRoadmap(t, database, "r1", "u1", "HEALTH", true, "AVAILABLE")

	err := repo.WithRoadmapLock(ctx, "r1", func(tx secondary.ProgressionTx) error {
		return tx.UpdateNodeStatus(ctx, ids[0], "IN_PROGRESS", "COMPLETED")
	})
	assert.ErrorIs(t, err, secondary.ErrStatusConflict)

	err = repo.WithRoadmapLock(ctx, "r1", func(tx secondary.ProgressionTx) error {
		return tx.UpdateNodeStatus(ctx, ids[0], "AVAILABLE", "IN_PROGRESS")
	})
	require.NoError(t, err)
}

func TestProgressionTx_RewardsAndDeactivation(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewRoadmapRepository(database)
	ctx := context.Background()

	seedRoadmap(t, database, "r1", "u1", "FINANCE", true, "COMPLETED")
	done := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	err := repo.WithRoadmapLock(ctx, "r1", func(tx secondary.ProgressionTx) error {
		if err := tx.GrantXP(ctx, "u1", 50); err != nil {
			return err
		}
		if err := tx.GrantXP(ctx, "u1", 25); err != nil {
			return err
		}
		if err := tx.CreditWallet(ctx, "u1", 10, "node completed"); err != nil {
			return err
		}
		if err := tx.AppendAudit(ctx, &secondary.AuditRecord{UserID: "u1", EntityType: "roadmap", EntityID: "r1", Action: "update", FieldName: "is_active", OldValue: "true", NewValue: "false"}); err != nil {
			return err
		}
		return tx.DeactivateRoadmap(ctx, "r1", done)
	})
	require.NoError(t, err)

	profile, err := sqlstore.NewProfileRepository(database).GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 75, profile.XP)
	assert.Equal(t, 10, profile.CoinBalance)

	var txType string
	require.NoError(t, database.Get(&txType, "SELECT transaction_type FROM wallet_transactions WHERE user_id = 'u1'"))
	assert.Equal(t, "EARN", txType)

	roadmap, err := repo.GetForUser(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.False(t, roadmap.IsActive)
	require.NotNil(t, roadmap.CompletedAt)
	assert.True(t, roadmap.CompletedAt.Equal(done))

	entries, err := sqlstore.NewAuditRepository(database).List(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "is_active", entries[0].FieldName)
	assert.NotEmpty(t, entries[0].ID)
}
