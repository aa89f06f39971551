package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/questline/internal/adapters/sqlstore"
)

func TestAuditRepository_ListNewestFirstWithLimit(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlstore.NewAuditRepository(database)

	for i, ts := range []string{"2026-01-01 10:00:00", "2026-01-01 11:00:00", "2026-01-01 12:00:00"} {
		_, err := database.Exec(
			"INSERT INTO audit_log (id, user_id, entity_type, entity_id, action, field_name, new_value, created_at) VALUES (?, 'u1', 'node', 'n1', 'update', 'status', ?, ?)",
			"a"+string(rune('1'+i)), "v"+string(rune('1'+i)), ts,
		)
		require.NoError(t, err)
	}
	_, err := database.Exec("INSERT INTO audit_log (id, user_id, entity_type, entity_id, action) VALUES ('x1', 'u2', 'node', 'n9', 'update')")
	require.NoError(t, err)

	entries, err := repo.List(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a3", entries[0].ID)
	assert.Equal(t, "a2", entries[1].ID)

	all, err := repo.List(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
