package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/questline/internal/core/effects"
	"github.com/example/questline/internal/ports/secondary"
)

// mockProgressionTx records the writes it receives.
type mockProgressionTx struct {
	calls     []string
	audits    []*secondary.AuditRecord
	updateErr error
}

func (m *mockProgressionTx) FindActive(ctx context.Context, userID, domain string) (*secondary.RoadmapRecord, error) {
	return nil, nil
}

func (m *mockProgressionTx) CreateRoadmap(ctx context.Context, roadmap *secondary.RoadmapRecord, nodes []*secondary.NodeRecord) error {
	m.calls = append(m.calls, "create:"+roadmap.ID)
	return nil
}

func (m *mockProgressionTx) ListNodes(ctx context.Context, roadmapID string) ([]*secondary.NodeRecord, error) {
	return nil, nil
}

func (m *mockProgressionTx) UpdateNodeStatus(ctx context.Context, nodeID, from, to string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.calls = append(m.calls, "status:"+nodeID+":"+from+"->"+to)
	return nil
}

func (m *mockProgressionTx) DeactivateRoadmap(ctx context.Context, roadmapID string, at time.Time) error {
	m.calls = append(m.calls, "deactivate:"+roadmapID)
	return nil
}

func (m *mockProgressionTx) GrantXP(ctx context.Context, userID string, amount int) error {
	m.calls = append(m.calls, "xp:"+userID)
	return nil
}

func (m *mockProgressionTx) CreditWallet(ctx context.Context, userID string, amount int, description string) error {
	m.calls = append(m.calls, "wallet:"+description)
	return nil
}

func (m *mockProgressionTx) AppendAudit(ctx context.Context, entry *secondary.AuditRecord) error {
	m.calls = append(m.calls, "audit:"+entry.FieldName)
	m.audits = append(m.audits, entry)
	return nil
}

var _ secondary.ProgressionTx = (*mockProgressionTx)(nil)

func TestEffectExecutor_AppliesEffectsInOrder(t *testing.T) {
	tx := &mockProgressionTx{}
	exec := NewEffectExecutor()

	out, err := exec.Execute(context.Background(), tx, []effects.Effect{
		effects.CompositeEffect{Effects: []effects.Effect{
			effects.NodeStatusEffect{NodeID: "n1", From: "IN_PROGRESS", To: "COMPLETED"},
			effects.AuditEffect{UserID: "u1", EntityType: "node", EntityID: "n1", Action: "update", FieldName: "status"},
		}},
		effects.GrantRewardEffect{UserID: "u1", NodeID: "n1", XP: 50, Coins: 10},
		effects.EventEffect{Type: "node.completed", UserID: "u1", NodeID: "n1"},
		effects.NoEffect{},
		effects.DeactivateRoadmapEffect{RoadmapID: "r1", At: time.Now()},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"status:n1:IN_PROGRESS->COMPLETED",
		"audit:status",
		"xp:u1",
		"wallet:Completed roadmap node n1",
		"deactivate:r1",
	}, tx.calls)
	assert.Equal(t, 50, out.XPGranted)
	assert.Equal(t, 10, out.CoinsGranted)
	require.Len(t, out.Transitions, 1)
	assert.Equal(t, "COMPLETED", out.Transitions[0].To)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "node.completed", out.Events[0].Type)
}

func TestEffectExecutor_SkipsZeroRewards(t *testing.T) {
	tx := &mockProgressionTx{}

	out, err := NewEffectExecutor().Execute(context.Background(), tx, []effects.Effect{
		effects.GrantRewardEffect{UserID: "u1", NodeID: "n1", XP: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"xp:u1"}, tx.calls)
	assert.Zero(t, out.CoinsGranted)
}

func TestEffectExecutor_StopsOnFirstError(t *testing.T) {
	tx := &mockProgressionTx{updateErr: secondary.ErrStatusConflict}

	out, err := NewEffectExecutor().Execute(context.Background(), tx, []effects.Effect{
		effects.NodeStatusEffect{NodeID: "n1", From: "AVAILABLE", To: "IN_PROGRESS"},
		effects.GrantRewardEffect{UserID: "u1", NodeID: "n1", XP: 50},
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, secondary.ErrStatusConflict))
	assert.Contains(t, err.Error(), "node_status")
	assert.Empty(t, tx.calls)
}

func TestEffectExecutor_EmptyPlan(t *testing.T) {
	out, err := NewEffectExecutor().Execute(context.Background(), &mockProgressionTx{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Transitions)
	assert.Empty(t, out.Events)
}
