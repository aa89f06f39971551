package roadmap

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/questline/internal/core/effects"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func nodes(statuses ...NodeStatus) []NodeState {
	out := make([]NodeState, len(statuses))
	for i, s := range statuses {
		out[i] = NodeState{
			ID:         fmt.Sprintf("n%d", i+1),
			Order:      i + 1,
			Status:     s,
			XPReward:   50,
			CoinReward: 10,
		}
	}
	return out
}

func statusChanges(effs []effects.Effect) []effects.NodeStatusEffect {
	var out []effects.NodeStatusEffect
	for _, e := range effects.Flatten(effs) {
		if sc, ok := e.(effects.NodeStatusEffect); ok {
			out = append(out, sc)
		}
	}
	return out
}

func eventTypes(effs []effects.Effect) []string {
	var out []string
	for _, e := range effects.Flatten(effs) {
		if ev, ok := e.(effects.EventEffect); ok {
			out = append(out, ev.Type)
		}
	}
	return out
}

func TestPlanRoadmap(t *testing.T) {
	steps, err := NormalizeSteps(fiveDrafts(), 5)
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	plan := PlanRoadmap(RoadmapPlanInput{UserID: "u1", Domain: DomainHealth, Steps: steps, Now: now}, sequentialIDs())

	assert.Equal(t, "id-1", plan.ID)
	assert.Equal(t, DomainHealth, plan.Domain)
	assert.Equal(t, now, plan.CreatedAt)
	require.Len(t, plan.Nodes, 5)
	assert.Equal(t, StatusAvailable, plan.Nodes[0].Status)
	for i, n := range plan.Nodes[1:] {
		assert.Equal(t, StatusLocked, n.Status, "node %d", i+2)
	}
	assert.Equal(t, "id-2", plan.Nodes[0].ID)
	assert.Equal(t, "Run 5k", plan.Nodes[4].Title)
}

func TestPlanStartNode_AvailableNode(t *testing.T) {
	plan := PlanStartNode(StartPlanInput{UserID: "u1", RoadmapID: "r1", NodeID: "n1", Nodes: nodes(StatusAvailable, StatusLocked)})

	require.True(t, plan.Guard.Allowed)
	assert.False(t, plan.NoOp())
	assert.Equal(t, []effects.NodeStatusEffect{{NodeID: "n1", From: "AVAILABLE", To: "IN_PROGRESS"}}, statusChanges(plan.Effects))
	assert.Equal(t, []string{EventNodeStarted}, eventTypes(plan.Effects))
}

func TestPlanStartNode_AlreadyInProgressIsNoOp(t *testing.T) {
	plan := PlanStartNode(StartPlanInput{UserID: "u1", RoadmapID: "r1", NodeID: "n1", Nodes: nodes(StatusInProgress, StatusLocked)})

	assert.True(t, plan.NoOp())
}

func TestPlanStartNode_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		nodeID string
		nodes  []NodeState
		reason string
	}{
		{"locked", "n2", nodes(StatusAvailable, StatusLocked), "node is locked"},
		{"completed", "n1", nodes(StatusCompleted, StatusAvailable), "node is already completed"},
		{"sibling active", "n2", nodes(StatusInProgress, StatusAvailable), "another node is already in progress (node: n1)"},
		{"missing", "n9", nodes(StatusAvailable), "node not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanStartNode(StartPlanInput{UserID: "u1", RoadmapID: "r1", NodeID: tt.nodeID, Nodes: tt.nodes})
			assert.False(t, plan.Guard.Allowed)
			assert.Equal(t, tt.reason, plan.Guard.Reason)
			assert.Empty(t, plan.Effects)
		})
	}
}

func TestPlanCompleteNode_UnlocksSuccessor(t *testing.T) {
	plan := PlanCompleteNode(CompletePlanInput{
		UserID:      "u1",
		RoadmapID:   "r1",
		NodeID:      "n1",
		Nodes:       nodes(StatusInProgress, StatusLocked, StatusLocked),
		CreditCoins: true,
	})

	require.True(t, plan.Guard.Allowed)
	assert.Equal(t, []effects.NodeStatusEffect{
		{NodeID: "n1", From: "IN_PROGRESS", To: "COMPLETED"},
		{NodeID: "n2", From: "LOCKED", To: "AVAILABLE"},
	}, statusChanges(plan.Effects))
	assert.Equal(t, []string{EventNodeCompleted, EventNodeUnlocked}, eventTypes(plan.Effects))

	var grant effects.GrantRewardEffect
	for _, e := range effects.Flatten(plan.Effects) {
		if g, ok := e.(effects.GrantRewardEffect); ok {
			grant = g
		}
	}
	assert.Equal(t, effects.GrantRewardEffect{UserID: "u1", NodeID: "n1", XP: 50, Coins: 10}, grant)
}

func TestPlanCompleteNode_SuccessorAlreadyAvailable(t *testing.T) {
	plan := PlanCompleteNode(CompletePlanInput{
		UserID:    "u1",
		RoadmapID: "r1",
		NodeID:    "n1",
		Nodes:     nodes(StatusInProgress, StatusAvailable),
	})

	assert.Equal(t, []effects.NodeStatusEffect{{NodeID: "n1", From: "IN_PROGRESS", To: "COMPLETED"}}, statusChanges(plan.Effects))
}

func TestPlanCompleteNode_NoCoinsWithoutWalletPolicy(t *testing.T) {
	plan := PlanCompleteNode(CompletePlanInput{UserID: "u1", RoadmapID: "r1", NodeID: "n1", Nodes: nodes(StatusInProgress, StatusLocked)})

	for _, e := range effects.Flatten(plan.Effects) {
		switch eff := e.(type) {
		case effects.GrantRewardEffect:
			assert.Equal(t, 0, eff.Coins)
			assert.Equal(t, 50, eff.XP)
		case effects.AuditEffect:
			assert.NotEqual(t, "wallet", eff.EntityType)
		}
	}
}

func TestPlanCompleteNode_LastNodeDeactivatesRoadmap(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := PlanCompleteNode(CompletePlanInput{
		UserID:    "u1",
		RoadmapID: "r1",
		NodeID:    "n3",
		Nodes:     nodes(StatusCompleted, StatusCompleted, StatusInProgress),
		Now:       now,
	})

	var deactivate *effects.DeactivateRoadmapEffect
	for _, e := range effects.Flatten(plan.Effects) {
		if d, ok := e.(effects.DeactivateRoadmapEffect); ok {
			deactivate = &d
		}
	}
	require.NotNil(t, deactivate)
	assert.Equal(t, "r1", deactivate.RoadmapID)
	assert.Equal(t, now, deactivate.At)
	assert.Equal(t, []string{EventNodeCompleted, EventRoadmapCompleted}, eventTypes(plan.Effects))
}

func TestPlanCompleteNode_AlreadyCompletedIsNoOp(t *testing.T) {
	plan := PlanCompleteNode(CompletePlanInput{UserID: "u1", RoadmapID: "r1", NodeID: "n1", Nodes: nodes(StatusCompleted, StatusAvailable)})

	assert.True(t, plan.NoOp())
}

func TestPlanCompleteNode_Rejections(t *testing.T) {
	for _, status := range []NodeStatus{StatusLocked, StatusAvailable} {
		t.Run(string(status), func(t *testing.T) {
			plan := PlanCompleteNode(CompletePlanInput{UserID: "u1", RoadmapID: "r1", NodeID: "n1", Nodes: nodes(status)})
			assert.False(t, plan.Guard.Allowed)
			assert.Equal(t, "node is not in progress", plan.Guard.Reason)
			assert.Empty(t, plan.Effects)
		})
	}
}
