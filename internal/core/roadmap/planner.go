package roadmap

import (
	"strconv"
	"time"

	"github.com/example/questline/internal/core/effects"
)

// Event types emitted by progression plans.
const (
	EventRoadmapGenerated = "roadmap.generated"
	EventNodeStarted      = "node.started"
	EventNodeCompleted    = "node.completed"
	EventNodeUnlocked     = "node.unlocked"
	EventRoadmapCompleted = "roadmap.completed"
)

// NodeState is the snapshot of a node the planners reason about.
type NodeState struct {
	ID         string
	Order      int
	Status     NodeStatus
	XPReward   int
	CoinReward int
}

// PlannedRoadmap is a roadmap ready to be persisted.
type PlannedRoadmap struct {
	ID        string
	UserID    string
	Domain    Domain
	CreatedAt time.Time
	Nodes     []PlannedNode
}

// PlannedNode is a node ready to be persisted.
type PlannedNode struct {
	ID          string
	Title       string
	Description string
	Status      NodeStatus
	Order       int
	XPReward    int
	CoinReward  int
}

// RoadmapPlanInput is the input to PlanRoadmap.
type RoadmapPlanInput struct {
	UserID string
	Domain Domain
	Steps  []Step // already normalized
	Now    time.Time
}

// PlanRoadmap lays out a new active roadmap from normalized steps.
// newID supplies identifiers so the plan stays deterministic under test.
func PlanRoadmap(in RoadmapPlanInput, newID func() string) PlannedRoadmap {
	plan := PlannedRoadmap{
		ID:        newID(),
		UserID:    in.UserID,
		Domain:    in.Domain,
		CreatedAt: in.Now,
		Nodes:     make([]PlannedNode, len(in.Steps)),
	}
	for i, step := range in.Steps {
		plan.Nodes[i] = PlannedNode{
			ID:          newID(),
			Title:       step.Title,
			Description: step.Description,
			Status:      InitialNodeStatus(step.Order),
			Order:       step.Order,
			XPReward:    step.XPReward,
			CoinReward:  step.CoinReward,
		}
	}
	return plan
}

// TransitionPlan is the outcome of planning a node transition.
// A plan that is allowed but carries no effects is a no-op.
type TransitionPlan struct {
	Guard   GuardResult
	Effects []effects.Effect
}

// NoOp reports whether the transition was accepted without any change.
func (p TransitionPlan) NoOp() bool {
	return p.Guard.Allowed && len(p.Effects) == 0
}

// StartPlanInput is the input to PlanStartNode.
type StartPlanInput struct {
	UserID    string
	RoadmapID string
	NodeID    string
	Nodes     []NodeState // every node of the roadmap, target included
}

// PlanStartNode plans AVAILABLE -> IN_PROGRESS for the target node.
func PlanStartNode(in StartPlanInput) TransitionPlan {
	target, ok := findNode(in.Nodes, in.NodeID)
	if !ok {
		return TransitionPlan{Guard: GuardResult{Allowed: false, Reason: "node not found"}}
	}

	guard := CanStartNode(StartNodeContext{
		NodeID:       target.ID,
		Status:       target.Status,
		ActiveNodeID: activeNodeID(in.Nodes, target.ID),
	})
	if !guard.Allowed || target.Status == StatusInProgress {
		return TransitionPlan{Guard: guard}
	}

	return TransitionPlan{
		Guard: guard,
		Effects: []effects.Effect{
			statusChange(in.UserID, target.ID, StatusAvailable, StatusInProgress),
			effects.EventEffect{Type: EventNodeStarted, UserID: in.UserID, RoadmapID: in.RoadmapID, NodeID: target.ID},
		},
	}
}

// CompletePlanInput is the input to PlanCompleteNode.
type CompletePlanInput struct {
	UserID      string
	RoadmapID   string
	NodeID      string
	Nodes       []NodeState // every node of the roadmap, target included
	CreditCoins bool
	Now         time.Time
}

// PlanCompleteNode plans IN_PROGRESS -> COMPLETED with its cascade:
// the reward grant, unlocking the successor, and deactivating the roadmap
// once every node is completed.
func PlanCompleteNode(in CompletePlanInput) TransitionPlan {
	target, ok := findNode(in.Nodes, in.NodeID)
	if !ok {
		return TransitionPlan{Guard: GuardResult{Allowed: false, Reason: "node not found"}}
	}

	guard := CanCompleteNode(CompleteNodeContext{NodeID: target.ID, Status: target.Status})
	if !guard.Allowed || target.Status == StatusCompleted {
		return TransitionPlan{Guard: guard}
	}

	coins := 0
	if in.CreditCoins {
		coins = target.CoinReward
	}

	effs := []effects.Effect{
		statusChange(in.UserID, target.ID, StatusInProgress, StatusCompleted),
		effects.GrantRewardEffect{UserID: in.UserID, NodeID: target.ID, XP: target.XPReward, Coins: coins},
		effects.AuditEffect{
			UserID:     in.UserID,
			EntityType: "profile",
			EntityID:   in.UserID,
			Action:     "grant",
			FieldName:  "xp",
			NewValue:   strconv.Itoa(target.XPReward),
		},
	}
	if coins > 0 {
		effs = append(effs, effects.AuditEffect{
			UserID:     in.UserID,
			EntityType: "wallet",
			EntityID:   in.UserID,
			Action:     "grant",
			FieldName:  "balance",
			NewValue:   strconv.Itoa(coins),
		})
	}
	effs = append(effs, effects.EventEffect{
		Type:      EventNodeCompleted,
		UserID:    in.UserID,
		RoadmapID: in.RoadmapID,
		NodeID:    target.ID,
		XP:        target.XPReward,
		Coins:     coins,
	})

	if next, ok := successor(in.Nodes, target.Order); ok && next.Status == StatusLocked {
		effs = append(effs,
			statusChange(in.UserID, next.ID, StatusLocked, StatusAvailable),
			effects.EventEffect{Type: EventNodeUnlocked, UserID: in.UserID, RoadmapID: in.RoadmapID, NodeID: next.ID},
		)
	}

	if allCompletedExcept(in.Nodes, target.ID) {
		effs = append(effs,
			effects.DeactivateRoadmapEffect{RoadmapID: in.RoadmapID, At: in.Now},
			effects.AuditEffect{
				UserID:     in.UserID,
				EntityType: "roadmap",
				EntityID:   in.RoadmapID,
				Action:     "update",
				FieldName:  "is_active",
				OldValue:   "true",
				NewValue:   "false",
			},
			effects.EventEffect{Type: EventRoadmapCompleted, UserID: in.UserID, RoadmapID: in.RoadmapID},
		)
	}

	return TransitionPlan{Guard: guard, Effects: effs}
}

func statusChange(userID, nodeID string, from, to NodeStatus) effects.Effect {
	return effects.CompositeEffect{Effects: []effects.Effect{
		effects.NodeStatusEffect{NodeID: nodeID, From: string(from), To: string(to)},
		effects.AuditEffect{
			UserID:     userID,
			EntityType: "node",
			EntityID:   nodeID,
			Action:     "update",
			FieldName:  "status",
			OldValue:   string(from),
			NewValue:   string(to),
		},
	}}
}

func findNode(nodes []NodeState, id string) (NodeState, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeState{}, false
}

func activeNodeID(nodes []NodeState, exclude string) string {
	for _, n := range nodes {
		if n.ID != exclude && n.Status == StatusInProgress {
			return n.ID
		}
	}
	return ""
}

func successor(nodes []NodeState, order int) (NodeState, bool) {
	for _, n := range nodes {
		if n.Order == order+1 {
			return n, true
		}
	}
	return NodeState{}, false
}

func allCompletedExcept(nodes []NodeState, id string) bool {
	for _, n := range nodes {
		if n.ID != id && n.Status != StatusCompleted {
			return false
		}
	}
	return true
}
