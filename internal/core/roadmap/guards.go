package roadmap

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// StartNodeContext provides context for the start-node guard.
type StartNodeContext struct {
	NodeID string
	Status NodeStatus
	// ActiveNodeID is another node of the same roadmap already IN_PROGRESS, if any.
	ActiveNodeID string
}

// CompleteNodeContext provides context for the complete-node guard.
type CompleteNodeContext struct {
	NodeID string
	Status NodeStatus
}

// CanStartNode evaluates whether a node can move to IN_PROGRESS.
// Rules:
// - LOCKED and COMPLETED nodes cannot start
// - at most one node per roadmap may be IN_PROGRESS
// - starting a node that is already IN_PROGRESS is allowed (no-op)
func CanStartNode(ctx StartNodeContext) GuardResult {
	switch ctx.Status {
	case StatusLocked:
		return GuardResult{Allowed: false, Reason: "node is locked"}
	case StatusCompleted:
		return GuardResult{Allowed: false, Reason: "node is already completed"}
	case StatusInProgress:
		return GuardResult{Allowed: true}
	case StatusAvailable:
		if ctx.ActiveNodeID != "" && ctx.ActiveNodeID != ctx.NodeID {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("another node is already in progress (node: %s)", ctx.ActiveNodeID),
			}
		}
		return GuardResult{Allowed: true}
	default:
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("node has unknown status %q", ctx.Status)}
	}
}

// CanCompleteNode evaluates whether a node can move to COMPLETED.
// Completing an already completed node is allowed (no-op, no second reward).
func CanCompleteNode(ctx CompleteNodeContext) GuardResult {
	switch ctx.Status {
	case StatusInProgress, StatusCompleted:
		return GuardResult{Allowed: true}
	default:
		return GuardResult{Allowed: false, Reason: "node is not in progress"}
	}
}
