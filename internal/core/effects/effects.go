// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// NodeStatusEffect moves a node from one status to another.
// The shell must apply it as a compare-and-set on From.
type NodeStatusEffect struct {
	NodeID string
	From   string
	To     string
}

func (e NodeStatusEffect) EffectType() string { return "node_status" }

// GrantRewardEffect credits a user for completing a node.
// Coins is zero when the coin policy does not credit a wallet.
type GrantRewardEffect struct {
	UserID string
	NodeID string
	XP     int
	Coins  int
}

func (e GrantRewardEffect) EffectType() string { return "grant_reward" }

// DeactivateRoadmapEffect marks a fully completed roadmap inactive.
type DeactivateRoadmapEffect struct {
	RoadmapID string
	At        time.Time
}

func (e DeactivateRoadmapEffect) EffectType() string { return "deactivate_roadmap" }

// AuditEffect records a single field change.
type AuditEffect struct {
	UserID     string
	EntityType string // "roadmap", "node", "profile"
	EntityID   string
	Action     string // "create", "update", "grant"
	FieldName  string
	OldValue   string
	NewValue   string
}

func (e AuditEffect) EffectType() string { return "audit" }

// EventEffect is a progression event published after the transaction commits.
type EventEffect struct {
	Type      string // e.g., "node.started", "node.completed", "roadmap.completed"
	UserID    string
	RoadmapID string
	NodeID    string
	XP        int
	Coins     int
}

func (e EventEffect) EffectType() string { return "event" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }

// Flatten expands composites depth-first, dropping NoEffect.
func Flatten(effs []Effect) []Effect {
	var out []Effect
	for _, eff := range effs {
		switch e := eff.(type) {
		case CompositeEffect:
			out = append(out, Flatten(e.Effects)...)
		case NoEffect:
		default:
			out = append(out, eff)
		}
	}
	return out
}
