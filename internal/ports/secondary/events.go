package secondary

import (
	"context"
	"time"
)

// EventPublisher broadcasts committed progression events.
// Publishing is best-effort; a failure never undoes the committed change.
type EventPublisher interface {
	Publish(ctx context.Context, event ProgressEvent) error
}

// ProgressEvent is a committed progression change.
type ProgressEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	RoadmapID  string    `json:"roadmap_id,omitempty"`
	NodeID     string    `json:"node_id,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	XP         int       `json:"xp,omitempty"`
	Coins      int       `json:"coins,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
