// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// RoadmapService defines the primary port for roadmap progression.
// Every operation is scoped to the requesting user; resources owned by
// another user behave as if they do not exist.
type RoadmapService interface {
	// GenerateRoadmap returns the user's active roadmap for the domain,
	// creating it from oracle output when none exists.
	GenerateRoadmap(ctx context.Context, req GenerateRoadmapRequest) (*Roadmap, error)

	// GetRoadmap retrieves one of the user's roadmaps with its nodes.
	GetRoadmap(ctx context.Context, userID, roadmapID string) (*Roadmap, error)

	// ListRoadmaps lists the user's roadmaps, active only unless asked otherwise.
	ListRoadmaps(ctx context.Context, filters RoadmapFilters) ([]*Roadmap, error)

	// StartNode moves an AVAILABLE node to IN_PROGRESS.
	StartNode(ctx context.Context, req NodeActionRequest) (*RoadmapNode, error)

	// CompleteNode moves an IN_PROGRESS node to COMPLETED and applies rewards.
	CompleteNode(ctx context.Context, req NodeActionRequest) (*RoadmapNode, error)
}

// GenerateRoadmapRequest contains parameters for generating a roadmap.
type GenerateRoadmapRequest struct {
	UserID string
	Domain string // case-insensitive
}

// NodeActionRequest identifies a node acted on by a user.
type NodeActionRequest struct {
	UserID string
	NodeID string
}

// RoadmapFilters contains filter options for listing roadmaps.
type RoadmapFilters struct {
	UserID          string
	Domain          string
	IncludeInactive bool
}

// Roadmap represents a roadmap entity at the port boundary.
type Roadmap struct {
	ID          string
	UserID      string
	Domain      string
	IsActive    bool
	CreatedAt   string
	CompletedAt string
	Nodes       []*RoadmapNode // ordered by Order
}

// RoadmapNode represents a single step of a roadmap.
type RoadmapNode struct {
	ID          string
	RoadmapID   string
	Title       string
	Description string
	Status      string
	Order       int
	XPReward    int
	CoinReward  int
}
