// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible to the user.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict is returned when a compare-and-set status update finds a different status.
	ErrStatusConflict = errors.New("node status changed concurrently")
)

// RoadmapRepository defines the read side of roadmap persistence.
type RoadmapRepository interface {
	// FindActive returns the user's active roadmap for a domain, or nil if none.
	FindActive(ctx context.Context, userID, domain string) (*RoadmapRecord, error)

	// GetForUser retrieves a roadmap owned by the user. Returns ErrNotFound otherwise.
	GetForUser(ctx context.Context, roadmapID, userID string) (*RoadmapRecord, error)

	// List retrieves roadmaps matching the given filters, newest first.
	List(ctx context.Context, filters RoadmapFilters) ([]*RoadmapRecord, error)

	// ListNodes retrieves a roadmap's nodes ordered by position.
	ListNodes(ctx context.Context, roadmapID string) ([]*NodeRecord, error)

	// GetNodeForUser retrieves a node whose roadmap is owned by the user.
	// Returns ErrNotFound otherwise.
	GetNodeForUser(ctx context.Context, nodeID, userID string) (*NodeRecord, error)
}

// ProgressionStore runs mutations inside a serialized transaction.
// The callback's error rolls the transaction back and is returned unchanged.
type ProgressionStore interface {
	// WithGenerationLock serializes generation for one (user, domain) pair.
	WithGenerationLock(ctx context.Context, userID, domain string, fn func(tx ProgressionTx) error) error

	// WithRoadmapLock serializes mutations of one roadmap's nodes.
	// Returns ErrNotFound when the roadmap does not exist.
	WithRoadmapLock(ctx context.Context, roadmapID string, fn func(tx ProgressionTx) error) error
}

// ProgressionTx is the set of writes available inside a progression transaction.
type ProgressionTx interface {
	FindActive(ctx context.Context, userID, domain string) (*RoadmapRecord, error)
	CreateRoadmap(ctx context.Context, roadmap *RoadmapRecord, nodes []*NodeRecord) error
	ListNodes(ctx context.Context, roadmapID string) ([]*NodeRecord, error)

	// UpdateNodeStatus sets to when the node is currently from.
	// Returns ErrStatusConflict otherwise.
	UpdateNodeStatus(ctx context.Context, nodeID, from, to string) error

	DeactivateRoadmap(ctx context.Context, roadmapID string, at time.Time) error
	GrantXP(ctx context.Context, userID string, amount int) error

	// CreditWallet adds coins to the balance and records an EARN transaction.
	CreditWallet(ctx context.Context, userID string, amount int, description string) error

	AppendAudit(ctx context.Context, entry *AuditRecord) error
}

// RoadmapRecord represents a roadmap as stored in persistence.
type RoadmapRecord struct {
	ID          string
	UserID      string
	Domain      string
	IsActive    bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NodeRecord represents a roadmap node as stored in persistence.
type NodeRecord struct {
	ID          string
	RoadmapID   string
	Title       string
	Description string
	Status      string
	Order       int
	XPReward    int
	CoinReward  int
}

// RoadmapFilters contains filter options for querying roadmaps.
type RoadmapFilters struct {
	UserID          string
	Domain          string
	IncludeInactive bool
}

// ProfileRepository defines the secondary port for profile persistence.
type ProfileRepository interface {
	// GetProfile returns the user's profile with wallet balance,
	// creating a default profile when none exists.
	GetProfile(ctx context.Context, userID string) (*ProfileRecord, error)
}

// ProfileRecord represents a profile joined with its wallet balance.
type ProfileRecord struct {
	UserID        string
	XP            int
	Level         int
	CurrentStreak int
	Language      string
	CoinBalance   int
}

// AuditRepository defines the read side of the audit log.
type AuditRepository interface {
	// List returns the user's entries, newest first. limit <= 0 means no limit.
	List(ctx context.Context, userID string, limit int) ([]*AuditRecord, error)
}

// AuditRecord represents a single audit log entry.
type AuditRecord struct {
	ID         string
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  time.Time
}
