package primary

import "context"

// ProfileService defines the primary port for reading progression state.
type ProfileService interface {
	// GetProfile returns the user's profile, provisioning it on first access.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// ListAudit returns the user's most recent progression changes, newest first.
	ListAudit(ctx context.Context, userID string, limit int) ([]*AuditEntry, error)
}

// Profile represents a user's progression profile.
type Profile struct {
	UserID        string
	XP            int
	Level         int
	CurrentStreak int
	Language      string
	CoinBalance   int
}

// AuditEntry represents one recorded field change.
type AuditEntry struct {
	ID         string
	EntityType string
	EntityID   string
	Action     string
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string
}
