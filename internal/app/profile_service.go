package app

import (
	"context"
	"strings"
	"time"

	"github.com/example/questline/internal/apperr"
	"github.com/example/questline/internal/ports/primary"
	"github.com/example/questline/internal/ports/secondary"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// ProfileServiceImpl implements the ProfileService interface.
type ProfileServiceImpl struct {
	profileRepo secondary.ProfileRepository
	auditRepo   secondary.AuditRepository
}

// NewProfileService creates a new ProfileService with injected dependencies.
func NewProfileService(profileRepo secondary.ProfileRepository, auditRepo secondary.AuditRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
	}
}

// GetProfile returns the user's profile and coin balance.
func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID string) (*primary.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user is required")
	}

	record, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &primary.Profile{
		UserID:        record.UserID,
		XP:            record.XP,
		Level:         record.Level,
		CurrentStreak: record.CurrentStreak,
		Language:      record.Language,
		CoinBalance:   record.CoinBalance,
	}, nil
}

// ListAudit returns the user's audit entries, newest first.
// limit <= 0 selects the default; larger values are capped.
func (s *ProfileServiceImpl) ListAudit(ctx context.Context, userID string, limit int) ([]*primary.AuditEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user is required")
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	records, err := s.auditRepo.List(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.AuditEntry{
			ID:         r.ID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     r.Action,
			FieldName:  r.FieldName,
			OldValue:   r.OldValue,
			NewValue:   r.NewValue,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return entries, nil
}

var _ primary.ProfileService = (*ProfileServiceImpl)(nil)
