package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/questline/internal/ports/secondary"
)

type profileRow struct {
	UserID        string `db:"user_id"`
	XP            int    `db:"xp"`
	Level         int    `db:"level"`
	CurrentStreak int    `db:"current_streak"`
	Language      string `db:"language"`
	CoinBalance   int    `db:"coin_balance"`
}

// ProfileRepository implements secondary.ProfileRepository.
type ProfileRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// GetProfile returns the user's profile joined with the wallet balance.
// A default profile is created on first access.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*secondary.ProfileRecord, error) {
	if err := ensureProfile(ctx, r.db, userID, r.now()); err != nil {
		return nil, fmt.Errorf("failed to provision profile: %w", err)
	}

	var row profileRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(`
		SELECT p.user_id, p.xp, p.level, p.current_streak, p.language, COALESCE(w.balance, 0) AS coin_balance
		FROM profiles p
		LEFT JOIN wallets w ON w.user_id = p.user_id
		WHERE p.user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &secondary.ProfileRecord{
		UserID:        row.UserID,
		XP:            row.XP,
		Level:         row.Level,
		CurrentStreak: row.CurrentStreak,
		Language:      row.Language,
		CoinBalance:   row.CoinBalance,
	}, nil
}

var _ secondary.ProfileRepository = (*ProfileRepository)(nil)
