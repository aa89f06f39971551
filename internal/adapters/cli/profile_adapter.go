package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/questline/internal/ports/primary"
)

// ProfileAdapter translates CLI operations to ProfileService calls.
type ProfileAdapter struct {
	service primary.ProfileService
	out     io.Writer
}

// NewProfileAdapter creates a new ProfileAdapter with the given service.
func NewProfileAdapter(service primary.ProfileService, out io.Writer) *ProfileAdapter {
	return &ProfileAdapter{
		service: service,
		out:     out,
	}
}

// Show displays the user's profile.
func (a *ProfileAdapter) Show(ctx context.Context, userID string) error {
	p, err := a.service.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	fmt.Fprintf(a.out, "\nUser:     %s\n", p.UserID)
	fmt.Fprintf(a.out, "Level:    %d\n", p.Level)
	fmt.Fprintf(a.out, "XP:       %d\n", p.XP)
	fmt.Fprintf(a.out, "Streak:   %d\n", p.CurrentStreak)
	fmt.Fprintf(a.out, "Coins:    %d\n", p.CoinBalance)
	fmt.Fprintf(a.out, "Language: %s\n\n", p.Language)
	return nil
}

// Audit lists recent progression changes.
func (a *ProfileAdapter) Audit(ctx context.Context, userID string, limit int) error {
	entries, err := a.service.ListAudit(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("failed to list audit log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No audit entries found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-20s %-8s %-8s %-16s %s\n", "WHEN", "ENTITY", "ACTION", "FIELD", "CHANGE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────")
	for _, e := range entries {
		change := e.NewValue
		if e.OldValue != "" {
			change = e.OldValue + " → " + e.NewValue
		}
		fmt.Fprintf(a.out, "%-20s %-8s %-8s %-16s %s\n", e.CreatedAt, e.EntityType, e.Action, e.FieldName, change)
	}
	fmt.Fprintln(a.out)
	return nil
}
