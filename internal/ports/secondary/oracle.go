package secondary

import "context"

// ContentOracle proposes the steps of a new roadmap.
// Implementations must honor ctx cancellation.
type ContentOracle interface {
	GenerateSteps(ctx context.Context, profile ProfileSnapshot, domain string) ([]StepDraft, error)
}

// ProfileSnapshot is the profile context sent to the oracle.
type ProfileSnapshot struct {
	UserID        string
	Level         int
	XP            int
	CurrentStreak int
	Language      string
}

// StepDraft is one proposed step. Rewards are nil when the oracle omitted them.
type StepDraft struct {
	Title       string
	Description string
	Order       int
	XPReward    *int
	CoinReward  *int
}
