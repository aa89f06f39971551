package roadmap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultXPReward applies when a generated step omits xp_reward.
	DefaultXPReward = 50
	// DefaultCoinReward applies when a generated step omits coin_reward.
	DefaultCoinReward = 10
	// DefaultStepCount is the number of steps a generated roadmap must have.
	DefaultStepCount = 5
)

// ErrMalformedSteps is wrapped by every NormalizeSteps failure.
var ErrMalformedSteps = errors.New("malformed roadmap steps")

// StepDraft is a step as proposed by the content oracle. Rewards are nil when omitted.
type StepDraft struct {
	Title       string
	Description string
	Order       int
	XPReward    *int
	CoinReward  *int
}

// Step is a validated step ready to become a node.
type Step struct {
	Title       string
	Description string
	Order       int
	XPReward    int
	CoinReward  int
}

// NormalizeSteps validates oracle output and renumbers it 1..n.
// Drafts are ordered by their proposed order (stable, so ties keep list order);
// gaps and duplicates are closed by the renumbering. expected <= 0 disables
// the count check.
func NormalizeSteps(drafts []StepDraft, expected int) ([]Step, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no steps returned", ErrMalformedSteps)
	}
	if expected > 0 && len(drafts) != expected {
		return nil, fmt.Errorf("%w: expected %d steps, got %d", ErrMalformedSteps, expected, len(drafts))
	}

	sorted := make([]StepDraft, len(drafts))
	copy(sorted, drafts)

	for i, d := range sorted {
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("%w: step %d has no title", ErrMalformedSteps, i+1)
		}
		if d.Order <= 0 {
			return nil, fmt.Errorf("%w: step %q has invalid order %d", ErrMalformedSteps, d.Title, d.Order)
		}
		if d.XPReward != nil && *d.XPReward < 0 {
			return nil, fmt.Errorf("%w: step %q has negative xp reward", ErrMalformedSteps, d.Title)
		}
		if d.CoinReward != nil && *d.CoinReward < 0 {
			return nil, fmt.Errorf("%w: step %q has negative coin reward", ErrMalformedSteps, d.Title)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	steps := make([]Step, len(sorted))
	for i, d := range sorted {
		steps[i] = Step{
			Title:       strings.TrimSpace(d.Title),
			Description: strings.TrimSpace(d.Description),
			Order:       i + 1,
			XPReward:    intOr(d.XPReward, DefaultXPReward),
			CoinReward:  intOr(d.CoinReward, DefaultCoinReward),
		}
	}
	return steps, nil
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
