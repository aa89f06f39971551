package oracle

import (
	"context"
	"fmt"

	"github.com/example/questline/internal/core/roadmap"
	"github.com/example/questline/internal/ports/secondary"
)

var fixtureTitles = map[roadmap.Domain][]string{
	roadmap.DomainHealth:        {"Drink water first thing", "Ten-minute walk", "Stretch before bed", "Cook one meal at home", "Lights out by 11pm"},
	roadmap.DomainFinance:       {"Track every expense for a week", "Cancel one unused subscription", "Set a monthly budget", "Automate a savings transfer", "Build a one-month buffer"},
	roadmap.DomainLearning:      {"Pick one skill to learn", "Study for 15 minutes", "Summarize what you learned", "Teach it to someone", "Finish a small project"},
	roadmap.DomainRelationships: {"Message an old friend", "Ask someone about their day", "Plan a shared meal", "Write a thank-you note", "Schedule a regular catch-up"},
	roadmap.DomainMental:        {"Two minutes of breathing", "Write three gratitudes", "Take a screen-free hour", "Journal before sleep", "Meditate for ten minutes"},
}

// FixtureOracle returns canned steps. It is used for local development and demos.
type FixtureOracle struct {
	stepCount int
}

// NewFixtureOracle creates an oracle returning stepCount canned steps.
func NewFixtureOracle(stepCount int) *FixtureOracle {
	if stepCount <= 0 {
		stepCount = roadmap.DefaultStepCount
	}
	return &FixtureOracle{stepCount: stepCount}
}

func (f *FixtureOracle) GenerateSteps(ctx context.Context, profile secondary.ProfileSnapshot, domain string) ([]secondary.StepDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	titles, ok := fixtureTitles[roadmap.Domain(domain)]
	if !ok {
		return nil, fmt.Errorf("no fixture steps for domain %q", domain)
	}

	drafts := make([]secondary.StepDraft, f.stepCount)
	for i := range drafts {
		title := fmt.Sprintf("Keep going: level %d", i+1)
		if i < len(titles) {
			title = titles[i]
		}
		drafts[i] = secondary.StepDraft{
			Title:       title,
			Description: fmt.Sprintf("Step %d of your %s journey.", i+1, roadmap.Domain(domain).Label()),
			Order:       i + 1,
		}
	}
	return drafts, nil
}
