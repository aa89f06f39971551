package roadmap

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func fiveDrafts() []StepDraft {
	return []StepDraft{
		{Title: "Walk", Order: 1},
		{Title: "Jog", Order: 2},
		{Title: "Run 1k", Order: 3},
		{Title: "Run 3k", Order: 4},
		{Title: "Run 5k", Order: 5},
	}
}

func TestNormalizeSteps_AppliesDefaults(t *testing.T) {
	steps, err := NormalizeSteps(fiveDrafts(), 5)
	if err != nil {
		t.Fatalf("NormalizeSteps() error = %v", err)
	}
	for i, s := range steps {
		if s.Order != i+1 {
			t.Errorf("steps[%d].Order = %d, want %d", i, s.Order, i+1)
		}
		if s.XPReward != DefaultXPReward || s.CoinReward != DefaultCoinReward {
			t.Errorf("steps[%d] rewards = (%d, %d), want defaults", i, s.XPReward, s.CoinReward)
		}
	}
}

func TestNormalizeSteps_KeepsExplicitRewards(t *testing.T) {
	drafts := fiveDrafts()
	drafts[0].XPReward = intPtr(120)
	drafts[0].CoinReward = intPtr(0)

	steps, err := NormalizeSteps(drafts, 5)
	if err != nil {
		t.Fatalf("NormalizeSteps() error = %v", err)
	}
	if steps[0].XPReward != 120 || steps[0].CoinReward != 0 {
		t.Errorf("steps[0] rewards = (%d, %d), want (120, 0)", steps[0].XPReward, steps[0].CoinReward)
	}
}

func TestNormalizeSteps_RenumbersOutOfOrder(t *testing.T) {
	drafts := []StepDraft{
		{Title: "third", Order: 30},
		{Title: "first", Order: 10},
		{Title: "second-a", Order: 20},
		{Title: "second-b", Order: 20},
	}

	steps, err := NormalizeSteps(drafts, 0)
	if err != nil {
		t.Fatalf("NormalizeSteps() error = %v", err)
	}

	want := []string{"first", "second-a", "second-b", "third"}
	for i, s := range steps {
		if s.Title != want[i] || s.Order != i+1 {
			t.Errorf("steps[%d] = (%q, %d), want (%q, %d)", i, s.Title, s.Order, want[i], i+1)
		}
	}
	if drafts[0].Title != "third" {
		t.Error("NormalizeSteps must not reorder the caller's slice")
	}
}

func TestNormalizeSteps_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		drafts   func() []StepDraft
		expected int
	}{
		{"empty", func() []StepDraft { return nil }, 5},
		{"wrong count", func() []StepDraft { return fiveDrafts()[:3] }, 5},
		{"blank title", func() []StepDraft {
			d := fiveDrafts()
			d[2].Title = "   "
			return d
		}, 5},
		{"missing order", func() []StepDraft {
			d := fiveDrafts()
			d[4].Order = 0
			return d
		}, 5},
		{"negative xp", func() []StepDraft {
			d := fiveDrafts()
			d[1].XPReward = intPtr(-1)
			return d
		}, 5},
		{"negative coins", func() []StepDraft {
			d := fiveDrafts()
			d[1].CoinReward = intPtr(-10)
			return d
		}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSteps(tt.drafts(), tt.expected)
			if !errors.Is(err, ErrMalformedSteps) {
				t.Errorf("NormalizeSteps() error = %v, want ErrMalformedSteps", err)
			}
		})
	}
}
