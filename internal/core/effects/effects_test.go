package effects

import "testing"

func TestEffectTypes(t *testing.T) {
	tests := []struct {
		effect Effect
		want   string
	}{
		{NodeStatusEffect{}, "node_status"},
		{GrantRewardEffect{}, "grant_reward"},
		{DeactivateRoadmapEffect{}, "deactivate_roadmap"},
		{AuditEffect{}, "audit"},
		{EventEffect{}, "event"},
		{CompositeEffect{}, "composite"},
		{NoEffect{}, "none"},
	}

	for _, tt := range tests {
		if got := tt.effect.EffectType(); got != tt.want {
			t.Errorf("%T.EffectType() = %q, want %q", tt.effect, got, tt.want)
		}
	}
}

func TestFlatten(t *testing.T) {
	effs := []Effect{
		NodeStatusEffect{NodeID: "a"},
		NoEffect{},
		CompositeEffect{Effects: []Effect{
			AuditEffect{EntityID: "a"},
			CompositeEffect{Effects: []Effect{EventEffect{Type: "node.started"}}},
		}},
	}

	flat := Flatten(effs)
	if len(flat) != 3 {
		t.Fatalf("Flatten() returned %d effects, want 3", len(flat))
	}
	if _, ok := flat[0].(NodeStatusEffect); !ok {
		t.Errorf("flat[0] = %T, want NodeStatusEffect", flat[0])
	}
	if _, ok := flat[1].(AuditEffect); !ok {
		t.Errorf("flat[1] = %T, want AuditEffect", flat[1])
	}
	if ev, ok := flat[2].(EventEffect); !ok || ev.Type != "node.started" {
		t.Errorf("flat[2] = %#v, want node.started event", flat[2])
	}
}
