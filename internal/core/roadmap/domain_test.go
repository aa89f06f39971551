package roadmap

import "testing"

func TestParseDomain(t *testing.T) {
	tests := []struct {
		raw    string
		want   Domain
		wantOK bool
	}{
		{"HEALTH", DomainHealth, true},
		{"health", DomainHealth, true},
		{"  Finance ", DomainFinance, true},
		{"mental", DomainMental, true},
		{"relationships", DomainRelationships, true},
		{"LEARNING", DomainLearning, true},
		{"", "", false},
		{"CAREER", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDomain(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseDomain(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDomains(t *testing.T) {
	domains := Domains()
	if len(domains) != 5 {
		t.Fatalf("Domains() returned %d domains, want 5", len(domains))
	}
	for _, d := range domains {
		if d.Label() == string(d) {
			t.Errorf("domain %s has no label", d)
		}
	}
}

func TestInitialNodeStatus(t *testing.T) {
	if got := InitialNodeStatus(1); got != StatusAvailable {
		t.Errorf("InitialNodeStatus(1) = %s, want AVAILABLE", got)
	}
	for _, order := range []int{2, 3, 5} {
		if got := InitialNodeStatus(order); got != StatusLocked {
			t.Errorf("InitialNodeStatus(%d) = %s, want LOCKED", order, got)
		}
	}
}

func TestNodeStatus_Valid(t *testing.T) {
	for _, s := range []NodeStatus{StatusLocked, StatusAvailable, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if NodeStatus("DONE").Valid() {
		t.Error("DONE should not be valid")
	}
	if !StatusCompleted.Terminal() || StatusInProgress.Terminal() {
		t.Error("only COMPLETED is terminal")
	}
}
