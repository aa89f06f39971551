package roadmap

import "testing"

func TestCanStartNode(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StartNodeContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "available node can start",
			ctx:         StartNodeContext{NodeID: "n1", Status: StatusAvailable},
			wantAllowed: true,
		},
		{
			name:        "in progress node is a no-op",
			ctx:         StartNodeContext{NodeID: "n1", Status: StatusInProgress},
			wantAllowed: true,
		},
		{
			name:        "locked node cannot start",
			ctx:         StartNodeContext{NodeID: "n2", Status: StatusLocked},
			wantAllowed: false,
			wantReason:  "node is locked",
		},
		{
			name:        "completed node cannot restart",
			ctx:         StartNodeContext{NodeID: "n1", Status: StatusCompleted},
			wantAllowed: false,
			wantReason:  "node is already completed",
		},
		{
			name:        "sibling in progress blocks start",
			ctx:         StartNodeContext{NodeID: "n2", Status: StatusAvailable, ActiveNodeID: "n1"},
			wantAllowed: false,
			wantReason:  "another node is already in progress (node: n1)",
		},
		{
			name:        "unknown status is rejected",
			ctx:         StartNodeContext{NodeID: "n1", Status: "PAUSED"},
			wantAllowed: false,
			wantReason:  `node has unknown status "PAUSED"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanStartNode(tt.ctx)

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanStartNode() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("CanStartNode() Reason = %q, want %q", result.Reason, tt.wantReason)
			}

			err := result.Error()
			if tt.wantAllowed && err != nil {
				t.Errorf("Error() should be nil when allowed, got %v", err)
			}
			if !tt.wantAllowed && (err == nil || err.Error() != tt.wantReason) {
				t.Errorf("Error() = %v, want %q", err, tt.wantReason)
			}
		})
	}
}

func TestCanCompleteNode(t *testing.T) {
	tests := []struct {
		name        string
		status      NodeStatus
		wantAllowed bool
	}{
		{"in progress node can complete", StatusInProgress, true},
		{"completed node is idempotent", StatusCompleted, true},
		{"available node must be started first", StatusAvailable, false},
		{"locked node cannot complete", StatusLocked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCompleteNode(CompleteNodeContext{NodeID: "n1", Status: tt.status})

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanCompleteNode() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != "node is not in progress" {
				t.Errorf("CanCompleteNode() Reason = %q", result.Reason)
			}
		})
	}
}
