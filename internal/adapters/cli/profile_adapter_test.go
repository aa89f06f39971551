package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/example/questline/internal/ports/primary"
)

// mockProfileService implements primary.ProfileService for testing
type mockProfileService struct {
	entries   []*primary.AuditEntry
	lastLimit int
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID string) (*primary.Profile, error) {
	return &primary.Profile{UserID: userID, XP: 150, Level: 2, CurrentStreak: 3, Language: "en", CoinBalance: 30}, nil
}

func (m *mockProfileService) ListAudit(ctx context.Context, userID string, limit int) ([]*primary.AuditEntry, error) {
	m.lastLimit = limit
	return m.entries, nil
}

func TestProfileAdapter_Show(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewProfileAdapter(&mockProfileService{}, &buf)

	if err := adapter.Show(context.Background(), "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"User:     alice", "XP:       150", "Coins:    30"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestProfileAdapter_Audit(t *testing.T) {
	mock := &mockProfileService{entries: []*primary.AuditEntry{
		{EntityType: "node", Action: "update", FieldName: "status", OldValue: "AVAILABLE", NewValue: "IN_PROGRESS"},
		{EntityType: "profile", Action: "grant", FieldName: "xp", NewValue: "50"},
	}}
	var buf bytes.Buffer
	adapter := NewProfileAdapter(mock, &buf)

	if err := adapter.Audit(context.Background(), "alice", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.lastLimit != 5 {
		t.Errorf("expected limit 5, got %d", mock.lastLimit)
	}
	output := buf.String()
	if !strings.Contains(output, "AVAILABLE → IN_PROGRESS") {
		t.Errorf("expected status change, got: %s", output)
	}
	if !strings.Contains(output, "50") {
		t.Errorf("expected xp grant, got: %s", output)
	}
}

func TestProfileAdapter_Audit_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewProfileAdapter(&mockProfileService{}, &buf)

	if err := adapter.Audit(context.Background(), "alice", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No audit entries found") {
		t.Errorf("expected empty message, got: %s", buf.String())
	}
}
