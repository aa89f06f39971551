// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/questline/internal/core/roadmap"
	"github.com/example/questline/internal/ports/primary"
)

// RoadmapAdapter is a thin adapter that translates CLI operations to RoadmapService calls.
type RoadmapAdapter struct {
	service primary.RoadmapService
	out     io.Writer
}

// NewRoadmapAdapter creates a new RoadmapAdapter with the given service.
func NewRoadmapAdapter(service primary.RoadmapService, out io.Writer) *RoadmapAdapter {
	return &RoadmapAdapter{
		service: service,
		out:     out,
	}
}

// Generate returns the user's active roadmap for a domain, generating one if needed.
func (a *RoadmapAdapter) Generate(ctx context.Context, userID, domain string) (*primary.Roadmap, error) {
	rm, err := a.service.GenerateRoadmap(ctx, primary.GenerateRoadmapRequest{
		UserID: userID,
		Domain: domain,
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Roadmap %s ready for %s\n", rm.ID, domainLabel(rm.Domain))
	a.printNodes(rm.Nodes)
	return rm, nil
}

// List lists the user's roadmaps.
func (a *RoadmapAdapter) List(ctx context.Context, userID, domain string, all bool) error {
	roadmaps, err := a.service.ListRoadmaps(ctx, primary.RoadmapFilters{
		UserID:          userID,
		Domain:          domain,
		IncludeInactive: all,
	})
	if err != nil {
		return fmt.Errorf("failed to list roadmaps: %w", err)
	}

	if len(roadmaps) == 0 {
		fmt.Fprintln(a.out, "No roadmaps found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-38s %-14s %-9s %-9s %s\n", "ID", "DOMAIN", "STATE", "PROGRESS", "CREATED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────────")
	for _, rm := range roadmaps {
		state := "active"
		if !rm.IsActive {
			state = "done"
		}
		fmt.Fprintf(a.out, "%-38s %-14s %-9s %-9s %s\n", rm.ID, rm.Domain, state, progress(rm), rm.CreatedAt)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a single roadmap with its nodes.
func (a *RoadmapAdapter) Show(ctx context.Context, userID, roadmapID string) (*primary.Roadmap, error) {
	rm, err := a.service.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}

	fmt.Fprintf(a.out, "\nRoadmap: %s\n", rm.ID)
	fmt.Fprintf(a.out, "Domain:  %s\n", domainLabel(rm.Domain))
	fmt.Fprintf(a.out, "Active:  %t\n", rm.IsActive)
	fmt.Fprintf(a.out, "Created: %s\n", rm.CreatedAt)
	if rm.CompletedAt != "" {
		fmt.Fprintf(a.out, "Completed: %s\n", rm.CompletedAt)
	}
	a.printNodes(rm.Nodes)

	return rm, nil
}

// Start starts a node.
func (a *RoadmapAdapter) Start(ctx context.Context, userID, nodeID string) error {
	node, err := a.service.StartNode(ctx, primary.NodeActionRequest{UserID: userID, NodeID: nodeID})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Started %q (%s)\n", node.Title, statusLabel(node.Status))
	return nil
}

// Complete completes a node.
func (a *RoadmapAdapter) Complete(ctx context.Context, userID, nodeID string) error {
	node, err := a.service.CompleteNode(ctx, primary.NodeActionRequest{UserID: userID, NodeID: nodeID})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Completed %q (+%d xp)\n", node.Title, node.XPReward)
	return nil
}

func (a *RoadmapAdapter) printNodes(nodes []*primary.RoadmapNode) {
	fmt.Fprintln(a.out)
	for _, n := range nodes {
		fmt.Fprintf(a.out, "  %d. %s %s\n", n.Order, statusLabel(n.Status), n.Title)
		fmt.Fprintf(a.out, "     %s\n", n.ID)
	}
	fmt.Fprintln(a.out)
}

func statusLabel(status string) string {
	switch roadmap.NodeStatus(status) {
	case roadmap.StatusCompleted:
		return color.New(color.FgGreen).Sprint("[done]")
	case roadmap.StatusInProgress:
		return color.New(color.FgYellow).Sprint("[doing]")
	case roadmap.StatusAvailable:
		return color.New(color.FgCyan).Sprint("[ready]")
	default:
		return color.New(color.FgHiBlack).Sprint("[locked]")
	}
}

func domainLabel(raw string) string {
	if d, ok := roadmap.ParseDomain(raw); ok {
		return d.Label()
	}
	return raw
}

func progress(rm *primary.Roadmap) string {
	done := 0
	for _, n := range rm.Nodes {
		if n.Status == string(roadmap.StatusCompleted) {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(rm.Nodes))
}
