package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/questline/internal/core/roadmap"
	"github.com/example/questline/internal/wire"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Manage roadmaps (ordered quests per life domain)",
	Long:  "Generate roadmaps and move their nodes through LOCKED → AVAILABLE → IN_PROGRESS → COMPLETED",
}

var roadmapGenerateCmd = &cobra.Command{
	Use:   "generate [domain]",
	Short: "Get the active roadmap for a domain, generating one if needed",
	Long: fmt.Sprintf(`Get the active roadmap for a domain, generating one if needed.

Domains: %s

Examples:
  questline roadmap generate health --user alice
  QUESTLINE_USER=alice questline roadmap generate finance`, domainList()),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}

		_, err = wire.RoadmapAdapter().Generate(ctx, user, args[0])
		return err
	},
}

var roadmapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roadmaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}
		domain, _ := cmd.Flags().GetString("domain")
		all, _ := cmd.Flags().GetBool("all")

		return wire.RoadmapAdapter().List(ctx, user, domain, all)
	},
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show [roadmap-id]",
	Short: "Show roadmap details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}

		_, err = wire.RoadmapAdapter().Show(ctx, user, args[0])
		return err
	},
}

var roadmapStartCmd = &cobra.Command{
	Use:   "start [node-id]",
	Short: "Start an available node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}
		return wire.RoadmapAdapter().Start(ctx, user, args[0])
	},
}

var roadmapCompleteCmd = &cobra.Command{
	Use:   "complete [node-id]",
	Short: "Complete an in-progress node and collect its rewards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}
		return wire.RoadmapAdapter().Complete(ctx, user, args[0])
	},
}

func domainList() string {
	names := make([]string, 0, len(roadmap.Domains()))
	for _, d := range roadmap.Domains() {
		names = append(names, strings.ToLower(string(d)))
	}
	return strings.Join(names, ", ")
}

// RoadmapCmd returns the roadmap command
func RoadmapCmd() *cobra.Command {
	// Add flags
	for _, c := range []*cobra.Command{roadmapGenerateCmd, roadmapListCmd, roadmapShowCmd, roadmapStartCmd, roadmapCompleteCmd} {
		addUserFlag(c)
	}
	roadmapListCmd.Flags().StringP("domain", "d", "", "Filter by domain")
	roadmapListCmd.Flags().BoolP("all", "a", false, "Include completed roadmaps")

	// Add subcommands
	roadmapCmd.AddCommand(roadmapGenerateCmd)
	roadmapCmd.AddCommand(roadmapListCmd)
	roadmapCmd.AddCommand(roadmapShowCmd)
	roadmapCmd.AddCommand(roadmapStartCmd)
	roadmapCmd.AddCommand(roadmapCompleteCmd)

	return roadmapCmd
}
