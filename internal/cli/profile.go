package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/questline/internal/wire"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect progression profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show xp, level and coin balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}
		return wire.ProfileAdapter().Show(context.Background(), user)
	},
}

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent progression changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUser(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			return wire.ProfileAdapter().Audit(context.Background(), user, limit)
		},
	}
	addUserFlag(cmd)
	cmd.Flags().IntP("limit", "n", 20, "Maximum entries to show")
	return cmd
}

// EventsCmd returns the events command
func EventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recently published progression events (requires Redis)",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUser(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt64("limit")

			timeline := wire.EventTimeline()
			if timeline == nil {
				return fmt.Errorf("event publishing is disabled: set redis.addr or QUESTLINE_REDIS_ADDR")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			events, err := timeline.Timeline(ctx, user, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No events found")
				return nil
			}

			fmt.Printf("\n%-20s %-18s %s\n", "WHEN", "TYPE", "SUBJECT")
			fmt.Println("────────────────────────────────────────────────────────────────")
			for _, ev := range events {
				subject := ev.RoadmapID
				if ev.NodeID != "" {
					subject = ev.NodeID
				}
				fmt.Printf("%-20s %-18s %s\n", ev.OccurredAt.Format(time.RFC3339), ev.Type, subject)
			}
			fmt.Println()
			return nil
		},
	}
	addUserFlag(cmd)
	cmd.Flags().Int64P("limit", "n", 20, "Maximum events to show")
	return cmd
}

// ProfileCmd returns the profile command
func ProfileCmd() *cobra.Command {
	addUserFlag(profileShowCmd)
	profileCmd.AddCommand(profileShowCmd)
	return profileCmd
}
