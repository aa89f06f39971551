package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/questline/internal/cli"
	"github.com/example/questline/internal/version"
	"github.com/example/questline/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "questline",
		Short:   "Questline - roadmap progression for life domains",
		Version: version.String(),
		Long: `Questline generates ordered roadmaps of quests per life domain and tracks
progression through them, granting xp and coins as nodes are completed.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				wire.SetConfigPath(path)
			}
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $QUESTLINE_CONFIG or ./questline.yaml)")

	// Add subcommands
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.RoadmapCmd())
	rootCmd.AddCommand(cli.ProfileCmd())
	rootCmd.AddCommand(cli.AuditCmd())
	rootCmd.AddCommand(cli.EventsCmd())

	// Operator tools
	rootCmd.AddCommand(cli.DBCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
