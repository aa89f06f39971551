package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/questline/internal/db"
	"github.com/example/questline/internal/wire"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the questline database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := wire.Database()
		defer wire.Close()

		version, err := db.CurrentVersion(database.DB)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		fmt.Printf("✓ Database ready (%s, schema version %d)\n", database.DriverName(), version)
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users and a sample roadmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := wire.Database()
		defer wire.Close()

		if err := db.SeedFixtures(database.DB, database.DriverName()); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}

		fmt.Println("✓ Demo data loaded")
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  questline roadmap list --user %s\n", db.SeedUserAlice)
		fmt.Printf("  questline roadmap show %s --user %s\n", db.SeedRoadmapAlice, db.SeedUserAlice)
		return nil
	},
}

// DBCmd returns the db command
func DBCmd() *cobra.Command {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbSeedCmd)
	return dbCmd
}
