package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/questline/internal/adapters/events"
	"github.com/example/questline/internal/adapters/oracle"
	"github.com/example/questline/internal/config"
	"github.com/example/questline/internal/db"
	"github.com/example/questline/internal/logging"
	"github.com/example/questline/internal/version"
	"github.com/example/questline/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate questline configuration and dependencies",
		Long: `Health check for a questline deployment.

Validates:
- Database connectivity and schema version
- API authentication secret
- Content oracle credentials
- Redis connectivity (when configured)

Examples:
  questline doctor              # Run full health check
  questline doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			results := runChecks(cfg, logging.Discard())

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println(version.String())
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found. Run 'questline config init' for a starting config.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func runChecks(cfg *config.Config, logger logrus.FieldLogger) []CheckResult {
	return []CheckResult{
		checkDatabase(cfg, logger),
		checkAuth(cfg),
		checkOracle(cfg),
		checkRedis(cfg),
	}
}

// checkDatabase opens the database, migrating it if needed.
func checkDatabase(cfg *config.Config, logger logrus.FieldLogger) CheckResult {
	database, err := db.Open(db.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
		Logger: logger,
	})
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	defer database.Close()

	current, err := db.CurrentVersion(database)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	if current != db.LatestVersion() {
		return CheckResult{
			Name:    "Database",
			Status:  "⚠",
			Details: fmt.Sprintf("  schema version %d, expected %d", current, db.LatestVersion()),
		}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}

// checkAuth verifies the API can authenticate requests.
func checkAuth(cfg *config.Config) CheckResult {
	if cfg.HTTP.JWTSecret == "" {
		return CheckResult{
			Name:    "API auth",
			Status:  "⚠",
			Details: "  http.jwt_secret is not set; 'questline serve' will refuse to start",
		}
	}
	return CheckResult{Name: "API auth", Status: "✓"}
}

// checkOracle verifies roadmap generation is possible.
func checkOracle(cfg *config.Config) CheckResult {
	if cfg.Oracle.Provider == oracle.ProviderFixture {
		return CheckResult{Name: "Content oracle", Status: "⚠", Details: "  using canned fixture steps"}
	}
	if cfg.Oracle.APIKey == "" {
		return CheckResult{
			Name:    "Content oracle",
			Status:  "✗",
			Details: "  GEMINI_API_KEY is not set; roadmap generation will fail",
		}
	}
	return CheckResult{Name: "Content oracle", Status: "✓"}
}

// checkRedis pings Redis when event publishing is configured.
func checkRedis(cfg *config.Config) CheckResult {
	if cfg.Redis.Addr == "" {
		return CheckResult{Name: "Redis", Status: "✓"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := events.Connect(ctx, cfg.Redis.Addr)
	if err != nil {
		return CheckResult{Name: "Redis", Status: "⚠", Details: "  " + err.Error() + "\n  events will not be published"}
	}
	client.Close()
	return CheckResult{Name: "Redis", Status: "✓"}
}
