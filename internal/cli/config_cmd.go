package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/questline/internal/adapters/httpapi"
	"github.com/example/questline/internal/config"
	"github.com/example/questline/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage questline configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default questline.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", path)
		return nil
	},
}

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := resolveUser(cmd)
			if err != nil {
				return err
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")

			secret := wire.Config().HTTP.JWTSecret
			if secret == "" {
				return fmt.Errorf("http.jwt_secret is not configured")
			}
			token, err := httpapi.IssueToken([]byte(secret), user, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
	addUserFlag(cmd)
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	configInitCmd.Flags().String("path", config.DefaultPath, "File to write")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	return configCmd
}
