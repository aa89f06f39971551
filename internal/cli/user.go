package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// UserEnv names the environment variable holding the default user.
const UserEnv = "QUESTLINE_USER"

// addUserFlag registers --user on cmd.
func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "User ID to act as (default: $"+UserEnv+")")
}

// resolveUser returns --user, falling back to the environment.
func resolveUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = os.Getenv(UserEnv)
	}
	if user == "" {
		return "", fmt.Errorf("no user selected: pass --user or set %s", UserEnv)
	}
	return user, nil
}
