package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ordo configuration",
	Long: `Provides commands for managing the ordo configuration file.

Use these commands to:
  - Write a configuration file with the defaults (config init)
  - Display the configuration in effect (config show)

Examples:
  # Write the default configuration
  ordo config init

  # Make OpenPGP the backend for names without an encrypted suffix
  ordo config init --fallback openpgp --recipient alice@example.com --force

  # Show the configuration as JSON
  ordo config show --json`,
}
