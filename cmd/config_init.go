package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/configs"
	"github.com/PolarWolf314/ordo/internal/ui"
)

var (
	configInitForce      bool
	configInitSuffixes   []string
	configInitRecipients []string
	configInitFallback   string
	configInitAuditLog   string
)

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing configuration file")
	configInitCmd.Flags().StringSliceVar(&configInitSuffixes, "suffix", nil, "recognized encrypted suffix, in priority order (repeatable)")
	configInitCmd.Flags().StringSliceVar(&configInitRecipients, "recipient", nil, "default OpenPGP recipient (repeatable)")
	configInitCmd.Flags().StringVar(&configInitFallback, "fallback", "", "backend for names without an encrypted suffix (ordo or openpgp)")
	configInitCmd.Flags().StringVar(&configInitAuditLog, "audit-log", "", "path of the audit log")
	ConfigCmd.AddCommand(configInitCmd)
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
	configInitSuffixes = nil
	configInitRecipients = nil
	configInitFallback = ""
	configInitAuditLog = ""
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Writes the default configuration, adjusted by the given flags, to the
configuration file. An existing file is only replaced with --force.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		path, err := resolveConfigPath()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to resolve configuration path: %v", err)
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			fmt.Println(ui.Warning.Sprint("⚠") + " Configuration already exists at " + ui.Path.Sprint(path))
			fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("ordo config init --force") + " to replace it")
			return nil
		}

		config := configs.Default()
		if len(configInitSuffixes) > 0 {
			config.Suffixes = configInitSuffixes
		}
		if len(configInitRecipients) > 0 {
			config.DefaultRecipients = configInitRecipients
		}
		if configInitFallback != "" {
			config.FallbackBackend = configInitFallback
		}
		if configInitAuditLog != "" {
			config.AuditLog = configInitAuditLog
		}
		if err := config.Validate(); err != nil {
			return err
		}

		Logger.Debugf("Writing configuration to %s", path)
		if err := configs.Save(path, config); err != nil {
			return Logger.ErrorfAndReturn("Failed to write configuration: %v", err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Configuration written to " + ui.Path.Sprint(path))
		return nil
	},
}
