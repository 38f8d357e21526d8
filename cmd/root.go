package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PolarWolf314/ordo/internal/configs"
	logger "github.com/PolarWolf314/ordo/internal/logging"
)

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger

	RootCmd = &cobra.Command{
		Use:   "ordo",
		Short: "ordo - edit encrypted files as if they were plain text",
		Long: `ordo keeps files encrypted on disk while you edit their plaintext in memory.

Files ending in .ordo use ordo's own passphrase format. Files ending in .gpg
or .pgp use OpenPGP. Saving an encrypted file always writes ciphertext; no
plaintext copy is ever written next to it.

Examples:
  # Print the plaintext of an encrypted file
  ordo open notes.gpg

  # Edit an encrypted file, creating it if it does not exist
  ordo edit journal.md.ordo

  # Encrypt plaintext from stdin into a new file
  echo "api-key=123" | ordo create secrets.env

  # Re-save an encrypted file under another name
  ordo save-as notes.gpg notes.ordo

  # Find every encrypted file below the current directory
  ordo list`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing ordo with verbose=%t, debug=%t, config=%q", verbose, debug, configPath)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default $ORDO_CONFIG or ~/.config/ordo/config.toml)")

	RootCmd.AddCommand(openCmd)
	RootCmd.AddCommand(editCmd)
	RootCmd.AddCommand(createCmd)
	RootCmd.AddCommand(saveAsCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(ConfigCmd)
}

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	Logger = logger.Logger{}
	openPrompter = defaultPrompter
	resetCreateState()
	resetSaveAsState()
	resetListState()
	resetConfigInitState()
	resetConfigShowState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState clears the Changed mark on every flag of cmd and its
// subcommands to prevent test pollution.
func resetCobraFlagState(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}

// resolveConfigPath returns the --config path or the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return configs.DefaultPath()
}

// loadConfig loads the configuration the command should run with.
func loadConfig() (*configs.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Loading configuration from %s", path)
	config, err := configs.Load(path)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Suffixes: %v, fallback backend: %s", config.Suffixes, config.FallbackBackend)
	return config, nil
}
