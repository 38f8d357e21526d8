package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/configs"
	"github.com/PolarWolf314/ordo/internal/ui"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	ConfigCmd.AddCommand(configShowCmd)
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays the configuration in effect: the configuration file merged over
the built-in defaults.

Examples:
  ordo config show
  ordo config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")
		Logger.Debugf("Flags: json=%t", configShowJSON)

		path, err := resolveConfigPath()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to resolve configuration path: %v", err)
		}
		config, err := loadConfig()
		if err != nil {
			return err
		}

		if configShowJSON {
			return outputConfigJSON(config)
		}
		return outputConfigText(path, config)
	},
}

// outputConfigJSON outputs the configuration in JSON format.
func outputConfigJSON(config *configs.Config) error {
	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return Logger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
	}
	fmt.Println(string(output))
	return nil
}

// outputConfigText outputs the configuration as TOML under a heading.
func outputConfigText(path string, config *configs.Config) error {
	fmt.Println(ui.Info.Sprint("Configuration") + " (" + ui.Path.Sprint(path) + "):")
	fmt.Println()
	b, err := toml.Marshal(config)
	if err != nil {
		return Logger.ErrorfAndReturn("Failed to encode config: %v", err)
	}
	fmt.Print(string(b))
	return nil
}
