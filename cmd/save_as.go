package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/ui"
	"github.com/PolarWolf314/ordo/internal/workflows"
)

var saveAsForce bool

func init() {
	saveAsCmd.Flags().BoolVarP(&saveAsForce, "force", "f", false, "overwrite an existing target without asking")
}

// resetSaveAsState resets the save-as command's global state for testing.
func resetSaveAsState() {
	saveAsForce = false
}

var saveAsCmd = &cobra.Command{
	Use:   "save-as SOURCE TARGET",
	Short: "Save a file under a new name",
	Long: `Opens SOURCE, decrypting it when its suffix is recognized, and saves it as
TARGET. A TARGET with an encrypted suffix is written encrypted. For any other
TARGET you choose between writing it encrypted anyway or as plaintext.
When TARGET is a directory the source's file name is kept.

Examples:
  ordo save-as notes.gpg notes.ordo
  ordo save-as notes.gpg backup/
  ordo save-as notes.gpg notes.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting save-as command")

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load configuration: %v", err)
		}

		lines, closeTTY, err := openPrompter()
		if err != nil {
			return err
		}
		defer closeQuietly(closeTTY)

		spinner, cleanup := startSpinner("Saving...")
		defer cleanup()

		result, err := workflows.SaveAs(cmd.Context(), newEnv(config, withSpinner(lines, spinner)), workflows.SaveAsOptions{
			Source: args[0],
			Target: args[1],
			Force:  saveAsForce,
		})
		if err != nil {
			return err
		}

		if result.Encrypted {
			spinner.FinalMSG = fmt.Sprintf("%s Wrote %s encrypted", ui.Success.Sprint("✓"), ui.Path.Sprint(result.Path))
		} else {
			spinner.FinalMSG = fmt.Sprintf("%s Wrote %s as %s", ui.Success.Sprint("✓"), ui.Path.Sprint(result.Path), ui.Warning.Sprint("plaintext"))
		}
		return nil
	},
}
