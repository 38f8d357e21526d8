package cmd

import (
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/ui"
	"github.com/PolarWolf314/ordo/internal/utils"
	"github.com/PolarWolf314/ordo/internal/workflows"
)

var createForce bool

func init() {
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "overwrite an existing file without asking")
}

// resetCreateState resets the create command's global state for testing.
func resetCreateState() {
	createForce = false
}

var createCmd = &cobra.Command{
	Use:   "create PATH",
	Short: "Encrypt plaintext from stdin into a new file",
	Long: `Reads plaintext from standard input and writes it encrypted to PATH.
When PATH has no encrypted suffix the default suffix is appended.

Examples:
  echo "token=abc" | ordo create secrets.env
  ordo create notes.gpg < notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting create command")

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load configuration: %v", err)
		}

		plaintext, err := utils.ReadStdin()
		if err != nil {
			return err
		}
		defer memguard.WipeBytes(plaintext)
		Logger.Debugf("Read %d bytes from stdin", len(plaintext))

		lines, closeTTY, err := openPrompter()
		if err != nil {
			return err
		}
		defer closeQuietly(closeTTY)

		spinner, cleanup := startSpinner("Encrypting...")
		defer cleanup()

		result, err := workflows.Create(cmd.Context(), newEnv(config, withSpinner(lines, spinner)), workflows.CreateOptions{
			Path:      args[0],
			Plaintext: plaintext,
			Force:     createForce,
		})
		if err != nil {
			return err
		}

		spinner.FinalMSG = fmt.Sprintf("%s Encrypted to %s with %s", ui.Success.Sprint("✓"), ui.Path.Sprint(result.Path), ui.Highlight.Sprint(result.Backend))
		return nil
	},
}
