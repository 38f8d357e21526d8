package cmd

import (
	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/workflows"
)

var openCmd = &cobra.Command{
	Use:   "open FILE",
	Short: "Decrypt a file and print its plaintext",
	Long: `Decrypts FILE with the backend its suffix selects and prints the plaintext
to standard output. Nothing is written to disk.

Examples:
  ordo open notes.gpg
  ordo open journal.md.ordo | less`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting open command")
		path := args[0]

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load configuration: %v", err)
		}

		lines, closeTTY, err := openPrompter()
		if err != nil {
			return err
		}
		defer closeQuietly(closeTTY)

		spinner, cleanup := startSpinner("Decrypting " + path + "...")
		result, err := workflows.Open(cmd.Context(), newEnv(config, withSpinner(lines, spinner)), workflows.OpenOptions{Path: path})
		cleanup()
		if err != nil {
			return err
		}
		defer memguard.WipeBytes(result.Plaintext)

		Logger.Infof("Decrypted %s (%d bytes, format %s)", path, len(result.Plaintext), result.Format)
		_, err = cmd.OutOrStdout().Write(result.Plaintext)
		return err
	},
}
