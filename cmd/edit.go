package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/shell"
	"github.com/PolarWolf314/ordo/internal/workflows"
)

var editCmd = &cobra.Command{
	Use:   "edit FILE",
	Short: "Edit a file in the interactive shell",
	Long: `Opens FILE in ordo's line editor. Files with an encrypted suffix are
decrypted into memory and every save writes ciphertext. A missing encrypted
file starts out empty and is created on the first save.

Examples:
  ordo edit journal.md.ordo
  ordo edit notes.gpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting edit command")
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

		buf, ctl := workflows.NewSession(newEnv(config, lines))
		if err := ctl.Find(cmd.Context(), buf, path); err != nil {
			return err
		}
		Logger.Debugf("Visiting %s in %s mode", path, buf.Document().Mode)

		sh := shell.New(buf, ctl, lines.Reader(), lines.Writer(), Logger)
		sh.Banner()
		return sh.Run(cmd.Context())
	},
}
