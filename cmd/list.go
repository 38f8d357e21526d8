package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ordo/internal/ui"
	"github.com/PolarWolf314/ordo/internal/utils"
	"github.com/PolarWolf314/ordo/internal/workflows"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the result as JSON")
}

// resetListState resets the list command's global state for testing.
func resetListState() {
	listJSON = false
}

var listCmd = &cobra.Command{
	Use:   "list [PATH|GLOB]...",
	Short: "List encrypted files",
	Long: `Lists files whose names carry a recognized encrypted suffix, along with the
backend that handles them, grouped by backend. Arguments may be files, directories, or globs;
** matches any number of directories. With no arguments the current
directory is searched recursively. Nothing is decrypted.

Examples:
  ordo list
  ordo list notes/
  ordo list "**/*.gpg"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load configuration: %v", err)
		}

		result, err := workflows.List(newEnv(config, nil), workflows.ListOptions{Patterns: args})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			data, err := json.MarshalIndent(result.Files, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}

		if len(result.Files) == 0 {
			fmt.Fprintln(out, ui.Info.Sprint("No encrypted files found"))
			return nil
		}

		byBackend := make(map[string][]string)
		var backends []string
		for _, f := range result.Files {
			if _, ok := byBackend[f.Backend]; !ok {
				backends = append(backends, f.Backend)
			}
			byBackend[f.Backend] = append(byBackend[f.Backend], f.Path)
		}
		sort.Strings(backends)
		for _, name := range backends {
			paths := byBackend[name]
			fmt.Fprintf(out, "%s %s:%s", ui.Highlight.Sprint(name), ui.Muted.Sprintf("%d", len(paths)), utils.FormatPaths(paths))
		}
		return nil
	},
}
