package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/ordo/cmd"
	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	"github.com/PolarWolf314/ordo/internal/ui"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		// A cancelled prompt is the user's choice, not a failure worth reporting.
		if !kerrors.IsCancelled(err) {
			fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗"), err)
		}
		os.Exit(1)
	}
}
