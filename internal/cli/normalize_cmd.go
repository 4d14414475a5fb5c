package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/wintrackr/internal/normalize"
)

func newNormalizeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <process> <title>",
		Short: "Print the canonical title the tracker would record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := normalize.New(app.cfg.Rules)
			fmt.Fprintln(cmd.OutOrStdout(), n.Normalize(args[0], args[1]))
			return nil
		},
	}
}
