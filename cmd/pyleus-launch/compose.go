// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// newComposeCommand creates the `pyleus-launch compose` command.
func newComposeCommand(app *App) *cobra.Command {
	var flags launchFlags

	cmd := &cobra.Command{
		Use:   "compose <module>",
		Short: "Print the platform-independent worker argument vector",
		Long: `Print the argument vector for a worker module, one token per line:

  -m <module> [--options <json>] --pyleus-config <json>

--options is present only when --options is given (an empty object is kept).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd.Context(), cmd, app)
			if err != nil {
				return err
			}
			inv, err := flags.invocation(args[0], s)
			if err != nil {
				return err
			}
			argv, err := composeArgs(inv)
			if err != nil {
				app.Metrics.CompositionFailed()
				return err
			}

			if flags.asJSON {
				return writeJSON(app.stdout, []string(argv))
			}
			return writeLines(app.stdout, argv)
		},
	}

	flags.addInvocationFlags(cmd.Flags())
	flags.addOutputFlags(cmd.Flags())

	return cmd
}
