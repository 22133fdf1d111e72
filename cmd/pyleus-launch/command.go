// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLaunchCommand creates the `pyleus-launch command` command.
func newLaunchCommand(app *App) *cobra.Command {
	var flags launchFlags

	cmd := &cobra.Command{
		Use:   "command <module>",
		Short: "Print the platform launch command for a worker module",
		Long: `Print the command a supervising host runs to start a worker module.

On POSIX targets this is bash -c "chmod 755 <interpreter>; <interpreter> ...".
On Windows targets it is cmd.exe /c <interpreter> ..., with the portable
interpreter used when it names an existing .exe file.

Text output is shell-quoted for display; use --json for the exact tokens.`,
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

			pc := s.launcher(app).Build(argv, s.portable)
			app.logger().Debug("built launch command", "family", pc.Family(), "tokens", len(pc))

			if flags.asJSON {
				return writeJSON(app.stdout, []string(pc))
			}
			_, err = fmt.Fprintln(app.stdout, pc.String())
			return err
		},
	}

	flags.addInvocationFlags(cmd.Flags())
	flags.addPlatformFlags(cmd.Flags())
	flags.addOutputFlags(cmd.Flags())

	return cmd
}
