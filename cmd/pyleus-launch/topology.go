// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/pyleus/pyleus-launch/internal/component"
	"github.com/pyleus/pyleus-launch/internal/config"
	"github.com/pyleus/pyleus-launch/internal/issue"
	"github.com/pyleus/pyleus-launch/internal/launch"
	"github.com/pyleus/pyleus-launch/internal/topology"

	"github.com/spf13/cobra"
)

const metricOverrideFailures = "pyleus_launch_command_override_failures_total"

// preparedComponent is the JSON shape of one prepared component.
type preparedComponent struct {
	Kind    component.Kind         `json:"kind"`
	Name    string                 `json:"name"`
	Command launch.PlatformCommand `json:"command"`
}

// newTopologyCommand creates the `pyleus-launch topology` command.
func newTopologyCommand(app *App) *cobra.Command {
	var (
		flags       launchFlags
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "topology <file>",
		Short: "Declare every component of a topology file and print its launch command",
		Long: `Load a YAML topology, declare every spout and bolt, apply the portable
interpreter and print the launch command each component ends up with.

The topology's serializer and logging_config override the configuration file;
--serializer and --logging-config override both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd.Context(), cmd, app)
			if err != nil {
				return err
			}

			top, err := topology.Load(args[0])
			if err != nil {
				return err
			}

			loggingConfig, serializer := top.RuntimeConfig(s.cfg.LoggingConfigPath.String(), s.cfg.Serializer.String())
			if cmd.Flags().Changed(flagLoggingConfig) {
				loggingConfig = s.cfg.LoggingConfigPath.String()
			}
			if cmd.Flags().Changed(flagSerializer) {
				serializer = s.cfg.Serializer.String()
			}
			if valid, errs := config.Serializer(serializer).IsValid(); !valid {
				return issue.WrapWithContext(errs[0], "declare topology", args[0])
			}

			factory := component.NewFactory(s.launcher(app),
				component.WithLogger(app.logger()),
				component.WithMetrics(app.Metrics),
				component.WithRuntimeConfig(loggingConfig, serializer),
			)
			comps, err := top.Build(factory)
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("declare topology").
					WithResource(args[0]).
					WithSuggestion("Every component needs a non-empty module name").
					WithSuggestion("Option values must be JSON-serializable").
					Wrap(err).
					BuildError()
			}

			prepared := make([]preparedComponent, 0, len(comps))
			for _, c := range comps {
				if s.portable != "" {
					c.SetPortableInterpreter(s.portable)
				}
				prepared = append(prepared, preparedComponent{
					Kind:    c.Kind(),
					Name:    c.Name(),
					Command: c.Prepare(),
				})
			}

			if flags.asJSON {
				err = writeJSON(app.stdout, prepared)
			} else {
				err = printTopology(app, top, prepared)
			}
			if err != nil {
				return err
			}

			if showMetrics {
				return app.Metrics.WriteText(app.stdout)
			}
			return nil
		},
	}

	flags.addRuntimeFlags(cmd.Flags())
	flags.addPlatformFlags(cmd.Flags())
	flags.addOutputFlags(cmd.Flags())
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print launch metrics in Prometheus text format afterwards")

	return cmd
}

func printTopology(app *App, top *topology.Topology, prepared []preparedComponent) error {
	if _, err := fmt.Fprintln(app.stdout, TitleStyle.Render(top.Name)); err != nil {
		return err
	}
	for _, p := range prepared {
		fmt.Fprintf(app.stdout, "%s %s\n  %s\n",
			SubtitleStyle.Render(string(p.Kind)),
			CmdStyle.Render(p.Name),
			p.Command.String())
	}

	totals, err := app.Metrics.Totals()
	if err != nil {
		return err
	}
	if failed := totals[metricOverrideFailures]; failed > 0 {
		fmt.Fprintln(app.stdout, WarningStyle.Render(
			fmt.Sprintf("%v component(s) kept their declaration-time command", failed)))
	}
	return nil
}
