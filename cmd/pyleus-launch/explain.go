// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pyleus/pyleus-launch/internal/compose"
	"github.com/pyleus/pyleus-launch/internal/issue"
	"github.com/pyleus/pyleus-launch/internal/launch"

	"github.com/spf13/cobra"
)

// exitArgvMismatch is the explain exit code when the worker would receive a
// different argument vector than the one composed.
const exitArgvMismatch = 2

var errArgvMismatch = errors.New("the worker receives a different argument vector than the one composed")

// newExplainCommand creates the `pyleus-launch explain` command.
func newExplainCommand(app *App) *cobra.Command {
	var (
		flags launchFlags
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "explain <module>",
		Short: "Explain how a worker launch command is built and what the worker receives",
		Long: `Render a report for one worker launch: the composed argument vector, the
resolved interpreter, the platform command and the argument vector the worker
process actually receives once the platform's command interpreter has run.

A mismatch between the composed and the received vectors means the option
payload does not survive the bash form; --quote-mode exact fixes that. The
report is still printed and the command exits with status 2.`,
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

			l := s.launcher(app)
			report, intact := explainReport(inv, argv, l.ResolveInterpreter(s.portable), l.Build(argv, s.portable), s.quote)

			out := report
			if !raw {
				if out, err = issue.RenderMarkdown(report, s.cfg.UI.ColorScheme.String()); err != nil {
					app.logger().Debug("markdown rendering failed, printing raw report", "err", err)
				}
			}
			if _, err := fmt.Fprint(app.stdout, out); err != nil {
				return err
			}

			if !intact {
				return &ExitError{Code: exitArgvMismatch, Err: errArgvMismatch}
			}
			return nil
		},
	}

	flags.addInvocationFlags(cmd.Flags())
	flags.addPlatformFlags(cmd.Flags())
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown report without rendering")

	return cmd
}

// explainReport builds the Markdown report for one launch. It reports
// whether the worker receives argv unchanged.
func explainReport(inv compose.ModuleInvocation, argv compose.ArgumentVector, in launch.Interpreter, pc launch.PlatformCommand, mode launch.QuoteMode) (string, bool) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Worker launch: %s\n\n", inv.Module)

	sb.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Platform | %s |\n", pc.Family())
	fmt.Fprintf(&sb, "| Interpreter | `%s` (%s) |\n", in.Path, in.Source)
	fmt.Fprintf(&sb, "| Quote mode | %s |\n", mode)
	fmt.Fprintf(&sb, "| Serializer | %s |\n", inv.Serializer)
	if inv.LoggingConfigPath != "" {
		fmt.Fprintf(&sb, "| Logging config | `%s` |\n", inv.LoggingConfigPath)
	}
	sb.WriteString("\n")

	sb.WriteString("## Argument vector\n\n")
	writeFenced(&sb, argv)

	sb.WriteString("## Platform command\n\n")
	writeFenced(&sb, pc)

	sb.WriteString("## Received by the worker\n\n")
	interp, received, err := launch.Reduce(pc)
	if err != nil {
		fmt.Fprintf(&sb, "The command could not be reduced: %v\n", err)
		return sb.String(), false
	}
	fmt.Fprintf(&sb, "Interpreter `%s` with:\n\n", interp)
	writeFenced(&sb, received)
	writeDecoded(&sb, received)

	intact := slices.Equal(received, argv)
	if intact {
		sb.WriteString("The worker receives the composed argument vector unchanged.\n")
	} else {
		sb.WriteString("> **Warning:** the worker receives a different argument vector than the one composed. ")
		sb.WriteString("Option payloads containing backslashes, `$` or backticks do not survive the legacy bash form; ")
		sb.WriteString("use `--quote-mode exact`.\n")
	}

	return sb.String(), intact
}

// writeDecoded writes the invocation the worker parses out of received.
func writeDecoded(sb *strings.Builder, received []string) {
	sb.WriteString("### Decoded by the worker\n\n")

	got, err := compose.ParseArgumentVector(received)
	if err != nil {
		fmt.Fprintf(sb, "The worker cannot parse its arguments: %v\n\n", err)
		return
	}

	options := "(none)"
	if got.Arguments != nil {
		data, err := got.Arguments.MarshalJSON()
		if err != nil {
			options = err.Error()
		} else {
			options = "`" + string(data) + "`"
		}
	}
	cfg := got.PyleusConfig()
	logging := "(unset)"
	if cfg.LoggingConfigPath != "" {
		logging = "`" + cfg.LoggingConfigPath + "`"
	}

	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(sb, "| Module | %s |\n", got.Module)
	fmt.Fprintf(sb, "| Options | %s |\n", options)
	fmt.Fprintf(sb, "| Serializer | %s |\n", cfg.Serializer)
	fmt.Fprintf(sb, "| Logging config | %s |\n\n", logging)
}

// writeFenced writes tokens one per line inside a fenced code block.
func writeFenced(sb *strings.Builder, tokens []string) {
	sb.WriteString("```text\n")
	for _, tok := range tokens {
		sb.WriteString(tok)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\n")
}
