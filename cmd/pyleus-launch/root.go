// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pyleus/pyleus-launch/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pyleus-launch",
		Short: "Compose worker launch commands for a pyleus topology",
		Long: TitleStyle.Render("pyleus-launch") + SubtitleStyle.Render(" - worker launch command composer") + `

pyleus-launch turns "run worker module M with arguments A" into the exact
process command a supervising host runs: a bash script on POSIX hosts or a
cmd.exe invocation on Windows hosts. Nothing is executed.

` + SubtitleStyle.Render("Examples:") + `
  pyleus-launch compose workers.count --options '{"field":"word"}'
  pyleus-launch command workers.count --platform windows
  pyleus-launch explain workers.count --quote-mode exact
  pyleus-launch topology word_count.yaml --metrics
  pyleus-launch config show`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/pyleus/config.cue)")

	rootCmd.AddCommand(newComposeCommand(app))
	rootCmd.AddCommand(newLaunchCommand(app))
	rootCmd.AddCommand(newExplainCommand(app))
	rootCmd.AddCommand(newTopologyCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so pass it explicitly
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.verbose))
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method; verbose mode adds the cause chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	return issue.FormatError(err, verboseMode)
}
