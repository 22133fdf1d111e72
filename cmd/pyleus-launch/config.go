// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pyleus/pyleus-launch/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `pyleus-launch config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pyleus-launch configuration",
		Long: `Manage pyleus-launch configuration.

Configuration is stored in:
  - Linux: ~/.config/pyleus/config.cue
  - macOS: ~/Library/Application Support/pyleus/config.cue
  - Windows: %APPDATA%\pyleus\config.cue

A config.cue in the working directory is used when none exists there.
Environment variables such as PYLEUS_SERIALIZER override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var asCUE bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, asCUE)
		},
	}
	showCmd.Flags().BoolVar(&asCUE, "cue", false, "print the effective configuration as CUE")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, asCUE bool) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	if asCUE {
		_, err = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	unset := SubtitleStyle.Render("(unset)")

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := app.Config.Locate(app.loadOptions())
	if err != nil || path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(w)

	optional := func(v config.FilePath) string {
		if v == "" {
			return unset
		}
		return valueStyle.Render(v.String())
	}

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("logging_config_path"), optional(cfg.LoggingConfigPath))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("serializer"), valueStyle.Render(cfg.Serializer.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("platform"), valueStyle.Render(cfg.Platform.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("portable_interpreter"), optional(cfg.PortableInterpreter))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("quote_mode"), valueStyle.Render(cfg.QuoteMode.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))

	return nil
}

func initConfig(app *App) error {
	path, written, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !written {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)

	path, err := app.Config.Locate(app.loadOptions())
	switch {
	case err != nil:
		return err
	case path == "":
		fmt.Fprintf(app.stdout, "Config file: %s\n", SubtitleStyle.Render("(none, using defaults)"))
	default:
		fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	}

	return nil
}
