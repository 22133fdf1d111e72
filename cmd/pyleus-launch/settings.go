// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyleus/pyleus-launch/internal/compose"
	"github.com/pyleus/pyleus-launch/internal/config"
	"github.com/pyleus/pyleus-launch/internal/issue"
	"github.com/pyleus/pyleus-launch/internal/launch"
	"github.com/pyleus/pyleus-launch/pkg/platform"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagOptions       = "options"
	flagLoggingConfig = "logging-config"
	flagSerializer    = "serializer"
	flagPlatform      = "platform"
	flagPortable      = "portable-interpreter"
	flagQuoteMode     = "quote-mode"
	flagJSON          = "json"
)

type (
	// launchFlags holds the per-command flag values that override config.
	launchFlags struct {
		options       string
		loggingConfig string
		serializer    string
		platform      string
		portable      string
		quoteMode     string
		asJSON        bool
	}

	// launchSettings is the merged view of config and flags for one run.
	launchSettings struct {
		cfg      *config.Config
		family   platform.Family
		quote    launch.QuoteMode
		portable string
	}
)

// addRuntimeFlags registers the flags feeding --pyleus-config.
func (f *launchFlags) addRuntimeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.loggingConfig, flagLoggingConfig, "", "logging config path passed to the worker (overrides logging_config_path)")
	fs.StringVar(&f.serializer, flagSerializer, "", "worker serializer: json or msgpack (overrides serializer)")
}

// addInvocationFlags registers the flags that describe one module invocation.
func (f *launchFlags) addInvocationFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.options, flagOptions, "", "worker arguments as a JSON object, sent as --options")
	f.addRuntimeFlags(fs)
}

// addPlatformFlags registers the flags that shape the platform command.
func (f *launchFlags) addPlatformFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.platform, flagPlatform, "", "target platform: auto, posix or windows (overrides platform)")
	fs.StringVar(&f.portable, flagPortable, "", "portable interpreter path, honoured on Windows for existing .exe files")
	fs.StringVar(&f.quoteMode, flagQuoteMode, "", "JSON protection in the bash form: legacy or exact (overrides quote_mode)")
}

// addOutputFlags registers the machine-readable output switch.
func (f *launchFlags) addOutputFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&f.asJSON, flagJSON, false, "print a JSON array instead of text")
}

// resolve loads configuration and applies every flag the user set.
func (f *launchFlags) resolve(ctx context.Context, cmd *cobra.Command, app *App) (*launchSettings, error) {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed(flagLoggingConfig) {
		cfg.LoggingConfigPath = config.FilePath(f.loggingConfig)
	}
	if flags.Changed(flagSerializer) {
		cfg.Serializer = config.Serializer(f.serializer)
	}
	if flags.Changed(flagPlatform) {
		cfg.Platform = config.PlatformMode(f.platform)
	}
	if flags.Changed(flagPortable) {
		cfg.PortableInterpreter = config.FilePath(f.portable)
	}
	if flags.Changed(flagQuoteMode) {
		cfg.QuoteMode = config.QuoteMode(f.quoteMode)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("resolve launch settings").
			WithSuggestion("Run 'pyleus-launch config show' to inspect the effective configuration").
			WithSuggestion("Check the --serializer, --platform and --quote-mode flag values").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	family, err := platform.ParseFamily(cfg.Platform.String())
	if err != nil {
		return nil, err
	}
	quote, err := launch.ParseQuoteMode(cfg.QuoteMode.String())
	if err != nil {
		return nil, err
	}

	return &launchSettings{
		cfg:      cfg,
		family:   family,
		quote:    quote,
		portable: cfg.PortableInterpreter.String(),
	}, nil
}

// invocation builds the ModuleInvocation for module from the flags.
func (f *launchFlags) invocation(module string, s *launchSettings) (compose.ModuleInvocation, error) {
	inv := compose.ModuleInvocation{
		Module:            compose.ModuleName(module),
		LoggingConfigPath: s.cfg.LoggingConfigPath.String(),
		Serializer:        s.cfg.Serializer.String(),
	}

	if f.options != "" {
		opts := compose.NewOptions()
		if err := opts.UnmarshalJSON([]byte(f.options)); err != nil {
			return inv, issue.NewErrorContext().
				WithOperation("parse worker options").
				WithResource("--" + flagOptions).
				WithSuggestion(`Pass a JSON object, for example --options '{"field":"word"}'`).
				Wrap(err).
				BuildError()
		}
		inv.Arguments = opts
	}

	return inv, nil
}

// launcher builds a Launcher for the resolved settings.
func (s *launchSettings) launcher(app *App) *launch.Launcher {
	return launch.New(
		launch.WithFamily(s.family),
		launch.WithQuoteMode(s.quote),
		launch.WithMetrics(app.Metrics),
	)
}

// composeArgs composes the argument vector, wrapping failures with hints.
func composeArgs(inv compose.ModuleInvocation) (compose.ArgumentVector, error) {
	args, err := compose.Compose(inv)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("compose worker command").
			WithResource(fmt.Sprintf("module %q", inv.Module)).
			WithSuggestion("Pass a non-empty dotted module name such as workers.count").
			WithSuggestion("Option values must be JSON-serializable").
			Wrap(err).
			BuildError()
	}
	return args, nil
}
