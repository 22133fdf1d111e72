// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pyleus/pyleus-launch/internal/config"
	"github.com/pyleus/pyleus-launch/internal/metrics"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives the App and
	// reads configuration, output streams and metrics through it.
	App struct {
		Config  ConfigProvider
		Metrics *metrics.Collector
		stdout  io.Writer
		stderr  io.Writer

		// Bound to the root persistent flags.
		configPath string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Metrics *metrics.Collector
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Locate(opts config.LoadOptions) (string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector()
	}

	return &App{
		Config:  deps.Config,
		Metrics: deps.Metrics,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

// loadOptions returns the config loading options for the current flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

// loadConfig loads configuration and lets ui.verbose turn on verbose mode
// when --verbose was not given.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	return cfg, nil
}

// logger returns a stderr logger; verbose mode enables debug records.
func (a *App) logger() *log.Logger {
	l := log.NewWithOptions(a.stderr, log.Options{Prefix: "pyleus-launch"})
	if a.verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}
