// SPDX-License-Identifier: MPL-2.0

package component

import (
	"errors"
	"fmt"
	"os"

	"github.com/pyleus/pyleus-launch/internal/compose"
	"github.com/pyleus/pyleus-launch/internal/launch"
	"github.com/pyleus/pyleus-launch/internal/metrics"

	"github.com/charmbracelet/log"
)

const (
	// KindSpout is a component that emits tuples.
	KindSpout Kind = "spout"
	// KindBolt is a component that processes tuples.
	KindBolt Kind = "bolt"
)

// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid component kind")

type (
	// Kind is the role of a worker component in a topology.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}

	// Component is one declared worker process.
	Component struct {
		kind     Kind
		name     string
		args     compose.ArgumentVector
		portable string

		host     Host
		launcher *launch.Launcher
		logger   *log.Logger
		metrics  *metrics.Collector
	}

	// Factory declares components against a shared launcher and runtime
	// configuration.
	Factory struct {
		launcher          *launch.Launcher
		logger            *log.Logger
		metrics           *metrics.Collector
		newHost           HostFunc
		loggingConfigPath string
		serializer        string
	}

	// FactoryOption configures a Factory.
	FactoryOption func(*Factory)
)

// WithLogger sets the logger used to report refused command overrides.
func WithLogger(l *log.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = l
	}
}

// WithMetrics records composition and override failures on c.
func WithMetrics(c *metrics.Collector) FactoryOption {
	return func(f *Factory) {
		f.metrics = c
	}
}

// WithHostFunc replaces the default ShellHost constructor.
func WithHostFunc(fn HostFunc) FactoryOption {
	return func(f *Factory) {
		f.newHost = fn
	}
}

// WithRuntimeConfig sets the logging config path and serializer sent to
// every worker in --pyleus-config.
func WithRuntimeConfig(loggingConfigPath, serializer string) FactoryOption {
	return func(f *Factory) {
		f.loggingConfigPath = loggingConfigPath
		f.serializer = serializer
	}
}

// NewFactory creates a Factory building commands with l.
func NewFactory(l *launch.Launcher, opts ...FactoryOption) *Factory {
	f := &Factory{
		launcher: l,
		newHost:  newShellHost,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "pyleus"})
	}
	return f
}

// NewSpout declares a spout running module with the given options.
func (f *Factory) NewSpout(name string, module compose.ModuleName, options *compose.Options) (*Component, error) {
	return f.New(KindSpout, name, module, options)
}

// NewBolt declares a bolt running module with the given options.
func (f *Factory) NewBolt(name string, module compose.ModuleName, options *compose.Options) (*Component, error) {
	return f.New(KindBolt, name, module, options)
}

// New declares a component of the given kind. Composition errors are
// returned immediately and no host is created.
func (f *Factory) New(kind Kind, name string, module compose.ModuleName, options *compose.Options) (*Component, error) {
	if valid, errs := kind.IsValid(); !valid {
		return nil, errs[0]
	}

	args, err := compose.Compose(compose.ModuleInvocation{
		Module:            module,
		Arguments:         options,
		LoggingConfigPath: f.loggingConfigPath,
		Serializer:        f.serializer,
	})
	if err != nil {
		f.metrics.CompositionFailed()
		return nil, fmt.Errorf("declare %s %q: %w", kind, name, err)
	}

	return &Component{
		kind:     kind,
		name:     name,
		args:     args,
		host:     f.newHost(f.launcher.DefaultCommand(args)),
		launcher: f.launcher,
		logger:   f.logger,
		metrics:  f.metrics,
	}, nil
}

// Kind returns the component kind.
func (c *Component) Kind() Kind { return c.kind }

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Arguments returns a copy of the worker-level argument vector.
func (c *Component) Arguments() compose.ArgumentVector { return c.args.Clone() }

// Host returns the host holding the component's command.
func (c *Component) Host() Host { return c.host }

// PortableInterpreter returns the configured portable interpreter, if any.
func (c *Component) PortableInterpreter() string { return c.portable }

// SetPortableInterpreter sets the interpreter candidate Prepare will try.
func (c *Component) SetPortableInterpreter(path string) {
	c.portable = path
}

// Prepare rebuilds the command for the current configuration and installs it
// on the host. When the host refuses, the failure is logged and the command
// from declaration time stays in effect. It returns the command the host
// will execute.
func (c *Component) Prepare() launch.PlatformCommand {
	cmd := c.launcher.Build(c.args, c.portable)

	if err := c.override(cmd); err != nil {
		c.logger.Error("cannot update worker command, keeping declaration-time command",
			"kind", c.kind, "component", c.name, "err", err)
		c.metrics.OverrideFailed(string(c.kind))
		return c.host.Command()
	}

	c.logger.Debug("worker command prepared", "kind", c.kind, "component", c.name, "family", cmd.Family())
	return cmd
}

// override installs cmd, turning a host panic into an error.
func (c *Component) override(cmd launch.PlatformCommand) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host panicked: %v", r)
		}
	}()
	return c.host.SetCommand(cmd)
}

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is spout or bolt.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindSpout, KindBolt:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid component kind %q (valid: spout, bolt)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }
