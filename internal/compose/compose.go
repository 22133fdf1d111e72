// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Worker entry point flags. These are a stable wire contract.
const (
	FlagModule       = "-m"
	FlagOptions      = "--options"
	FlagPyleusConfig = "--pyleus-config"
)

var (
	// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
	ErrInvalidModuleName = errors.New("invalid module name")
	// ErrInvalidOptions is the sentinel error wrapped by OptionsEncodeError.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrMalformedArgumentVector is returned by ParseArgumentVector when the
	// tokens do not follow the composed layout.
	ErrMalformedArgumentVector = errors.New("malformed argument vector")
)

type (
	// ModuleName is a dotted worker module identifier such as "workers.count".
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName is empty or whitespace-only.
	// It wraps ErrInvalidModuleName for errors.Is() compatibility.
	InvalidModuleNameError struct {
		Value ModuleName
	}

	// OptionsEncodeError is returned when the arguments mapping cannot be
	// serialized. It wraps ErrInvalidOptions for errors.Is() compatibility.
	OptionsEncodeError struct {
		Err error
	}

	// ModuleInvocation is one request to run a worker module.
	ModuleInvocation struct {
		// Module is the worker module to run with -m.
		Module ModuleName
		// Arguments is sent as --options when non-nil. An empty, non-nil
		// mapping is still sent as {}.
		Arguments *Options
		// LoggingConfigPath is passed through to the worker untouched.
		LoggingConfigPath string
		// Serializer names the tuple serializer the worker should use.
		Serializer string
	}

	// PyleusConfig is the fixed-shape runtime configuration sent as --pyleus-config.
	PyleusConfig struct {
		LoggingConfigPath string `json:"logging_config_path"`
		Serializer        string `json:"serializer"`
	}

	// ArgumentVector is the ordered, platform-independent worker command line.
	ArgumentVector []string
)

// Compose builds the argument vector for inv. It fails without producing a
// partial vector when the module name is empty or the arguments cannot be
// serialized.
func Compose(inv ModuleInvocation) (ArgumentVector, error) {
	if valid, errs := inv.Module.IsValid(); !valid {
		return nil, errs[0]
	}

	args := ArgumentVector{FlagModule, string(inv.Module)}

	if inv.Arguments != nil {
		options, err := inv.Arguments.MarshalJSON()
		if err != nil {
			return nil, &OptionsEncodeError{Err: err}
		}
		args = append(args, FlagOptions, string(options))
	}

	cfg, err := encodeCompact(inv.PyleusConfig())
	if err != nil {
		return nil, fmt.Errorf("encode pyleus config: %w", err)
	}
	args = append(args, FlagPyleusConfig, string(cfg))

	return args, nil
}

// MustCompose is like Compose but panics on a contract violation.
func MustCompose(inv ModuleInvocation) ArgumentVector {
	args, err := Compose(inv)
	if err != nil {
		panic(err)
	}
	return args
}

// ParseArgumentVector reverses Compose.
func ParseArgumentVector(args ArgumentVector) (ModuleInvocation, error) {
	var inv ModuleInvocation

	if len(args) < 4 || args[0] != FlagModule {
		return inv, fmt.Errorf("%w: expected %s <module> first", ErrMalformedArgumentVector, FlagModule)
	}
	inv.Module = ModuleName(args[1])
	rest := args[2:]

	if rest[0] == FlagOptions {
		opts := NewOptions()
		if err := opts.UnmarshalJSON([]byte(rest[1])); err != nil {
			return inv, fmt.Errorf("%w: %s: %w", ErrMalformedArgumentVector, FlagOptions, err)
		}
		inv.Arguments = opts
		rest = rest[2:]
	}

	if len(rest) != 2 || rest[0] != FlagPyleusConfig {
		return inv, fmt.Errorf("%w: expected %s <json> last", ErrMalformedArgumentVector, FlagPyleusConfig)
	}
	cfg := NewOptions()
	if err := cfg.UnmarshalJSON([]byte(rest[1])); err != nil {
		return inv, fmt.Errorf("%w: %s: %w", ErrMalformedArgumentVector, FlagPyleusConfig, err)
	}
	inv.LoggingConfigPath = stringOption(cfg, "logging_config_path")
	inv.Serializer = stringOption(cfg, "serializer")

	return inv, nil
}

// PyleusConfig derives the runtime configuration sent to the worker.
func (inv ModuleInvocation) PyleusConfig() PyleusConfig {
	return PyleusConfig{
		LoggingConfigPath: inv.LoggingConfigPath,
		Serializer:        inv.Serializer,
	}
}

// Clone returns a copy of the vector that shares no storage with args.
func (args ArgumentVector) Clone() ArgumentVector {
	return slices.Clone(args)
}

// String returns the string representation of the ModuleName.
func (m ModuleName) String() string { return string(m) }

// IsValid returns whether the ModuleName is valid.
// A valid name must be non-empty and not whitespace-only.
func (m ModuleName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(m)) == "" {
		return false, []error{&InvalidModuleNameError{Value: m}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModuleNameError.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidModuleName for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// Error implements the error interface for OptionsEncodeError.
func (e *OptionsEncodeError) Error() string {
	return fmt.Sprintf("invalid options: %v", e.Err)
}

// Unwrap returns both ErrInvalidOptions and the underlying cause.
func (e *OptionsEncodeError) Unwrap() []error { return []error{ErrInvalidOptions, e.Err} }

func stringOption(o *Options, key string) string {
	v, _ := o.Get(key)
	s, _ := v.(string)
	return s
}
