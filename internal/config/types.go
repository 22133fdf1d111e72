// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SerializerMsgpack is the default worker serializer.
	SerializerMsgpack Serializer = "msgpack"
	// SerializerJSON selects the JSON worker serializer.
	SerializerJSON Serializer = "json"

	// PlatformAuto probes the host OS at launch time.
	PlatformAuto PlatformMode = "auto"
	// PlatformPOSIX forces the bash launch form.
	PlatformPOSIX PlatformMode = "posix"
	// PlatformWindows forces the cmd.exe launch form.
	PlatformWindows PlatformMode = "windows"

	// QuoteLegacy protects a token when the previous token contains a flag name.
	// Defined locally to avoid coupling config to internal/launch.
	QuoteLegacy QuoteMode = "legacy"
	// QuoteExact protects a token only after an exact flag token.
	QuoteExact QuoteMode = "exact"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidSerializer is returned when a Serializer value is not recognized.
	ErrInvalidSerializer = errors.New("invalid serializer")
	// ErrInvalidPlatformMode is returned when a PlatformMode value is not recognized.
	ErrInvalidPlatformMode = errors.New("invalid platform mode")
	// ErrInvalidQuoteMode is returned when a QuoteMode value is not recognized.
	ErrInvalidQuoteMode = errors.New("invalid quote mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFilePath is returned when an optional path is whitespace-only.
	ErrInvalidFilePath = errors.New("invalid file path")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Serializer names the wire serializer the worker process uses.
	Serializer string

	// InvalidSerializerError is returned when a Serializer value is not recognized.
	// It wraps ErrInvalidSerializer for errors.Is() compatibility.
	InvalidSerializerError struct {
		Value Serializer
	}

	// PlatformMode selects the launch form: probed or forced.
	PlatformMode string

	// InvalidPlatformModeError is returned when a PlatformMode value is not recognized.
	InvalidPlatformModeError struct {
		Value PlatformMode
	}

	// QuoteMode selects how JSON tokens are protected inside the bash -c script.
	QuoteMode string

	// InvalidQuoteModeError is returned when a QuoteMode value is not recognized.
	InvalidQuoteModeError struct {
		Value QuoteMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// FilePath is an optional filesystem path. The zero value means "unset";
	// non-zero values must not be whitespace-only.
	FilePath string

	// InvalidFilePathError is returned when a FilePath is non-empty but
	// whitespace-only. Field names the configuration key.
	InvalidFilePathError struct {
		Field string
		Value FilePath
	}

	// InvalidUIConfigError collects field-level validation errors of a UIConfig.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field-level validation errors of a Config.
	// It wraps ErrInvalidConfig and every field error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LoggingConfigPath is passed to every worker inside --pyleus-config.
		LoggingConfigPath FilePath `json:"logging_config_path" mapstructure:"logging_config_path"`
		// Serializer is passed to every worker inside --pyleus-config.
		Serializer Serializer `json:"serializer" mapstructure:"serializer"`
		// Platform selects the launch form.
		Platform PlatformMode `json:"platform" mapstructure:"platform"`
		// PortableInterpreter is the Windows portable interpreter candidate.
		PortableInterpreter FilePath `json:"portable_interpreter" mapstructure:"portable_interpreter"`
		// QuoteMode selects JSON token protection in the bash form.
		QuoteMode QuoteMode `json:"quote_mode" mapstructure:"quote_mode"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and detailed error output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme selects the markdown rendering style
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// String returns the string representation of the Serializer.
func (s Serializer) String() string { return string(s) }

// IsValid returns whether the Serializer is one of the supported serializers,
// and a list of validation errors if it is not.
func (s Serializer) IsValid() (bool, []error) {
	switch s {
	case SerializerMsgpack, SerializerJSON:
		return true, nil
	default:
		return false, []error{&InvalidSerializerError{Value: s}}
	}
}

// Error implements the error interface for InvalidSerializerError.
func (e *InvalidSerializerError) Error() string {
	return fmt.Sprintf("invalid serializer %q (valid: json, msgpack)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidSerializerError) Unwrap() error { return ErrInvalidSerializer }

// String returns the string representation of the PlatformMode.
func (m PlatformMode) String() string { return string(m) }

// IsValid returns whether the PlatformMode is one of the defined modes.
func (m PlatformMode) IsValid() (bool, []error) {
	switch m {
	case PlatformAuto, PlatformPOSIX, PlatformWindows:
		return true, nil
	default:
		return false, []error{&InvalidPlatformModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidPlatformModeError.
func (e *InvalidPlatformModeError) Error() string {
	return fmt.Sprintf("invalid platform %q (valid: auto, posix, windows)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidPlatformModeError) Unwrap() error { return ErrInvalidPlatformMode }

// String returns the string representation of the QuoteMode.
func (m QuoteMode) String() string { return string(m) }

// IsValid returns whether the QuoteMode is one of the defined modes.
func (m QuoteMode) IsValid() (bool, []error) {
	switch m {
	case QuoteLegacy, QuoteExact:
		return true, nil
	default:
		return false, []error{&InvalidQuoteModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidQuoteModeError.
func (e *InvalidQuoteModeError) Error() string {
	return fmt.Sprintf("invalid quote mode %q (valid: legacy, exact)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidQuoteModeError) Unwrap() error { return ErrInvalidQuoteMode }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the FilePath.
func (p FilePath) String() string { return string(p) }

// validate checks p under the given configuration key.
func (p FilePath) validate(field string) (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilePathError{Field: field, Value: p}}
	}
	return true, nil
}

// IsValid returns whether the FilePath is valid.
// The zero value ("") is valid. Non-zero values must not be whitespace-only.
func (p FilePath) IsValid() (bool, []error) {
	return p.validate("path")
}

// Error implements the error interface for InvalidFilePathError.
func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid %s %q: non-empty value must not be whitespace-only", e.Field, e.Value)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig and the field errors for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() []error {
	return append([]error{ErrInvalidUIConfig}, e.FieldErrors...)
}

// IsValid checks every typed field and the UI block, collecting all
// failures into one InvalidConfigError.
func (c Config) IsValid() (bool, []error) {
	checks := []func() (bool, []error){
		func() (bool, []error) { return c.LoggingConfigPath.validate("logging_config_path") },
		c.Serializer.IsValid,
		c.Platform.IsValid,
		func() (bool, []error) { return c.PortableInterpreter.validate("portable_interpreter") },
		c.QuoteMode.IsValid,
		c.UI.IsValid,
	}

	var errs []error
	for _, check := range checks {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LoggingConfigPath:   "",
		Serializer:          SerializerMsgpack,
		Platform:            PlatformAuto,
		PortableInterpreter: "",
		QuoteMode:           QuoteLegacy,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}
