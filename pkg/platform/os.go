// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

const (
	// FamilyPOSIX launches workers through a POSIX shell. It is also the
	// fallback for unrecognized OS identifiers.
	FamilyPOSIX Family = "posix"
	// FamilyWindows launches workers through the Windows command interpreter.
	FamilyWindows Family = "windows"

	// auto is the selector value that defers to the host probe.
	auto = "auto"
)

// ErrInvalidFamily is the sentinel error wrapped by InvalidFamilyError.
var ErrInvalidFamily = errors.New("invalid platform family")

type (
	// Family is the launch family of an operating system.
	Family string

	// InvalidFamilyError is returned by ParseFamily for unknown selector values.
	// It wraps ErrInvalidFamily for errors.Is() compatibility.
	InvalidFamilyError struct {
		Value string
	}
)

// FamilyOf classifies an OS identifier such as runtime.GOOS or a JVM-style
// "Windows 10" name. Anything that does not mention windows is POSIX.
func FamilyOf(osName string) Family {
	if strings.Contains(strings.ToLower(osName), Windows) {
		return FamilyWindows
	}
	return FamilyPOSIX
}

// Host returns the family of the running process.
func Host() Family {
	return FamilyOf(runtime.GOOS)
}

// ParseFamily converts a configuration value into a Family.
// The empty string and "auto" resolve to Host().
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", auto:
		return Host(), nil
	case string(FamilyPOSIX):
		return FamilyPOSIX, nil
	case string(FamilyWindows):
		return FamilyWindows, nil
	default:
		return "", &InvalidFamilyError{Value: s}
	}
}

// String returns the string representation of the Family.
func (f Family) String() string { return string(f) }

// IsWindows reports whether f is the Windows family.
func (f Family) IsWindows() bool { return f == FamilyWindows }

// Error implements the error interface for InvalidFamilyError.
func (e *InvalidFamilyError) Error() string {
	return fmt.Sprintf("invalid platform %q (valid: auto, posix, windows)", e.Value)
}

// Unwrap returns ErrInvalidFamily for errors.Is() compatibility.
func (e *InvalidFamilyError) Unwrap() error { return ErrInvalidFamily }
