// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pyleus/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/pyleus/config.cue on macOS, %APPDATA%\pyleus\config.cue
// on Windows), falling back to config.cue in the working directory. Environment
// variables prefixed with PYLEUS_ override file values (PYLEUS_UI_VERBOSE=true).
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
