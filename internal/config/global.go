// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory when non-empty.
var configDirOverride string

// Reset clears the config directory override.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir. Tests use it because
// os.UserHomeDir ignores HOME on some platforms.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
