// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pyleus/pyleus-launch/internal/issue"
	"github.com/pyleus/pyleus-launch/pkg/platform"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the directory name used under the platform config root.
	AppName = "pyleus"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (PYLEUS_SERIALIZER, PYLEUS_UI_VERBOSE).
	EnvPrefix = "PYLEUS"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the directory holding config.cue: %APPDATA%\pyleus on
// Windows, ~/Library/Application Support/pyleus on macOS and
// $XDG_CONFIG_HOME/pyleus (or ~/.config/pyleus) elsewhere.
//
//nolint:revive // config.ConfigDir reads better at call sites than config.Dir
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	root, err := userConfigRoot(runtime.GOOS)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, AppName), nil
}

// userConfigRoot returns the per-user configuration root for goos.
func userConfigRoot(goos string) (string, error) {
	if goos == platform.Windows {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData, nil
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming"), nil
	}
	if goos != platform.Darwin {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if goos == platform.Darwin {
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	return filepath.Join(home, ".config"), nil
}

// defaultValues flattens cfg into the dotted viper keys.
func defaultValues(cfg *Config) map[string]any {
	return map[string]any{
		"logging_config_path":  cfg.LoggingConfigPath,
		"serializer":           cfg.Serializer,
		"platform":             cfg.Platform,
		"portable_interpreter": cfg.PortableInterpreter,
		"quote_mode":           cfg.QuoteMode,
		"ui.verbose":           cfg.UI.Verbose,
		"ui.color_scheme":      cfg.UI.ColorScheme,
	}
}

// loadWithOptions builds a fresh viper instance for opts and decodes it.
// The second return value is the config file that was read, or "" when only
// defaults and the environment contributed.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	for key, value := range defaultValues(DefaultConfig()) {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Fix the CUE syntax or the field reported above").
				WithSuggestion("Run 'pyleus-launch config init' in an empty directory for a known-good file").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}

	// PYLEUS_* values never pass through the CUE schema.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			WithSuggestion("serializer accepts json or msgpack, quote_mode accepts legacy or exact").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, path, nil
}

// resolveConfigFile returns the file to load. An explicit path must exist;
// otherwise the config directory wins over the base directory and "" means
// no file was found.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if isRegularFile(opts.ConfigFilePath) {
			return opts.ConfigFilePath, nil
		}
		return "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Pass an existing file to --config").
			WithSuggestion("Omit --config to use " + ConfigFileName + "." + ConfigFileExt + " from the config directory").
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	name := ConfigFileName + "." + ConfigFileExt
	for _, dir := range []string{cfgDir, opts.BaseDir} {
		if candidate := filepath.Join(dir, name); isRegularFile(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// configDirWithOverride prefers an explicit directory over ConfigDir.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper merges the schema-checked contents of path into v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	values, err := decodeConfigFile(path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("merge %s: %w", path, err)
	}
	return nil
}

// decodeConfigFile unifies the file at path with #Config and decodes it.
// Every field is optional, so the result does not have to be concrete.
func decodeConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := checkFileSize(data, maxConfigFileSize, path); err != nil {
		return nil, err
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(configSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded config schema: %w", err)
	}

	user := cctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err, path)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(user)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, path)
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return nil, formatCUEError(err, path)
	}
	return values, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CreateDefaultConfig writes the default config file into dir (the platform
// config directory when dir is empty) unless one already exists. It returns
// the file path and whether a file was written.
func CreateDefaultConfig(dir string) (path string, written bool, err error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", false, err
	}

	path = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, statErr := os.Stat(path); statErr == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("write %s: %w", path, err)
	}
	return path, true, nil
}

// GenerateCUE renders cfg as a config.cue document. Empty paths are omitted.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// pyleus-launch configuration file\n")
	sb.WriteString("// Unset fields fall back to the built-in defaults.\n\n")

	optional := func(key string, value FilePath) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %q\n", key, value)
		}
	}

	optional("logging_config_path", cfg.LoggingConfigPath)
	fmt.Fprintf(&sb, "serializer: %q\n", cfg.Serializer)
	fmt.Fprintf(&sb, "platform: %q\n", cfg.Platform)
	optional("portable_interpreter", cfg.PortableInterpreter)
	fmt.Fprintf(&sb, "quote_mode: %q\n", cfg.QuoteMode)

	fmt.Fprintf(&sb, "\nui: {\n\tverbose: %v\n\tcolor_scheme: %q\n}\n", cfg.UI.Verbose, cfg.UI.ColorScheme)

	return sb.String()
}
