// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pyleus/pyleus-launch/internal/issue"
)

// isolatedOptions points every lookup location at fresh temp directories so
// no user config leaks into the test.
func isolatedOptions(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{ConfigDirPath: t.TempDir(), BaseDir: t.TempDir()}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Serializer != SerializerMsgpack {
		t.Errorf("expected default serializer msgpack, got %s", cfg.Serializer)
	}
	if cfg.Platform != PlatformAuto {
		t.Errorf("expected default platform auto, got %s", cfg.Platform)
	}
	if cfg.QuoteMode != QuoteLegacy {
		t.Errorf("expected default quote mode legacy, got %s", cfg.QuoteMode)
	}
	if cfg.LoggingConfigPath != "" || cfg.PortableInterpreter != "" {
		t.Errorf("expected empty paths by default, got %q and %q", cfg.LoggingConfigPath, cfg.PortableInterpreter)
	}
	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme auto, got %s", cfg.UI.ColorScheme)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	Reset()
	defer Reset()

	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	SetConfigDirOverride("/override")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != "/override" {
		t.Errorf("ConfigDir() with override = %q, want /override", dir)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(t.Context(), isolatedOptions(t))
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Serializer != SerializerMsgpack || cfg.Platform != PlatformAuto {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	want := writeConfig(t, opts.ConfigDirPath, `
serializer: "json"
logging_config_path: "/etc/pyleus/logging.conf"
quote_mode: "exact"
ui: {
	verbose: true
}
`)

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.Serializer != SerializerJSON {
		t.Errorf("Serializer = %s, want json", cfg.Serializer)
	}
	if cfg.LoggingConfigPath != "/etc/pyleus/logging.conf" {
		t.Errorf("LoggingConfigPath = %q", cfg.LoggingConfigPath)
	}
	if cfg.QuoteMode != QuoteExact {
		t.Errorf("QuoteMode = %s, want exact", cfg.QuoteMode)
	}
	if !cfg.UI.Verbose {
		t.Error("expected verbose from file")
	}
	// Unset fields keep defaults.
	if cfg.Platform != PlatformAuto {
		t.Errorf("Platform = %s, want auto", cfg.Platform)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("ColorScheme = %s, want auto", cfg.UI.ColorScheme)
	}
}

func TestLoad_BaseDirFallback(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	want := writeConfig(t, opts.BaseDir, `platform: "windows"`)

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.Platform != PlatformWindows {
		t.Errorf("Platform = %s, want windows", cfg.Platform)
	}
}

func TestLoad_ConfigDirWinsOverBaseDir(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	writeConfig(t, opts.BaseDir, `serializer: "json"`)
	want := writeConfig(t, opts.ConfigDirPath, `serializer: "msgpack"`)

	path, err := NewProvider().Locate(opts)
	if err != nil {
		t.Fatalf("Locate() returned error: %v", err)
	}
	if path != want {
		t.Errorf("Locate() = %q, want %q", path, want)
	}
}

func TestLoad_CustomPath_Valid(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	writeConfig(t, opts.ConfigDirPath, `serializer: "json"`)

	custom := filepath.Join(t.TempDir(), "custom.cue")
	if err := os.WriteFile(custom, []byte(`portable_interpreter: "C:\\pyleus\\python.exe"`), 0o644); err != nil {
		t.Fatalf("failed to write custom config: %v", err)
	}
	opts.ConfigFilePath = custom

	cfg, err := NewProvider().Load(t.Context(), opts)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.PortableInterpreter != `C:\pyleus\python.exe` {
		t.Errorf("PortableInterpreter = %q", cfg.PortableInterpreter)
	}
	// The config directory file is ignored when a custom path is given.
	if cfg.Serializer != SerializerMsgpack {
		t.Errorf("Serializer = %s, want msgpack default", cfg.Serializer)
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "missing.cue")

	_, err := NewProvider().Load(t.Context(), opts)
	if err == nil {
		t.Fatal("expected error for missing custom config")
	}

	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if actionable.Resource != opts.ConfigFilePath {
		t.Errorf("Resource = %q, want %q", actionable.Resource, opts.ConfigFilePath)
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error should mention missing file, got: %v", err)
	}
}

func TestLoad_InvalidCUE_ReturnsActionableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"syntax error", `serializer: "json`, "load configuration"},
		{"schema violation", `serializer: "pickle"`, "serializer"},
		{"unknown field", `container_engine: "docker"`, "container_engine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolatedOptions(t)
			cfgPath := writeConfig(t, opts.ConfigDirPath, tt.content)

			_, err := NewProvider().Load(t.Context(), opts)
			if err == nil {
				t.Fatal("expected error for invalid config")
			}
			errStr := err.Error()
			if !strings.Contains(errStr, "load configuration") {
				t.Errorf("error should contain operation, got: %s", errStr)
			}
			if !strings.Contains(errStr, cfgPath) {
				t.Errorf("error should contain resource path, got: %s", errStr)
			}
			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error should contain %q, got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	writeConfig(t, opts.ConfigDirPath, "// "+strings.Repeat("x", maxConfigFileSize))

	_, err := NewProvider().Load(t.Context(), opts)
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	opts := isolatedOptions(t)
	writeConfig(t, opts.ConfigDirPath, `serializer: "msgpack"`)

	t.Setenv("PYLEUS_SERIALIZER", "json")
	t.Setenv("PYLEUS_UI_VERBOSE", "true")
	t.Setenv("PYLEUS_LOGGING_CONFIG_PATH", "/env/logging.conf")

	cfg, err := NewProvider().Load(t.Context(), opts)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Serializer != SerializerJSON {
		t.Errorf("Serializer = %s, want json from environment", cfg.Serializer)
	}
	if !cfg.UI.Verbose {
		t.Error("expected verbose from environment")
	}
	if cfg.LoggingConfigPath != "/env/logging.conf" {
		t.Errorf("LoggingConfigPath = %q, want /env/logging.conf", cfg.LoggingConfigPath)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("PYLEUS_QUOTE_MODE", "smart")

	_, err := NewProvider().Load(t.Context(), isolatedOptions(t))
	if err == nil {
		t.Fatal("expected error for invalid environment override")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got: %v", err)
	}
	if !errors.Is(err, ErrInvalidQuoteMode) {
		t.Errorf("error should wrap ErrInvalidQuoteMode, got: %v", err)
	}
	if !strings.Contains(err.Error(), "validate configuration") {
		t.Errorf("error should contain operation, got: %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewProvider().Load(ctx, isolatedOptions(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", AppName)

	path, written, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}
	if !written {
		t.Error("expected file to be written on first call")
	}
	if path != filepath.Join(dir, ConfigFileName+"."+ConfigFileExt) {
		t.Errorf("path = %q", path)
	}

	// The generated file loads back to the defaults.
	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() of generated config returned error: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("loaded %+v, want defaults %+v", *cfg, *DefaultConfig())
	}

	if _, written, err = CreateDefaultConfig(dir); err != nil || written {
		t.Errorf("second call: written=%v err=%v, want existing file kept", written, err)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	out := GenerateCUE(cfg)
	for _, want := range []string{`serializer: "msgpack"`, `platform: "auto"`, `quote_mode: "legacy"`, "verbose: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "logging_config_path") {
		t.Errorf("unset logging_config_path should be omitted:\n%s", out)
	}

	cfg.LoggingConfigPath = "/etc/log.conf"
	if out := GenerateCUE(cfg); !strings.Contains(out, `logging_config_path: "/etc/log.conf"`) {
		t.Errorf("GenerateCUE() missing logging_config_path:\n%s", out)
	}
}
