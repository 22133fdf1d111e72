// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/pyleus/pyleus-launch/internal/compose"
	"github.com/pyleus/pyleus-launch/pkg/platform"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func TestPlatformCommand_Family(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  PlatformCommand
		want platform.Family
	}{
		{"posix", PlatformCommand{"bash", "-c", "true"}, platform.FamilyPOSIX},
		{"windows", PlatformCommand{"cmd.exe", "/c", "py.exe", "-m", "m"}, platform.FamilyWindows},
		{"posix extra token", PlatformCommand{"bash", "-c", "true", "x"}, ""},
		{"windows without interpreter", PlatformCommand{"cmd.exe", "/c"}, ""},
		{"other", PlatformCommand{"sh", "-c", "true"}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		if got := tt.cmd.Family(); got != tt.want {
			t.Errorf("%s: Family() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestReduce_RecoversArgumentVector checks that every built command hands the
// interpreter exactly the composed tokens.
func TestReduce_RecoversArgumentVector(t *testing.T) {
	t.Parallel()

	invocations := map[string]compose.ModuleInvocation{
		"scenario": {
			Module:            "workers.count",
			Arguments:         compose.NewOptions().Set("field", "word"),
			LoggingConfigPath: "/etc/log.conf",
			Serializer:        "json",
		},
		"no options": {Module: "spouts.lines", Serializer: "msgpack"},
		"spaces in values": {
			Module:            "bolts.split",
			Arguments:         compose.NewOptions().Set("sentence", "the quick  brown fox").Set("n", 2),
			LoggingConfigPath: "/var/log/my logs/cfg.ini",
			Serializer:        "json",
		},
		"nested and lists": {
			Module: "bolts.route",
			Arguments: compose.NewOptions().
				Set("routes", []any{"a b", "c;d", "e|f"}).
				Set("limits", compose.NewOptions().Set("max", 10).Set("min", 0.5)),
			Serializer: "json",
		},
		"shell metacharacters": {
			Module:     "bolts.meta",
			Arguments:  compose.NewOptions().Set("glob", "*.txt").Set("redirect", "> /dev/null & ~"),
			Serializer: "json",
		},
	}

	for name, inv := range invocations {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			args := compose.MustCompose(inv)

			for _, mode := range []QuoteMode{QuoteLegacySubstring, QuoteExactFlag} {
				for _, fam := range []platform.Family{platform.FamilyPOSIX, platform.FamilyWindows} {
					cmd := New(WithFamily(fam), WithQuoteMode(mode)).Build(args, "")
					interp, argv, err := Reduce(cmd)
					if err != nil {
						t.Fatalf("%s/%s: Reduce() unexpected error: %v", mode, fam, err)
					}
					wantInterp := DefaultPOSIXInterpreter
					if fam.IsWindows() {
						wantInterp = DefaultWindowsInterpreter
					}
					if interp != wantInterp {
						t.Errorf("%s/%s: interpreter = %q, want %q", mode, fam, interp, wantInterp)
					}
					if !slices.Equal(argv, args) {
						t.Errorf("%s/%s: argv =\n%q\nwant\n%q", mode, fam, argv, args)
					}

					if _, err := compose.ParseArgumentVector(argv); err != nil {
						t.Errorf("%s/%s: ParseArgumentVector() unexpected error: %v", mode, fam, err)
					}
				}
			}
		})
	}
}

// TestReduce_LegacyQuotingLimits pins the payloads the legacy rule cannot carry
// and the exact rule can.
func TestReduce_LegacyQuotingLimits(t *testing.T) {
	t.Parallel()

	payloads := map[string]*compose.Options{
		"escaped quote": compose.NewOptions().Set("s", `a"b`),
		"dollar":        compose.NewOptions().Set("p", "$HOME/x"),
		"backslash":     compose.NewOptions().Set("w", `C:\temp`),
	}

	for name, opts := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			args := compose.MustCompose(compose.ModuleInvocation{Module: "m", Arguments: opts, Serializer: "json"})

			legacy := New(WithFamily(platform.FamilyPOSIX)).Build(args, "")
			if _, argv, err := Reduce(legacy); err == nil && slices.Equal(argv, args) {
				t.Errorf("legacy quoting unexpectedly preserved %q", args[3])
			}

			exact := New(WithFamily(platform.FamilyPOSIX), WithQuoteMode(QuoteExactFlag)).Build(args, "")
			_, argv, err := Reduce(exact)
			if err != nil {
				t.Fatalf("exact Reduce() unexpected error: %v", err)
			}
			if !slices.Equal(argv, args) {
				t.Errorf("exact argv = %q, want %q", argv, args)
			}
		})
	}
}

func TestReduce_OptionsJSONRoundTrip(t *testing.T) {
	t.Parallel()

	opts := compose.NewOptions().Set("field", "word").Set("count", 3).Set("tags", []any{"x", "y z"})
	args := compose.MustCompose(compose.ModuleInvocation{Module: "m", Arguments: opts})
	_, argv, err := Reduce(New(WithFamily(platform.FamilyPOSIX)).Build(args, ""))
	if err != nil {
		t.Fatalf("Reduce() unexpected error: %v", err)
	}

	parsed := compose.NewOptions()
	if err := parsed.UnmarshalJSON([]byte(argv[3])); err != nil {
		t.Fatalf("UnmarshalJSON() unexpected error: %v", err)
	}
	want, _ := opts.MarshalJSON()
	got, _ := parsed.MarshalJSON()
	if string(got) != string(want) {
		t.Errorf("round trip = %s, want %s", got, want)
	}
}

func TestReduce_Rejects(t *testing.T) {
	t.Parallel()

	tests := map[string]PlatformCommand{
		"foreign":     {"python", "-m", "m"},
		"empty posix": {"bash", "-c", ""},
		"unbalanced":  {"bash", "-c", `python "unterminated`},
		"subshell":    {"bash", "-c", "(python -m m)"},
	}
	for name, cmd := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := Reduce(cmd); err == nil {
				t.Errorf("Reduce(%q) expected error", cmd)
			}
		})
	}

	if _, _, err := Reduce(PlatformCommand{"python"}); !errors.Is(err, ErrNotLaunchCommand) {
		t.Errorf("Reduce() error = %v, want ErrNotLaunchCommand", err)
	}
}

// TestPlatformCommand_StringPastes checks that the display form parses back
// into the same tokens.
func TestPlatformCommand_StringPastes(t *testing.T) {
	t.Parallel()

	cmd := New(WithFamily(platform.FamilyPOSIX)).Build(scenarioArgsWithSpaces(), "")
	shown := cmd.String()
	if !strings.HasPrefix(shown, "bash -c ") {
		t.Fatalf("String() = %s, want bash -c prefix", shown)
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(shown), "")
	if err != nil {
		t.Fatalf("parse String() output: %v", err)
	}
	call := file.Stmts[0].Cmd.(*syntax.CallExpr)
	fields, err := expand.Fields(&expand.Config{Env: expand.ListEnviron()}, call.Args...)
	if err != nil {
		t.Fatalf("expand String() output: %v", err)
	}
	if !slices.Equal(fields, cmd) {
		t.Errorf("String() round trip = %q, want %q", fields, cmd)
	}
}

func scenarioArgsWithSpaces() compose.ArgumentVector {
	return compose.MustCompose(compose.ModuleInvocation{
		Module:     "workers.count",
		Arguments:  compose.NewOptions().Set("field", "two words"),
		Serializer: "json",
	})
}
