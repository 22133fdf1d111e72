// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pyleus/pyleus-launch/internal/compose"
	"github.com/pyleus/pyleus-launch/internal/metrics"
	"github.com/pyleus/pyleus-launch/pkg/platform"
)

// Interpreter locations produced by the environment provisioning step.
const (
	DefaultPOSIXInterpreter   = "pyleus_venv/bin/python"
	DefaultWindowsInterpreter = `pyleus_venv\Scripts\python.exe`
)

const (
	posixShell       = "bash"
	posixShellFlag   = "-c"
	windowsShell     = "cmd.exe"
	windowsShellFlag = "/c"

	portableExt = ".exe"
)

const (
	// SourceDefaultPOSIX is the provisioned interpreter on POSIX hosts.
	SourceDefaultPOSIX InterpreterSource = "default-posix"
	// SourceDefaultWindows is the provisioned interpreter on Windows hosts.
	SourceDefaultWindows InterpreterSource = "default-windows"
	// SourcePortable is a verified user-supplied interpreter (Windows only).
	SourcePortable InterpreterSource = "portable"

	// QuoteLegacySubstring protects the token after any token that contains
	// "--options" or "--pyleus-config" and escapes only double quotes.
	QuoteLegacySubstring QuoteMode = "legacy"
	// QuoteExactFlag protects only the token after an exact flag token and
	// also escapes backslash, dollar and backtick.
	QuoteExactFlag QuoteMode = "exact"
)

// ErrInvalidQuoteMode is the sentinel error wrapped by InvalidQuoteModeError.
var ErrInvalidQuoteMode = errors.New("invalid quote mode")

type (
	// InterpreterSource says where a resolved interpreter path came from.
	InterpreterSource string

	// Interpreter is the resolved interpreter for one launch.
	Interpreter struct {
		Path   string
		Source InterpreterSource
	}

	// QuoteMode selects how POSIX command strings protect option payloads.
	QuoteMode string

	// InvalidQuoteModeError is returned when a QuoteMode value is not recognized.
	// It wraps ErrInvalidQuoteMode for errors.Is() compatibility.
	InvalidQuoteModeError struct {
		Value QuoteMode
	}

	// StatFunc reports file information, like os.Stat.
	StatFunc func(name string) (fs.FileInfo, error)

	// Launcher builds platform commands. It holds no per-launch state and is
	// safe for concurrent use.
	Launcher struct {
		family    platform.Family
		stat      StatFunc
		quoteMode QuoteMode
		metrics   *metrics.Collector
	}

	// Option configures a Launcher.
	Option func(*Launcher)
)

// WithFamily sets the target platform family instead of probing the host.
func WithFamily(f platform.Family) Option {
	return func(l *Launcher) {
		l.family = f
	}
}

// WithStat replaces the filesystem check used to verify portable interpreters.
func WithStat(stat StatFunc) Option {
	return func(l *Launcher) {
		l.stat = stat
	}
}

// WithQuoteMode selects the POSIX quote-protection rule.
func WithQuoteMode(m QuoteMode) Option {
	return func(l *Launcher) {
		l.quoteMode = m
	}
}

// WithMetrics records resolutions and built commands on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(l *Launcher) {
		l.metrics = c
	}
}

// New creates a Launcher for the host platform with legacy quoting.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		family:    platform.Host(),
		stat:      os.Stat,
		quoteMode: QuoteLegacySubstring,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.family != platform.FamilyWindows {
		l.family = platform.FamilyPOSIX
	}
	return l
}

// Family returns the platform family commands are built for.
func (l *Launcher) Family() platform.Family {
	return l.family
}

// ResolveInterpreter picks the interpreter for one launch. A portable
// candidate is used only on Windows, only when its name ends in ".exe", and
// only when a non-directory file exists at that path. The extension match
// ignores case, so PYTHON.EXE qualifies. Every other case falls back to the
// provisioned default without error.
func (l *Launcher) ResolveInterpreter(portable string) Interpreter {
	in := l.resolveInterpreter(portable)
	l.metrics.InterpreterResolved(string(in.Source))
	return in
}

func (l *Launcher) resolveInterpreter(portable string) Interpreter {
	if !l.family.IsWindows() {
		if portable != "" {
			l.metrics.PortableRejected("not-windows")
		}
		return Interpreter{Path: DefaultPOSIXInterpreter, Source: SourceDefaultPOSIX}
	}

	fallback := Interpreter{Path: DefaultWindowsInterpreter, Source: SourceDefaultWindows}
	if portable == "" {
		return fallback
	}
	if !strings.HasSuffix(strings.ToLower(portable), portableExt) {
		l.metrics.PortableRejected("not-exe")
		return fallback
	}
	info, err := l.stat(portable)
	if err != nil {
		l.metrics.PortableRejected("missing")
		return fallback
	}
	if info.IsDir() {
		l.metrics.PortableRejected("directory")
		return fallback
	}
	return Interpreter{Path: portable, Source: SourcePortable}
}

// Build resolves the interpreter and wraps args into a PlatformCommand.
// args is usually a compose.ArgumentVector but any token list is accepted.
func (l *Launcher) Build(args []string, portable string) PlatformCommand {
	in := l.ResolveInterpreter(portable)
	l.metrics.CommandBuilt(string(l.family))

	if l.family.IsWindows() {
		return WindowsCommand(in.Path, args)
	}
	return POSIXCommand(in.Path, args, l.quoteMode)
}

// DefaultCommand wraps args with the provisioned interpreter of the
// launcher's family. Unlike Build it records no metrics.
func (l *Launcher) DefaultCommand(args []string) PlatformCommand {
	if l.family.IsWindows() {
		return WindowsCommand(DefaultWindowsInterpreter, args)
	}
	return POSIXCommand(DefaultPOSIXInterpreter, args, l.quoteMode)
}

// WindowsCommand returns cmd.exe /c <interpreter> args... with every token
// passed through verbatim.
func WindowsCommand(interpreter string, args []string) PlatformCommand {
	cmd := make(PlatformCommand, 0, len(args)+3)
	cmd = append(cmd, windowsShell, windowsShellFlag, interpreter)
	return append(cmd, args...)
}

// POSIXCommand returns bash -c with a single command string that repairs the
// interpreter's permissions and then runs it with args.
func POSIXCommand(interpreter string, args []string, mode QuoteMode) PlatformCommand {
	var b strings.Builder

	// The packaged virtualenv loses the execute bit on some hosts.
	fmt.Fprintf(&b, "chmod 755 %s; %s", interpreter, interpreter)

	protect := false
	for _, tok := range args {
		b.WriteByte(' ')
		if protect {
			b.WriteString(mode.quote(tok))
		} else {
			b.WriteString(tok)
		}
		protect = mode.arms(tok)
	}

	return PlatformCommand{posixShell, posixShellFlag, b.String()}
}

// ParseQuoteMode converts a configuration value into a QuoteMode.
// The empty string selects QuoteLegacySubstring.
func ParseQuoteMode(s string) (QuoteMode, error) {
	m := QuoteMode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return QuoteLegacySubstring, nil
	}
	if valid, errs := m.IsValid(); !valid {
		return "", errs[0]
	}
	return m, nil
}

// String returns the string representation of the QuoteMode.
func (m QuoteMode) String() string { return string(m) }

// IsValid returns whether the QuoteMode is one of the defined modes.
func (m QuoteMode) IsValid() (bool, []error) {
	switch m {
	case QuoteLegacySubstring, QuoteExactFlag:
		return true, nil
	default:
		return false, []error{&InvalidQuoteModeError{Value: m}}
	}
}

// arms reports whether tok makes the next token quote-protected.
//
// The legacy rule matches by substring, so any argument that merely contains
// one of the flag names also protects its successor. It is kept because
// existing workers depend on the exact output.
func (m QuoteMode) arms(tok string) bool {
	if m == QuoteExactFlag {
		return tok == compose.FlagOptions || tok == compose.FlagPyleusConfig
	}
	return strings.Contains(tok, compose.FlagOptions) || strings.Contains(tok, compose.FlagPyleusConfig)
}

var exactEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

func (m QuoteMode) quote(tok string) string {
	if m == QuoteExactFlag {
		return `"` + exactEscaper.Replace(tok) + `"`
	}
	return `"` + strings.ReplaceAll(tok, `"`, `\"`) + `"`
}

// Error implements the error interface for InvalidQuoteModeError.
func (e *InvalidQuoteModeError) Error() string {
	return fmt.Sprintf("invalid quote mode %q (valid: legacy, exact)", e.Value)
}

// Unwrap returns ErrInvalidQuoteMode for errors.Is() compatibility.
func (e *InvalidQuoteModeError) Unwrap() error { return ErrInvalidQuoteMode }
