// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pyleus/pyleus-launch/pkg/platform"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// ErrNotLaunchCommand is returned by Reduce for commands this package did not build.
var ErrNotLaunchCommand = errors.New("not a worker launch command")

// PlatformCommand is the exec-ready argument list for a process-start call.
// Windows commands are cmd.exe /c followed by discrete tokens; POSIX
// commands are exactly bash -c <string>.
type PlatformCommand []string

// Family classifies the command by its launcher prefix. It returns the
// empty Family for anything else.
func (c PlatformCommand) Family() platform.Family {
	switch {
	case len(c) >= 3 && c[0] == windowsShell && c[1] == windowsShellFlag:
		return platform.FamilyWindows
	case len(c) == 3 && c[0] == posixShell && c[1] == posixShellFlag:
		return platform.FamilyPOSIX
	default:
		return ""
	}
}

// Clone returns a copy that shares no storage with c.
func (c PlatformCommand) Clone() PlatformCommand {
	return slices.Clone(c)
}

// Equal reports whether both commands have identical tokens.
func (c PlatformCommand) Equal(other PlatformCommand) bool {
	return slices.Equal(c, other)
}

// String renders the command for display. POSIX tokens are shell-quoted so
// the output can be pasted into a terminal.
func (c PlatformCommand) String() string {
	parts := make([]string, len(c))
	for i, tok := range c {
		parts[i] = displayQuote(tok)
	}
	return strings.Join(parts, " ")
}

func displayQuote(tok string) string {
	if tok != "" && !strings.ContainsAny(tok, " \t\n\"'\\$`;&|<>(){}*?[]#~") {
		return tok
	}
	quoted, err := syntax.Quote(tok, syntax.LangBash)
	if err != nil {
		return fmt.Sprintf("%q", tok)
	}
	return quoted
}

// Reduce returns the interpreter and the argument tokens the worker process
// receives when c is executed by the platform's command interpreter.
//
// Windows tokens are passed through as discrete arguments. For POSIX
// commands the -c string is parsed and the words of its final simple command
// are expanded the way bash would, in an empty environment.
func Reduce(c PlatformCommand) (string, []string, error) {
	switch c.Family() {
	case platform.FamilyWindows:
		return c[2], slices.Clone(c[3:]), nil
	case platform.FamilyPOSIX:
		return reducePOSIX(c[2])
	default:
		return "", nil, ErrNotLaunchCommand
	}
}

func reducePOSIX(script string) (string, []string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return "", nil, fmt.Errorf("parse launch command: %w", err)
	}
	if len(file.Stmts) == 0 {
		return "", nil, ErrNotLaunchCommand
	}

	call, ok := file.Stmts[len(file.Stmts)-1].Cmd.(*syntax.CallExpr)
	if !ok || len(call.Args) == 0 {
		return "", nil, ErrNotLaunchCommand
	}

	cfg := &expand.Config{Env: expand.ListEnviron()}
	fields, err := expand.Fields(cfg, call.Args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand launch command: %w", err)
	}
	if len(fields) == 0 {
		return "", nil, ErrNotLaunchCommand
	}
	return fields[0], fields[1:], nil
}
