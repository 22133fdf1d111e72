// SPDX-License-Identifier: MPL-2.0

package component

import (
	"errors"
	"sync"

	"github.com/pyleus/pyleus-launch/internal/launch"
)

// ErrCommandFrozen is returned by ShellHost.SetCommand once the process started.
var ErrCommandFrozen = errors.New("worker command is frozen: process already started")

type (
	// Host is the process-supervision framework's view of one worker command.
	Host interface {
		// Command returns the command the host will execute.
		Command() launch.PlatformCommand
		// SetCommand replaces the command. Hosts may refuse.
		SetCommand(launch.PlatformCommand) error
	}

	// HostFunc creates the host for a newly declared component from its
	// declaration-time command.
	HostFunc func(launch.PlatformCommand) Host

	// ShellHost is a Host that captures its command at construction, the way
	// a shell-process component does, and stops accepting replacements once
	// MarkStarted is called.
	ShellHost struct {
		mu      sync.Mutex
		command launch.PlatformCommand
		started bool
	}
)

// NewShellHost creates a ShellHost holding a copy of cmd.
func NewShellHost(cmd launch.PlatformCommand) *ShellHost {
	return &ShellHost{command: cmd.Clone()}
}

// Command returns a copy of the current command.
func (h *ShellHost) Command() launch.PlatformCommand {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.command.Clone()
}

// SetCommand replaces the command unless the process already started.
func (h *ShellHost) SetCommand(cmd launch.PlatformCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return ErrCommandFrozen
	}
	h.command = cmd.Clone()
	return nil
}

// MarkStarted freezes the command.
func (h *ShellHost) MarkStarted() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
}

func newShellHost(cmd launch.PlatformCommand) Host {
	return NewShellHost(cmd)
}
