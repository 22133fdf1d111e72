// SPDX-License-Identifier: MPL-2.0

// Package launch wraps a worker-level argument vector into the command a
// process-launch API can execute on the target platform.
//
// Windows commands are a plain token vector run through cmd.exe /c. POSIX
// commands are a single bash -c string that first restores the execute bit
// on the provisioned interpreter, then runs it with the worker arguments.
// Values following --options and --pyleus-config are double-quoted so a JSON
// payload stays one shell word.
//
// The launcher never executes anything. The only I/O is a stat of a candidate
// portable interpreter, and the platform family is injected.
package launch
