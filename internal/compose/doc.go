// SPDX-License-Identifier: MPL-2.0

// Package compose turns a worker module invocation into the worker-level
// argument vector understood by the pyleus worker entry point:
//
//	-m <module> [--options <json>] --pyleus-config <json>
//
// The output carries no interpreter path and no shell syntax; package launch
// adds those per platform. Flag spelling and token order are a wire contract
// with the worker process.
package compose
