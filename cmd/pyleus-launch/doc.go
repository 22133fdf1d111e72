// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pyleus-launch.
//
// The CLI composes worker argument vectors, renders the platform launch
// command a supervising host would run, and declares whole topologies from a
// YAML file. Nothing is ever executed.
package cmd
